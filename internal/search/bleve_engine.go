package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/storage"
)

// fieldBoosts weights matches per field: titles first, then people.
var fieldBoosts = []struct {
	field string
	boost float64
}{
	{"title", 4.0},
	{"creator", 2.0},
	{"channel", 2.0},
	{"description", 1.0},
}

// BleveEngine ranks saved movies with an in-memory full-text index. The
// watchlist is small, so the index is rebuilt from the store on open.
type BleveEngine struct {
	store *storage.Store
	idx   bleve.Index
}

// NewBleveEngine builds an index over every bookmark in store.
func NewBleveEngine(store *storage.Store) (*BleveEngine, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	be := &BleveEngine{store: store, idx: idx}
	if err := be.reindexAll(); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	text := func(store bool) *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = standard.Name
		f.Store = store
		return f
	}

	title := text(true)
	title.IncludeTermVectors = true

	source := bleve.NewTextFieldMapping()
	source.Analyzer = keyword.Name
	source.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("creator", text(true))
	dm.AddFieldMappingsAt("channel", text(true))
	dm.AddFieldMappingsAt("description", text(false))
	dm.AddFieldMappingsAt("source", source)

	im.DefaultMapping = dm
	return im
}

func document(b *storage.Bookmark) map[string]any {
	return map[string]any{
		"title":       b.Title,
		"creator":     b.Creator,
		"channel":     b.Channel,
		"description": b.Description,
		"source":      string(b.Source),
	}
}

func (e *BleveEngine) reindexAll() error {
	bookmarks, err := e.store.ListBookmarks(0)
	if err != nil {
		return err
	}

	batch := e.idx.NewBatch()
	for _, b := range bookmarks {
		if err := batch.Index(b.Key(), document(b)); err != nil {
			return fmt.Errorf("indexing %s: %w", b.Key(), err)
		}
	}
	return e.idx.Batch(batch)
}

// Search returns bookmarks matching query, best first. Each term matches
// whole words or prefixes in any field.
func (e *BleveEngine) Search(query string, limit int) ([]*Result, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for _, fb := range fieldBoosts {
			m := bleve.NewMatchQuery(tok)
			m.SetField(fb.field)
			m.SetBoost(fb.boost)
			qs = append(qs, m)

			p := bleve.NewPrefixQuery(strings.ToLower(tok))
			p.SetField(fb.field)
			p.SetBoost(fb.boost * 0.8)
			qs = append(qs, p)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := e.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		b, err := e.store.GetBookmark(h.ID)
		if err != nil {
			// Deleted from the store but not yet from the index.
			debuglog.Debugf("index hit %s has no bookmark: %v", h.ID, err)
			continue
		}
		out = append(out, &Result{Bookmark: b, Score: h.Score})
	}
	return out, nil
}

// OnBookmarkSaved indexes or re-indexes b.
func (e *BleveEngine) OnBookmarkSaved(b *storage.Bookmark) {
	if err := e.idx.Index(b.Key(), document(b)); err != nil {
		debuglog.Warnf("indexing %s: %v", b.Key(), err)
	}
}

// OnBookmarkDeleted removes the document for key.
func (e *BleveEngine) OnBookmarkDeleted(key string) {
	if err := e.idx.Delete(key); err != nil {
		debuglog.Warnf("unindexing %s: %v", key, err)
	}
}

// DocCount reports total documents in the index.
func (e *BleveEngine) DocCount() (int, error) {
	n, err := e.idx.DocCount()
	return int(n), err
}

func (e *BleveEngine) Close() error {
	return e.idx.Close()
}
