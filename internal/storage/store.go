package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pders01/flik/internal/movie"
	bolt "go.etcd.io/bbolt"
)

var watchlistBucket = []byte("watchlist")

// ErrNotFound is returned when a bookmark does not exist.
var ErrNotFound = errors.New("bookmark not found")

// Store keeps the watchlist. It is never consulted for search results.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens (or creates) the database at dbPath. A timeout <= 0 uses
// one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(watchlistBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBookmark stores rec under its key. Saving an existing bookmark
// refreshes the record but keeps its original SavedAt.
func (s *Store) SaveBookmark(rec movie.Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(watchlistBucket)
		key := []byte(rec.Key())

		bm := Bookmark{Record: rec, SavedAt: s.now()}
		if data := b.Get(key); data != nil {
			var old Bookmark
			if err := json.Unmarshal(data, &old); err == nil {
				bm.SavedAt = old.SavedAt
			}
		}

		data, err := json.Marshal(bm)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *Store) GetBookmark(key string) (*Bookmark, error) {
	var bm Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(watchlistBucket).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &bm)
	})
	if err != nil {
		return nil, err
	}
	return &bm, nil
}

func (s *Store) HasBookmark(key string) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(watchlistBucket).Get([]byte(key)) != nil
		return nil
	})
	return found
}

func (s *Store) DeleteBookmark(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(watchlistBucket)
		if b.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(key))
	})
}

// ToggleBookmark saves rec if absent and removes it otherwise. It reports
// whether rec is bookmarked afterwards.
func (s *Store) ToggleBookmark(rec movie.Record) (bool, error) {
	if s.HasBookmark(rec.Key()) {
		return false, s.DeleteBookmark(rec.Key())
	}
	return true, s.SaveBookmark(rec)
}

// ListBookmarks returns bookmarks newest first. A limit <= 0 returns all.
func (s *Store) ListBookmarks(limit int) ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(watchlistBucket).ForEach(func(_ []byte, v []byte) error {
			var bm Bookmark
			if err := json.Unmarshal(v, &bm); err != nil {
				return nil
			}
			bookmarks = append(bookmarks, &bm)
			return nil
		})
	})
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].SavedAt.After(bookmarks[j].SavedAt)
	})
	if limit > 0 && len(bookmarks) > limit {
		bookmarks = bookmarks[:limit]
	}
	return bookmarks, err
}
