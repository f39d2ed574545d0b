package feed

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/pders01/flik/internal/movie"
)

// Parser turns a YouTube channel Atom feed into records.
type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// ParseUploads parses a channel feed and returns at most limit uploads in
// feed order (newest first). Entries without a video id are skipped. A
// limit <= 0 returns every entry.
func (p *Parser) ParseUploads(reader io.Reader, limit int) ([]movie.Record, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	records := make([]movie.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(records) >= limit {
			break
		}

		id := videoID(item)
		if id == "" || strings.TrimSpace(item.Title) == "" {
			continue
		}

		rec := movie.Record{
			ID:          id,
			Title:       item.Title,
			Description: mediaValue(item, "description"),
			Creator:     author(item, feed),
			Channel:     author(item, feed),
			ChannelID:   extValue(item.Extensions, "yt", "channelId"),
			Thumbnail:   thumbnail(item),
			VideoURL:    item.Link,
			Source:      movie.SourceYouTube,
		}
		if item.PublishedParsed != nil {
			rec.Year = fmt.Sprintf("%04d", item.PublishedParsed.Year())
		}

		records = append(records, rec)
	}

	return records, nil
}

func videoID(item *gofeed.Item) string {
	if id := extValue(item.Extensions, "yt", "videoId"); id != "" {
		return id
	}
	if u, err := url.Parse(item.Link); err == nil {
		return u.Query().Get("v")
	}
	return ""
}

func author(item *gofeed.Item, feed *gofeed.Feed) string {
	if len(item.Authors) > 0 && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	if len(feed.Authors) > 0 {
		return feed.Authors[0].Name
	}
	return feed.Title
}

func thumbnail(item *gofeed.Item) string {
	if group := mediaGroup(item); group != nil {
		for _, t := range group.Children["thumbnail"] {
			if u := t.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

func mediaValue(item *gofeed.Item, name string) string {
	if group := mediaGroup(item); group != nil {
		for _, c := range group.Children[name] {
			if v := strings.TrimSpace(c.Value); v != "" {
				return v
			}
		}
	}
	return item.Description
}

func mediaGroup(item *gofeed.Item) *ext.Extension {
	groups := item.Extensions["media"]["group"]
	if len(groups) == 0 {
		return nil
	}
	return &groups[0]
}

func extValue(exts ext.Extensions, ns, name string) string {
	for _, e := range exts[ns][name] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}
