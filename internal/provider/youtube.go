package provider

import (
	"bytes"
	"context"
	"errors"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/feed"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/validation"
)

const youtubeName = "youtube"

// YouTube searches the YouTube Data API v3. It is the primary provider.
type YouTube struct {
	client   *Client
	cfg      config.YouTubeConfig
	duration string
	uploads  int
	parser   *feed.Parser
}

func NewYouTube(client *Client, cfg config.YouTubeConfig, search config.SearchConfig) *YouTube {
	return &YouTube{
		client:   client,
		cfg:      cfg,
		duration: search.VideoDuration,
		uploads:  search.ChannelUploads,
		parser:   feed.NewParser(),
	}
}

func (y *YouTube) Name() string         { return youtubeName }
func (y *YouTube) Source() movie.Source { return movie.SourceYouTube }
func (y *YouTube) Priority() int        { return 100 }

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytSnippet struct {
	PublishedAt  string                 `json:"publishedAt"`
	ChannelID    string                 `json:"channelId"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	ChannelTitle string                 `json:"channelTitle"`
	Thumbnails   map[string]ytThumbnail `json:"thumbnails"`
	Tags         []string               `json:"tags"`
}

type ytSearchResponse struct {
	Items *[]struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items *[]struct {
		ID             string    `json:"id"`
		Snippet        ytSnippet `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Search queries the search endpoint for long, embeddable videos.
func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]movie.Record, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	if y.duration != "" {
		params.Set("videoDuration", y.duration)
	}
	params.Set("videoEmbeddable", "true")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", y.cfg.Key)

	var resp ytSearchResponse
	if err := y.client.GetJSON(ctx, youtubeName, joinURL(y.cfg.BaseURL, "search"), params, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return nil, &MalformedResponseError{Provider: youtubeName, Err: errors.New("missing items array")}
	}

	records := make([]movie.Record, 0, len(*resp.Items))
	for _, item := range *resp.Items {
		if item.ID.VideoID == "" || strings.TrimSpace(item.Snippet.Title) == "" {
			continue
		}
		records = append(records, y.record(item.ID.VideoID, item.Snippet))
	}
	return records, nil
}

// Detail fetches one video with its statistics. Recent uploads of the same
// channel are attached when available; their failure is only logged.
func (y *YouTube) Detail(ctx context.Context, id string) (*movie.Detail, error) {
	if err := validation.ValidateVideoID(id); err != nil {
		return nil, &NotFoundError{Provider: youtubeName, ID: id}
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", id)
	params.Set("key", y.cfg.Key)

	var resp ytVideosResponse
	if err := y.client.GetJSON(ctx, youtubeName, joinURL(y.cfg.BaseURL, "videos"), params, &resp); err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, &NotFoundError{Provider: youtubeName, ID: id}
		}
		return nil, err
	}
	if resp.Items == nil {
		return nil, &MalformedResponseError{Provider: youtubeName, Err: errors.New("missing items array")}
	}
	if len(*resp.Items) == 0 {
		return nil, &NotFoundError{Provider: youtubeName, ID: id}
	}

	item := (*resp.Items)[0]
	d := &movie.Detail{
		Record:   y.record(id, item.Snippet),
		Duration: parseISODuration(item.ContentDetails.Duration),
		Tags:     item.Snippet.Tags,
		EmbedURL: y.cfg.EmbedURL + id,
		WatchURL: y.cfg.WatchURL + id,
	}
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		d.PublishedAt = t
	}
	d.ViewCount = parseCount(item.Statistics.ViewCount)
	d.LikeCount = parseCount(item.Statistics.LikeCount)
	d.CommentCount = parseCount(item.Statistics.CommentCount)

	if y.uploads > 0 && d.ChannelID != "" {
		uploads, err := y.ChannelUploads(ctx, d.ChannelID, y.uploads+1)
		if err != nil {
			debuglog.WithFields(map[string]interface{}{"provider": youtubeName, "channel": d.ChannelID}).
				Warnf("channel uploads unavailable: %v", err)
		}
		for _, u := range uploads {
			if u.ID != id && len(d.Uploads) < y.uploads {
				d.Uploads = append(d.Uploads, u)
			}
		}
	}

	return d, nil
}

// ChannelUploads reads the public Atom feed of a channel.
func (y *YouTube) ChannelUploads(ctx context.Context, channelID string, limit int) ([]movie.Record, error) {
	if err := validation.ValidateChannelID(channelID); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("channel_id", channelID)

	body, err := y.client.Get(ctx, youtubeName, y.cfg.FeedURL, params, "application/atom+xml, application/xml, text/xml")
	if err != nil {
		return nil, err
	}
	return y.parser.ParseUploads(bytes.NewReader(body), limit)
}

func (y *YouTube) record(id string, s ytSnippet) movie.Record {
	rec := movie.Record{
		ID:          id,
		Title:       html.UnescapeString(s.Title),
		Description: html.UnescapeString(s.Description),
		Creator:     html.UnescapeString(s.ChannelTitle),
		Channel:     html.UnescapeString(s.ChannelTitle),
		ChannelID:   s.ChannelID,
		Thumbnail:   pickThumbnail(s.Thumbnails),
		VideoURL:    y.cfg.WatchURL + id,
		Source:      movie.SourceYouTube,
	}
	if len(s.PublishedAt) >= 4 {
		rec.Year = s.PublishedAt[:4]
	}
	return rec
}

func pickThumbnail(thumbs map[string]ytThumbnail) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration parses the subset of ISO 8601 durations the API emits
// (e.g. PT1H32M7S). Unparseable input yields 0.
func parseISODuration(s string) time.Duration {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		d += time.Duration(n) * unit
	}
	return d
}
