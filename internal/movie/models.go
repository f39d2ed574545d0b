package movie

import (
	"strings"
	"time"
)

// Source identifies the upstream API that produced a record.
type Source string

const (
	SourceYouTube Source = "YouTube"
	SourceTMDB    Source = "TMDB"
)

// PlaceholderImage is the static asset used when a record carries no image.
const PlaceholderImage = "no-movie.png"

// ParseSource maps a user supplied name onto a known source.
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "youtube", "yt", "":
		return SourceYouTube, true
	case "tmdb":
		return SourceTMDB, true
	default:
		return "", false
	}
}

// Record is one normalized search result. Records are built fresh from
// every provider payload and never mutated afterwards.
type Record struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Creator     string  `json:"creator,omitempty"`
	Channel     string  `json:"channel,omitempty"`
	ChannelID   string  `json:"channel_id,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	Year        string  `json:"year,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Language    string  `json:"original_language,omitempty"`
	Rating      float64 `json:"vote_average,omitempty"`
	VideoURL    string  `json:"video_url,omitempty"`
	Source      Source  `json:"source"`
}

// ImageURL picks the card image: poster over thumbnail over placeholder.
// posterBase is prefixed to relative poster paths.
func (r Record) ImageURL(posterBase string) string {
	if r.PosterPath != "" {
		if strings.HasPrefix(r.PosterPath, "http://") || strings.HasPrefix(r.PosterPath, "https://") {
			return r.PosterPath
		}
		return strings.TrimSuffix(posterBase, "/") + "/" + strings.TrimPrefix(r.PosterPath, "/")
	}
	if r.Thumbnail != "" {
		return r.Thumbnail
	}
	return PlaceholderImage
}

// Key is unique across sources and is used for bookmarks.
func (r Record) Key() string {
	return string(r.Source) + ":" + r.ID
}

// Attribution returns the creator, falling back to the channel name.
func (r Record) Attribution() string {
	if r.Creator != "" {
		return r.Creator
	}
	return r.Channel
}

// Detail is the extended metadata for a single item.
type Detail struct {
	Record
	PublishedAt  time.Time     `json:"published_at"`
	Duration     time.Duration `json:"duration"`
	ViewCount    int64         `json:"view_count"`
	LikeCount    int64         `json:"like_count"`
	CommentCount int64         `json:"comment_count"`
	Tags         []string      `json:"tags,omitempty"`
	Genres       []string      `json:"genres,omitempty"`
	EmbedURL     string        `json:"embed_url,omitempty"`
	WatchURL     string        `json:"watch_url,omitempty"`
	Uploads      []Record      `json:"uploads,omitempty"`
}

// Playable reports whether the detail resolved to something a player can open.
func (d *Detail) Playable() bool {
	return d != nil && d.WatchURL != ""
}
