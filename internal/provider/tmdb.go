package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/validation"
)

const tmdbName = "tmdb"

// TMDB searches The Movie Database. It is the fallback provider.
type TMDB struct {
	client  *Client
	cfg     config.TMDBConfig
	youtube config.YouTubeConfig
}

// NewTMDB creates the provider. The YouTube config supplies the embed and
// watch URLs for trailers.
func NewTMDB(client *Client, cfg config.TMDBConfig, youtube config.YouTubeConfig) *TMDB {
	return &TMDB{client: client, cfg: cfg, youtube: youtube}
}

func (t *TMDB) Name() string         { return tmdbName }
func (t *TMDB) Source() movie.Source { return movie.SourceTMDB }
func (t *TMDB) Priority() int        { return 50 }

type tmdbMovie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	VoteAverage      float64 `json:"vote_average"`
}

type tmdbSearchResponse struct {
	Results *[]tmdbMovie `json:"results"`
}

type tmdbDetailResponse struct {
	tmdbMovie
	Runtime int `json:"runtime"`
	Genres  []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Videos struct {
		Results []struct {
			Key  string `json:"key"`
			Site string `json:"site"`
			Type string `json:"type"`
		} `json:"results"`
	} `json:"videos"`
}

func (t *TMDB) Search(ctx context.Context, query string, limit int) ([]movie.Record, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")
	params.Set("api_key", t.cfg.Key)

	var resp tmdbSearchResponse
	if err := t.client.GetJSON(ctx, tmdbName, joinURL(t.cfg.BaseURL, "search", "movie"), params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, &MalformedResponseError{Provider: tmdbName, Err: errors.New("missing results array")}
	}

	records := make([]movie.Record, 0, len(*resp.Results))
	for _, m := range *resp.Results {
		if limit > 0 && len(records) >= limit {
			break
		}
		if m.ID == 0 || strings.TrimSpace(m.Title) == "" {
			continue
		}
		records = append(records, m.record())
	}
	return records, nil
}

func (t *TMDB) Detail(ctx context.Context, id string) (*movie.Detail, error) {
	if err := validation.ValidateMovieID(id); err != nil {
		return nil, &NotFoundError{Provider: tmdbName, ID: id}
	}

	params := url.Values{}
	params.Set("append_to_response", "videos")
	params.Set("api_key", t.cfg.Key)

	var resp tmdbDetailResponse
	if err := t.client.GetJSON(ctx, tmdbName, joinURL(t.cfg.BaseURL, "movie", id), params, &resp); err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, &NotFoundError{Provider: tmdbName, ID: id}
		}
		return nil, err
	}
	if resp.ID == 0 {
		return nil, &NotFoundError{Provider: tmdbName, ID: id}
	}

	d := &movie.Detail{
		Record:   resp.record(),
		Duration: time.Duration(resp.Runtime) * time.Minute,
	}
	if ts, err := time.Parse("2006-01-02", resp.ReleaseDate); err == nil {
		d.PublishedAt = ts
	}
	for _, g := range resp.Genres {
		d.Genres = append(d.Genres, g.Name)
	}

	if key := t.trailerKey(resp); key != "" {
		d.EmbedURL = t.youtube.EmbedURL + key
		d.WatchURL = t.youtube.WatchURL + key
		d.VideoURL = d.WatchURL
	}

	return d, nil
}

// trailerKey prefers a YouTube trailer over any other YouTube video.
func (t *TMDB) trailerKey(resp tmdbDetailResponse) string {
	var fallback string
	for _, v := range resp.Videos.Results {
		if !strings.EqualFold(v.Site, "YouTube") || v.Key == "" {
			continue
		}
		if strings.EqualFold(v.Type, "Trailer") {
			return v.Key
		}
		if fallback == "" {
			fallback = v.Key
		}
	}
	return fallback
}

func (m tmdbMovie) record() movie.Record {
	rec := movie.Record{
		ID:          strconv.Itoa(m.ID),
		Title:       m.Title,
		Description: m.Overview,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		Language:    m.OriginalLanguage,
		Rating:      m.VoteAverage,
		Source:      movie.SourceTMDB,
	}
	if len(m.ReleaseDate) >= 4 {
		rec.Year = m.ReleaseDate[:4]
	}
	return rec
}
