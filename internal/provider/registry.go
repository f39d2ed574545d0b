package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/movie"
)

// Provider is an upstream movie/video search API.
type Provider interface {
	// Name returns the provider name used in logs and errors
	Name() string

	// Source is the value stamped on every record the provider returns
	Source() movie.Source

	// Search returns at most limit records for query, in upstream order.
	// An empty slice with a nil error is a valid, empty result.
	Search(ctx context.Context, query string, limit int) ([]movie.Record, error)

	// Detail returns extended metadata for id or a NotFoundError
	Detail(ctx context.Context, id string) (*movie.Detail, error)

	// Priority orders providers for search (higher = tried first)
	Priority() int
}

// SearchResult is the outcome of a registry search.
type SearchResult struct {
	Records []movie.Record
	Source  movie.Source
}

// Registry holds the configured providers in priority order.
type Registry struct {
	providers []Provider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make([]Provider, 0),
	}
}

// NewFromConfig builds the registry flik runs with: YouTube as primary and
// TMDB as fallback when a TMDB key is configured.
func NewFromConfig(cfg *config.Config) *Registry {
	client := NewClient(cfg.API)
	r := NewRegistry()
	r.Register(NewYouTube(client, cfg.API.YouTube, cfg.Search))
	if cfg.TMDBEnabled() {
		r.Register(NewTMDB(client, cfg.API.TMDB, cfg.API.YouTube))
	}
	return r
}

// Register adds a provider, keeping the list sorted by descending priority.
// Providers with equal priority keep registration order.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority() > r.providers[j].Priority()
	})
}

// Providers returns the registered providers in search order
func (r *Registry) Providers() []Provider {
	return append([]Provider(nil), r.providers...)
}

// Lookup returns the provider for source, or nil.
func (r *Registry) Lookup(source movie.Source) Provider {
	for _, p := range r.providers {
		if p.Source() == source {
			return p
		}
	}
	return nil
}

// Search tries each provider once in priority order and returns the first
// success. An empty result is a success and does not trigger the fallback.
// When every provider fails the errors are joined.
func (r *Registry) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	if len(r.providers) == 0 {
		return SearchResult{}, errors.New("no search providers configured")
	}

	var errs []error
	for i, p := range r.providers {
		records, err := p.Search(ctx, query, limit)
		if err == nil {
			if i > 0 {
				debuglog.WithFields(map[string]interface{}{"provider": p.Name()}).
					Infof("served search %q from fallback", query)
			}
			return SearchResult{Records: records, Source: p.Source()}, nil
		}

		debuglog.WithFields(map[string]interface{}{"provider": p.Name()}).
			Warnf("search %q failed: %v", query, err)
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return SearchResult{}, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}

// Detail routes to the provider that owns source.
func (r *Registry) Detail(ctx context.Context, source movie.Source, id string) (*movie.Detail, error) {
	p := r.Lookup(source)
	if p == nil {
		return nil, &NotFoundError{Provider: string(source), ID: id}
	}
	return p.Detail(ctx, id)
}
