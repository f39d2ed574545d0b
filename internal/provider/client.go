package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/debuglog"
)

const (
	maxBodySize    = 10 << 20
	maxBodyExcerpt = 512
)

// secretParams are query parameters that must never reach the log.
var secretParams = []string{"key", "api_key"}

// Client is the HTTP client shared by every provider. All requests pass
// through one rate limiter and are bounded by the configured timeout.
type Client struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

func NewClient(cfg config.APIConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:      &http.Client{},
		userAgent: cfg.UserAgent,
		timeout:   cfg.HTTPTimeout,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// Get performs a GET against endpoint with params appended to its query and
// returns the body of a 2xx response. Any other status yields a NetworkError.
func (c *Client) Get(ctx context.Context, provider, endpoint string, params url.Values, accept string) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	safeURL := redactURL(u)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Provider: provider, URL: safeURL, Err: err}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	log := debuglog.WithFields(map[string]interface{}{"provider": provider, "url": safeURL})
	log.Debugf("requesting")

	resp, err := c.http.Do(req)
	if err != nil {
		// net/http embeds the full URL, key included, in its error text.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		log.Warnf("request failed: %v", err)
		return nil, &NetworkError{Provider: provider, URL: safeURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warnf("reading body failed: %v", err)
		return nil, &NetworkError{Provider: provider, URL: safeURL, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := excerpt(body)
		log.Warnf("unexpected status %d: %s", resp.StatusCode, excerpt)
		return nil, &NetworkError{
			Provider:   provider,
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Body:       excerpt,
			Err:        fmt.Errorf("HTTP error: %d", resp.StatusCode),
		}
	}

	return body, nil
}

// GetJSON is Get followed by decoding the body into out.
func (c *Client) GetJSON(ctx context.Context, provider, endpoint string, params url.Values, out any) error {
	body, err := c.Get(ctx, provider, endpoint, params, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		debuglog.WithFields(map[string]interface{}{"provider": provider}).
			Warnf("decoding response failed: %v: %s", err, excerpt(body))
		return &MalformedResponseError{Provider: provider, Err: err}
	}
	return nil
}

func redactURL(u *url.URL) string {
	c := *u
	q := c.Query()
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
		}
	}
	c.RawQuery = q.Encode()
	return c.String()
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyExcerpt {
		return s[:maxBodyExcerpt] + "..."
	}
	return s
}

func joinURL(base string, elem ...string) string {
	out := strings.TrimSuffix(base, "/")
	for _, e := range elem {
		out += "/" + strings.Trim(e, "/")
	}
	return out
}
