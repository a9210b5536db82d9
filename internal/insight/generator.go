// Package insight integrates the external industry-insight computation.
// The computation is opaque to this service: it may be slow, and its
// failures simply propagate to the caller.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pathwise/pathwise/internal/model"
)

// Generator computes the insight payload for one industry category.
type Generator interface {
	Generate(ctx context.Context, category string) (*model.InsightPayload, error)
}

// The generator client allows long requests; insight computation is
// expensive by design and the enclosing transaction enforces its own
// deadline through the request context.
const (
	clientTimeout = 60 * time.Second
	dialTimeout   = 5 * time.Second
)

// HTTPGenerator calls an insight computation service over HTTP.
type HTTPGenerator struct {
	baseURL string
	http    *http.Client
}

// NewHTTPGenerator creates a Generator backed by the service at baseURL.
func NewHTTPGenerator(baseURL string) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: clientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Generate requests a freshly computed payload for category.
func (g *HTTPGenerator) Generate(ctx context.Context, category string) (*model.InsightPayload, error) {
	endpoint := fmt.Sprintf("%s/insights?category=%s", g.baseURL, url.QueryEscape(category))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build insight request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insight computation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("insight computation failed: status %d", resp.StatusCode)
	}

	var payload model.InsightPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode insight payload: %w", err)
	}

	return &payload, nil
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, category string) (*model.InsightPayload, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, category string) (*model.InsightPayload, error) {
	return f(ctx, category)
}
