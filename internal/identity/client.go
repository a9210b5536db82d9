// Package identity provides a client for the hosted identity provider.
// It is a thin I/O adapter: one lookup endpoint, no caching, no retries.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pathwise/pathwise/internal/model"
)

// Common errors for identity provider operations.
var (
	// ErrNoCredential means the provider API key is not configured.
	ErrNoCredential = errors.New("identity provider credential not configured")
	// ErrUpstream means the provider returned a non-success response
	// or could not be reached.
	ErrUpstream = errors.New("identity provider request failed")
)

const (
	clientTimeout         = 15 * time.Second
	dialTimeout           = 5 * time.Second
	responseHeaderTimeout = 10 * time.Second
)

// Client fetches external user profiles from the identity provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client for the provider at baseURL. apiKey may be
// empty; every call will then fail with ErrNoCredential.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: clientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   dialTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

// FetchProfile retrieves the external profile for externalID.
// The request always bypasses intermediate caches so the email list
// reflects the provider's current state.
func (c *Client) FetchProfile(ctx context.Context, externalID string) (*model.ExternalProfile, error) {
	if c.apiKey == "" {
		return nil, ErrNoCredential
	}

	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(externalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var profile model.ExternalProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	return &profile, nil
}
