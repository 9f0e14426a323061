// Package authclient lets other services resolve a bearer token into a profile by asking
// the auth service.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

// ErrUnauthorized is returned for every failure to resolve a token, including transport
// errors and unexpected responses.
var ErrUnauthorized = errors.New("unauthorized")

// Profile is the identity the auth service reports for a token.
type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Client calls the auth service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New returns a client for the auth service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("authclient: base url required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type profileEnvelope struct {
	Data *Profile `json:"data"`
}

// ValidateToken returns the profile behind token. Any failure wraps ErrUnauthorized so
// callers can treat a rejected token and an unreachable service alike.
func (c *Client) ValidateToken(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrUnauthorized)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnauthorized, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: auth service returned %d", ErrUnauthorized, resp.StatusCode)
	}

	var env profileEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrUnauthorized, err)
	}
	if env.Data == nil || env.Data.Username == "" {
		return nil, fmt.Errorf("%w: empty profile", ErrUnauthorized)
	}
	return env.Data, nil
}
