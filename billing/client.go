// Package billing is the client for the external billing provider, the
// source of truth for paid entitlements.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaulFidika/subkit/entitlements"
)

// ErrUnavailable wraps any non-success response or transport failure from
// the provider. Callers do not retry; the failure propagates to the caller
// of the current request.
var ErrUnavailable = errors.New("billing: provider unavailable")

// Profile is the provider's view of one customer. It is fetched fresh per
// verification call and never cached beyond the current request.
type Profile struct {
	CustomerID   string
	AccessLevels []entitlements.AccessLevel
}

// Config configures the billing client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client fetches billing profiles over HTTPS with a static API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type profileResponse struct {
	Data struct {
		CustomerUserID string `json:"customer_user_id"`
		AccessLevels   map[string]struct {
			StartsAt  *time.Time `json:"starts_at"`
			ExpiresAt *time.Time `json:"expires_at"`
		} `json:"access_levels"`
	} `json:"data"`
}

// FetchProfile retrieves the profile for the external customer identifier.
func (c *Client) FetchProfile(ctx context.Context, customerID string) (Profile, error) {
	u := c.baseURL + "/v1/profiles/" + url.PathEscape(customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Profile{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var pr profileResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return Profile{}, fmt.Errorf("%w: decode profile: %v", ErrUnavailable, err)
	}
	p := Profile{CustomerID: pr.Data.CustomerUserID}
	for id, lvl := range pr.Data.AccessLevels {
		p.AccessLevels = append(p.AccessLevels, entitlements.AccessLevel{
			ID:        id,
			StartsAt:  lvl.StartsAt,
			ExpiresAt: lvl.ExpiresAt,
		})
	}
	return p, nil
}
