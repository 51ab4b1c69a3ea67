// Package push is the client for the external notification dispatch
// provider. The provider's response is relayed to the caller verbatim.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrUnavailable wraps transport failures and non-success responses from
// the dispatch provider.
var ErrUnavailable = errors.New("push: dispatch provider unavailable")

// Notification is one dispatch request: recipients plus localized title and
// body maps, and an optional grouping key from the caller's correlation id.
type Notification struct {
	RecipientUIDs []string
	Headings      map[string]string
	Contents      map[string]string
	GroupKey      string
}

// Result carries the provider's verbatim response.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// Config configures the dispatch client. ChannelID and BundleID come from
// static configuration and feed the payload's routing metadata.
type Config struct {
	BaseURL   string
	APIKey    string
	AppID     string
	ChannelID string
	BundleID  string
	Timeout   time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}}
}

// Send assembles the dispatch payload and forwards it. The idempotency key
// guards against duplicate delivery if the provider sees a retransmit.
func (c *Client) Send(ctx context.Context, n Notification) (Result, error) {
	payload := map[string]any{
		"app_id":                    c.cfg.AppID,
		"include_external_user_ids": n.RecipientUIDs,
		"headings":                  n.Headings,
		"contents":                  n.Contents,
		"android_channel_id":        c.cfg.ChannelID,
		"external_id":               uuid.NewString(),
	}
	if n.GroupKey != "" {
		payload["android_group"] = n.GroupKey
		payload["collapse_id"] = c.cfg.BundleID + "_" + n.GroupKey
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("push: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/notifications", bytes.NewReader(buf))
	if err != nil {
		return Result{}, fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.cfg.APIKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return Result{StatusCode: resp.StatusCode, Body: body}, nil
}
