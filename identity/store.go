package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/PaulFidika/subkit/claims"
)

const accountScope = "https://www.googleapis.com/auth/identitytoolkit"

// ErrUserNotFound is returned when the provider has no account for the uid.
var ErrUserNotFound = errors.New("identity: user not found")

// UserRecord is the account metadata this service reads from the provider.
type UserRecord struct {
	UID       string
	Email     string
	CreatedAt time.Time
}

// StoreConfig configures the claim store client.
type StoreConfig struct {
	// BaseURL of the provider's account-management API.
	BaseURL string
	// CredentialsJSON is the service-account key used to mint access tokens.
	CredentialsJSON []byte
	// HTTPClient overrides the authenticated client; used by tests.
	HTTPClient *http.Client
	// Timeout bounds each round-trip when HTTPClient is not supplied.
	Timeout time.Duration
}

// Store performs minimal account lookups and claim-set replacement against
// the identity provider's REST API.
//
// SetClaims is a single-shot full replacement with no compare-and-swap: two
// concurrent writers for one uid can interleave and the last write wins.
// Callers keep each read-then-write sequence inside one request and accept
// that race window.
type Store struct {
	baseURL string
	http    *http.Client
}

// NewStore builds a store client. When CredentialsJSON is set, requests are
// authenticated with a service-account token source.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("identity: store base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		if len(cfg.CredentialsJSON) == 0 {
			return nil, errors.New("identity: credentials are required")
		}
		jc, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, accountScope)
		if err != nil {
			return nil, fmt.Errorf("identity: parse credentials: %w", err)
		}
		base := &http.Client{Timeout: cfg.Timeout}
		client = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), jc.TokenSource(ctx))
		client.Timeout = cfg.Timeout
	}
	return &Store{baseURL: cfg.BaseURL, http: client}, nil
}

type lookupResponse struct {
	Users []struct {
		LocalID   string `json:"localId"`
		Email     string `json:"email"`
		CreatedAt string `json:"createdAt"` // epoch ms, as a string
	} `json:"users"`
}

// GetUser fetches the account's creation instant and email.
func (s *Store) GetUser(ctx context.Context, uid string) (UserRecord, error) {
	body, err := s.post(ctx, "/v1/accounts:lookup", map[string]any{"localId": []string{uid}})
	if err != nil {
		return UserRecord{}, err
	}
	var res lookupResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return UserRecord{}, fmt.Errorf("identity: decode lookup: %w", err)
	}
	if len(res.Users) == 0 {
		return UserRecord{}, ErrUserNotFound
	}
	u := res.Users[0]
	createdMs, err := strconv.ParseInt(u.CreatedAt, 10, 64)
	if err != nil {
		return UserRecord{}, fmt.Errorf("identity: bad createdAt %q: %w", u.CreatedAt, err)
	}
	return UserRecord{UID: u.LocalID, Email: u.Email, CreatedAt: time.UnixMilli(createdMs)}, nil
}

// SetClaims replaces the account's entire custom claim set.
func (s *Store) SetClaims(ctx context.Context, uid string, cs claims.UserClaims) error {
	attrs, err := json.Marshal(cs.ToMap())
	if err != nil {
		return fmt.Errorf("identity: encode claims: %w", err)
	}
	_, err = s.post(ctx, "/v1/accounts:update", map[string]any{
		"localId":          uid,
		"customAttributes": string(attrs),
	})
	return err
}

func (s *Store) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("identity: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("identity: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("identity: %s returned %d", path, resp.StatusCode)
	}
	return body, nil
}
