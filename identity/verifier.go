// Package identity integrates with the identity provider: it verifies the
// bearer ID tokens callers present and reads/overwrites the per-user claim
// set the provider stores.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/PaulFidika/subkit/claims"
)

const (
	defaultClockSkew  = 30 * time.Second
	defaultMinRefresh = 5 * time.Minute
	defaultTimeout    = 10 * time.Second
)

// Token is the decoded result of verifying a bearer ID token. Claims reflect
// the state at token-issue time, not necessarily the store's current state.
type Token struct {
	UID    string
	Claims claims.UserClaims
}

// VerifierConfig describes the issuer whose tokens are accepted.
type VerifierConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string

	ClockSkew   time.Duration
	MinRefresh  time.Duration
	HTTPTimeout time.Duration
}

func (c *VerifierConfig) normalize() error {
	if strings.TrimSpace(c.Issuer) == "" {
		return errors.New("identity: issuer is required")
	}
	if strings.TrimSpace(c.Audience) == "" {
		return errors.New("identity: audience is required")
	}
	if strings.TrimSpace(c.JWKSURL) == "" {
		return errors.New("identity: jwks url is required")
	}
	if c.ClockSkew <= 0 {
		c.ClockSkew = defaultClockSkew
	}
	if c.MinRefresh <= 0 {
		c.MinRefresh = defaultMinRefresh
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultTimeout
	}
	return nil
}

// Verifier validates ID tokens against issuer, audience, and a cached JWKS.
type Verifier struct {
	cfg   VerifierConfig
	cache *jwk.Cache
}

// NewVerifier builds a verifier and registers the JWKS endpoint with a
// refreshing cache. ctx bounds the lifetime of the cache's refresher.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	cache := jwk.NewCache(ctx)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if err := cache.Register(
		cfg.JWKSURL,
		jwk.WithMinRefreshInterval(cfg.MinRefresh),
		jwk.WithHTTPClient(httpClient),
	); err != nil {
		return nil, fmt.Errorf("identity: register jwks: %w", err)
	}
	return &Verifier{cfg: cfg, cache: cache}, nil
}

// Verify validates the raw token and extracts the uid and entitlement claims.
func (v *Verifier) Verify(ctx context.Context, raw string) (Token, error) {
	if strings.TrimSpace(raw) == "" {
		return Token{}, errors.New("identity: empty token")
	}
	set, err := v.cache.Get(ctx, v.cfg.JWKSURL)
	if err != nil {
		return Token{}, fmt.Errorf("identity: jwks fetch: %w", err)
	}
	tok, err := jwt.ParseString(
		raw,
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithAcceptableSkew(v.cfg.ClockSkew),
		jwt.WithContext(ctx),
	)
	if err != nil {
		return Token{}, fmt.Errorf("identity: token rejected: %w", err)
	}
	uid := tok.Subject()
	if uid == "" {
		return Token{}, errors.New("identity: token has no subject")
	}
	return Token{UID: uid, Claims: claims.FromMap(tok.PrivateClaims())}, nil
}
