// Package config builds the service's explicit, immutable configuration
// from the environment, once, at startup. Components receive the struct by
// reference instead of reading ambient process state.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	Identity Identity
	Billing  Billing
	Push     Push
	Redis    Redis

	// OverrideEmails bypass billing verification during revalidation.
	OverrideEmails []string
}

// Identity covers both token verification and the claim store API.
type Identity struct {
	// CredentialsJSON is the decoded service-account key.
	CredentialsJSON []byte
	BaseURL         string
	Issuer          string
	Audience        string
	JWKSURL         string
	Timeout         time.Duration
}

type Billing struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Push struct {
	APIKey    string
	BaseURL   string
	AppID     string
	ChannelID string
	BundleID  string
	Timeout   time.Duration
}

type Redis struct {
	// Addr empty means the in-memory rate limiter is used.
	Addr     string
	Password string
	DB       int
}

// Load reads every recognized option from the environment and validates the
// result. It is the only place the process environment is consulted.
func Load() (*Config, error) {
	timeout, err := durationEnv("OUTBOUND_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	creds, err := credentialsEnv("GOOGLE_CREDENTIALS")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     getenv("PORT", "3000"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		Identity: Identity{
			CredentialsJSON: creds,
			BaseURL:         getenv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com"),
			Issuer:          os.Getenv("IDENTITY_ISSUER"),
			Audience:        os.Getenv("IDENTITY_AUDIENCE"),
			JWKSURL:         os.Getenv("IDENTITY_JWKS_URL"),
			Timeout:         timeout,
		},
		Billing: Billing{
			APIKey:  os.Getenv("BILLING_API_KEY"),
			BaseURL: getenv("BILLING_BASE_URL", "https://api.billing.example.com"),
			Timeout: timeout,
		},
		Push: Push{
			APIKey:    os.Getenv("PUSH_API_KEY"),
			BaseURL:   getenv("PUSH_BASE_URL", "https://api.push.example.com"),
			AppID:     os.Getenv("PUSH_APP_ID"),
			ChannelID: os.Getenv("PUSH_ANDROID_CHANNEL_ID"),
			BundleID:  os.Getenv("PUSH_BUNDLE_ID"),
			Timeout:   timeout,
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		OverrideEmails: splitList(os.Getenv("SUBSCRIPTION_SKIP_EMAILS")),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"GOOGLE_CREDENTIALS": string(c.Identity.CredentialsJSON),
		"IDENTITY_ISSUER":    c.Identity.Issuer,
		"IDENTITY_AUDIENCE":  c.Identity.Audience,
		"IDENTITY_JWKS_URL":  c.Identity.JWKSURL,
		"BILLING_API_KEY":    c.Billing.APIKey,
		"PUSH_API_KEY":       c.Push.APIKey,
		"PUSH_APP_ID":        c.Push.AppID,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("config: %s is required", name)
		}
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

// credentialsEnv accepts either raw JSON or base64-encoded JSON.
func credentialsEnv(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	if strings.HasPrefix(strings.TrimSpace(v), "{") {
		return []byte(v), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("config: %s: not JSON and not valid base64: %w", key, err)
	}
	return decoded, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
