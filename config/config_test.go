package config

import (
	"encoding/base64"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CREDENTIALS", `{"type":"service_account"}`)
	t.Setenv("IDENTITY_ISSUER", "https://issuer.example.com")
	t.Setenv("IDENTITY_AUDIENCE", "proj-1")
	t.Setenv("IDENTITY_JWKS_URL", "https://issuer.example.com/jwks")
	t.Setenv("BILLING_API_KEY", "bk")
	t.Setenv("PUSH_API_KEY", "pk")
	t.Setenv("PUSH_APP_ID", "app-1")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Billing.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Billing.Timeout)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("BILLING_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("missing required key must fail")
	}
}

func TestLoadBase64Credentials(t *testing.T) {
	setRequired(t)
	raw := `{"type":"service_account","project_id":"p"}`
	t.Setenv("GOOGLE_CREDENTIALS", base64.StdEncoding.EncodeToString([]byte(raw)))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(cfg.Identity.CredentialsJSON) != raw {
		t.Errorf("credentials = %s", cfg.Identity.CredentialsJSON)
	}
}

func TestLoadBadCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("GOOGLE_CREDENTIALS", "!!not-base64!!")
	if _, err := Load(); err == nil {
		t.Fatal("malformed credentials must fail")
	}
}

func TestLoadOverrideList(t *testing.T) {
	setRequired(t)
	t.Setenv("SUBSCRIPTION_SKIP_EMAILS", "a@x.com, B@Y.com ,,c@z.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"a@x.com", "B@Y.com", "c@z.com"}
	if len(cfg.OverrideEmails) != len(want) {
		t.Fatalf("overrides = %v", cfg.OverrideEmails)
	}
	for i := range want {
		if cfg.OverrideEmails[i] != want[i] {
			t.Errorf("override[%d] = %q, want %q", i, cfg.OverrideEmails[i], want[i])
		}
	}
}

func TestLoadBadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("OUTBOUND_TIMEOUT", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatal("bad duration must fail")
	}
}
