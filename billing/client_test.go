package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PaulFidika/subkit/entitlements"
)

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/profiles/cust-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Api-Key sk_test" {
			t.Errorf("auth header = %q", got)
		}
		_, _ = w.Write([]byte(`{"data":{"customer_user_id":"cust-1","access_levels":{
			"premium":{"starts_at":"2025-01-01T00:00:00Z","expires_at":"2025-12-31T00:00:00Z"},
			"lifetime":{}
		}}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "sk_test"})
	p, err := c.FetchProfile(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if p.CustomerID != "cust-1" {
		t.Errorf("customer id = %q", p.CustomerID)
	}
	if len(p.AccessLevels) != 2 {
		t.Fatalf("levels = %d", len(p.AccessLevels))
	}
	mid := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !entitlements.AnyActive(p.AccessLevels, mid) {
		t.Error("expected an active level mid-window")
	}
}

func TestFetchProfileUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "sk_test"})
	_, err := c.FetchProfile(context.Background(), "cust-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchProfileEmptyLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"customer_user_id":"cust-2","access_levels":{}}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "sk_test"})
	p, err := c.FetchProfile(context.Background(), "cust-2")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if entitlements.AnyActive(p.AccessLevels, time.Now()) {
		t.Error("no levels must evaluate inactive")
	}
}
