package identity

import (
	"context"
	"testing"
	"time"

	authtest "github.com/PaulFidika/subkit/testing"
)

func newVerifier(t *testing.T, issuer *authtest.TestIssuer) *Verifier {
	t.Helper()
	v, err := NewVerifier(context.Background(), VerifierConfig{
		Issuer:   issuer.URL(),
		Audience: issuer.Audience(),
		JWKSURL:  issuer.JWKSURL(),
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestVerifyExtractsClaims(t *testing.T) {
	issuer := authtest.NewTestIssuer("test-project")
	defer issuer.Close()
	v := newVerifier(t, issuer)

	raw := issuer.Token("user-1", map[string]any{
		"trialExpireDate":       1700000000000,
		"hasPremium":            true,
		"lastSubscriptionCheck": 1690000000000,
	})
	tok, err := v.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if tok.UID != "user-1" {
		t.Errorf("uid = %q", tok.UID)
	}
	if tok.Claims.TrialExpireDate == nil || *tok.Claims.TrialExpireDate != 1700000000000 {
		t.Errorf("trialExpireDate = %v", tok.Claims.TrialExpireDate)
	}
	if !tok.Claims.PremiumActive() {
		t.Error("hasPremium not decoded")
	}
	if tok.Claims.LastSubscriptionCheck == nil || *tok.Claims.LastSubscriptionCheck != 1690000000000 {
		t.Errorf("lastSubscriptionCheck = %v", tok.Claims.LastSubscriptionCheck)
	}
}

func TestVerifyNoCustomClaims(t *testing.T) {
	issuer := authtest.NewTestIssuer("test-project")
	defer issuer.Close()
	v := newVerifier(t, issuer)

	tok, err := v.Verify(context.Background(), issuer.Token("user-2", nil))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if tok.Claims.TrialSet() || tok.Claims.HasPremium != nil {
		t.Errorf("expected empty claim set, got %+v", tok.Claims)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := authtest.NewTestIssuer("test-project")
	defer issuer.Close()
	v := newVerifier(t, issuer)

	if _, err := v.Verify(context.Background(), issuer.ExpiredToken("user-3")); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	issuer := authtest.NewTestIssuer("other-project")
	defer issuer.Close()
	v, err := NewVerifier(context.Background(), VerifierConfig{
		Issuer:    issuer.URL(),
		Audience:  "test-project",
		JWKSURL:   issuer.JWKSURL(),
		ClockSkew: time.Second,
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	if _, err := v.Verify(context.Background(), issuer.Token("user-4", nil)); err == nil {
		t.Fatal("audience mismatch must be rejected")
	}
}

func TestVerifyRejectsEmpty(t *testing.T) {
	issuer := authtest.NewTestIssuer("test-project")
	defer issuer.Close()
	v := newVerifier(t, issuer)

	if _, err := v.Verify(context.Background(), ""); err == nil {
		t.Fatal("empty token must be rejected")
	}
}
