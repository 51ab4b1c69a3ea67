// Package testing provides an in-process token issuer for tests. It serves
// a JWKS over httptest and signs ID tokens that validate against it, so
// verifier and handler tests run without a real identity provider.
//
// Example usage:
//
//	issuer := testing.NewTestIssuer("my-project")
//	defer issuer.Close()
//
//	token := issuer.Token("user-123", map[string]any{"hasPremium": true})
package testing

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

const jwksPath = "/.well-known/jwks.json"

// TestIssuer signs tokens and serves the matching JWKS.
type TestIssuer struct {
	server   *httptest.Server
	key      *rsa.PrivateKey
	kid      string
	audience string
}

// NewTestIssuer creates an issuer whose tokens carry the given audience.
// Call Close when done.
func NewTestIssuer(audience string) *TestIssuer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic("testing: generate rsa key: " + err.Error())
	}
	ti := &TestIssuer{key: key, kid: "test-key-1", audience: audience}

	mux := http.NewServeMux()
	mux.HandleFunc(jwksPath, ti.handleJWKS)
	ti.server = httptest.NewServer(mux)
	return ti
}

// URL returns the issuer identifier; tokens carry it as "iss".
func (ti *TestIssuer) URL() string { return ti.server.URL }

// JWKSURL returns where the public key set is served.
func (ti *TestIssuer) JWKSURL() string { return ti.server.URL + jwksPath }

// Audience returns the audience baked into issued tokens.
func (ti *TestIssuer) Audience() string { return ti.audience }

// Close shuts down the JWKS server.
func (ti *TestIssuer) Close() { ti.server.Close() }

func (ti *TestIssuer) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	pub, err := jwk.FromRaw(ti.key.Public())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = pub.Set(jwk.KeyIDKey, ti.kid)
	_ = pub.Set(jwk.AlgorithmKey, "RS256")
	_ = pub.Set(jwk.KeyUsageKey, "sig")
	set := jwk.NewSet()
	_ = set.AddKey(pub)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(set)
}

// Token signs an ID token for uid carrying the given custom claims.
func (ti *TestIssuer) Token(uid string, custom map[string]any) string {
	now := time.Now()
	mc := jwt.MapClaims{
		"sub": uid,
		"iss": ti.URL(),
		"aud": ti.audience,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for k, v := range custom {
		mc[k] = v
	}
	return ti.sign(mc)
}

// ExpiredToken signs a token whose expiry is already in the past.
func (ti *TestIssuer) ExpiredToken(uid string) string {
	now := time.Now()
	return ti.sign(jwt.MapClaims{
		"sub": uid,
		"iss": ti.URL(),
		"aud": ti.audience,
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-time.Hour).Unix(),
	})
}

func (ti *TestIssuer) sign(mc jwt.MapClaims) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, mc)
	tok.Header["kid"] = ti.kid
	signed, err := tok.SignedString(ti.key)
	if err != nil {
		panic("testing: sign token: " + err.Error())
	}
	return signed
}
