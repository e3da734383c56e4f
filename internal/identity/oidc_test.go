package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	srv        *httptest.Server
	key        *rsa.PrivateKey
	nonce      string
	endSession bool
	claims     jwt.MapClaims
}

func newFakeIssuer(t *testing.T, endSession bool) *fakeIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &fakeIssuer{key: key, endSession: endSession}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		doc := map[string]any{
			"issuer":                                f.srv.URL,
			"authorization_endpoint":                f.srv.URL + "/authorize",
			"token_endpoint":                        f.srv.URL + "/token",
			"jwks_uri":                              f.srv.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		}
		if f.endSession {
			doc["end_session_endpoint"] = f.srv.URL + "/logout"
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		pub := f.key.PublicKey
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA", "kid": "k1", "alg": "RS256", "use": "sig",
			"n": base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e": base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		now := time.Now()
		claims := jwt.MapClaims{
			"iss":   f.srv.URL,
			"sub":   "user-1",
			"aud":   "client-1",
			"iat":   now.Unix(),
			"exp":   now.Add(time.Hour).Unix(),
			"nonce": f.nonce,
			"name":  "Kamal Perera",
			"email": "kamal@example.lk",

			"preferred_username": "kperera",
		}
		for k, v := range f.claims {
			claims[k] = v
		}
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		tok.Header["kid"] = "k1"
		signed, err := tok.SignedString(f.key)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     signed,
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newProvider(t *testing.T, f *fakeIssuer) *OIDC {
	t.Helper()
	p, err := NewOIDC(Config{
		IssuerURL:          f.srv.URL,
		ClientID:           "client-1",
		ClientSecret:       "secret",
		RedirectURL:        "http://localhost:8080/auth/callback",
		PostLogoutRedirect: "http://localhost:8080/login",
		Scopes:             []string{"profile"},
	})
	require.NoError(t, err)
	return p
}

func TestNewOIDCRequiresClientAndIssuer(t *testing.T) {
	_, err := NewOIDC(Config{IssuerURL: "https://idp.example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewOIDC(Config{ClientID: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSignInURL(t *testing.T) {
	f := newFakeIssuer(t, false)
	p := newProvider(t, f)

	raw, err := p.SignInURL(context.Background(), "st-1", "n-1")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "n-1", q.Get("nonce"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestExchange(t *testing.T) {
	f := newFakeIssuer(t, false)
	f.nonce = "n-1"
	p := newProvider(t, f)

	tokens, user, err := p.Exchange(context.Background(), "good-code", "n-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.NotEmpty(t, tokens.IDToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tokens.Expiry, time.Minute)
	assert.Equal(t, User{Subject: "user-1", Username: "kperera", DisplayName: "Kamal Perera", Email: "kamal@example.lk"}, user)
}

func TestExchangeRejectsNonceMismatchAndBadCode(t *testing.T) {
	f := newFakeIssuer(t, false)
	f.nonce = "issued"
	p := newProvider(t, f)

	_, _, err := p.Exchange(context.Background(), "good-code", "expected")
	assert.Error(t, err)

	_, _, err = p.Exchange(context.Background(), "bad-code", "issued")
	assert.Error(t, err)

	_, _, err = p.Exchange(context.Background(), "", "issued")
	assert.Error(t, err)
}

func TestSignOut(t *testing.T) {
	f := newFakeIssuer(t, true)
	p := newProvider(t, f)

	raw, err := p.SignOut(context.Background(), "id-tok")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/logout", u.Path)
	assert.Equal(t, "id-tok", u.Query().Get("id_token_hint"))
	assert.Equal(t, "http://localhost:8080/login", u.Query().Get("post_logout_redirect_uri"))

	plain := newProvider(t, newFakeIssuer(t, false))
	raw, err = plain.SignOut(context.Background(), "id-tok")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestDiscoveryFailureIsRetried(t *testing.T) {
	p, err := NewOIDC(Config{IssuerURL: "http://127.0.0.1:1", ClientID: "c"})
	require.NoError(t, err)
	_, err = p.SignInURL(context.Background(), "s", "n")
	assert.Error(t, err)
	assert.Nil(t, p.provider)
}

func TestDisabled(t *testing.T) {
	var p Provider = Disabled{}
	assert.False(t, p.Enabled())
	_, err := p.SignInURL(context.Background(), "s", "n")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, _, err = p.Exchange(context.Background(), "c", "n")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = p.SignOut(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewState(t *testing.T) {
	s1, n1 := NewState()
	s2, n2 := NewState()
	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, s1, n1)
}
