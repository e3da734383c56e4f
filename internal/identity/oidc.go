package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Config holds the client registration at the provider.
type Config struct {
	IssuerURL          string
	ClientID           string
	ClientSecret       string
	RedirectURL        string
	PostLogoutRedirect string
	Scopes             []string
	// HTTPClient is used for discovery, key fetches and the token exchange.
	HTTPClient *http.Client
}

// OIDC is a Provider backed by an OpenID Connect issuer. Discovery runs on
// first use and is retried until it succeeds, so the server can start while
// the issuer is unreachable.
type OIDC struct {
	cfg Config

	mu         sync.Mutex
	provider   *oidc.Provider
	verifier   *oidc.IDTokenVerifier
	oauth      oauth2.Config
	endSession string
}

func NewOIDC(cfg Config) (*OIDC, error) {
	cfg.IssuerURL = strings.TrimRight(strings.TrimSpace(cfg.IssuerURL), "/")
	if cfg.IssuerURL == "" || strings.TrimSpace(cfg.ClientID) == "" {
		return nil, ErrNotConfigured
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}
	return &OIDC{cfg: cfg}, nil
}

func (o *OIDC) Enabled() bool { return true }

func (o *OIDC) withClient(ctx context.Context) context.Context {
	if o.cfg.HTTPClient != nil {
		return oidc.ClientContext(ctx, o.cfg.HTTPClient)
	}
	return ctx
}

func (o *OIDC) discover(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.provider != nil {
		return nil
	}
	p, err := oidc.NewProvider(o.withClient(ctx), o.cfg.IssuerURL)
	if err != nil {
		return fmt.Errorf("oidc discovery: %w", err)
	}
	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := p.Claims(&extra); err != nil {
		return fmt.Errorf("oidc discovery claims: %w", err)
	}
	scopes := o.cfg.Scopes
	hasOpenID := false
	for _, s := range scopes {
		if s == oidc.ScopeOpenID {
			hasOpenID = true
		}
	}
	if !hasOpenID {
		scopes = append([]string{oidc.ScopeOpenID}, scopes...)
	}
	o.provider = p
	o.verifier = p.Verifier(&oidc.Config{ClientID: o.cfg.ClientID})
	o.endSession = extra.EndSessionEndpoint
	o.oauth = oauth2.Config{
		ClientID:     o.cfg.ClientID,
		ClientSecret: o.cfg.ClientSecret,
		Endpoint:     p.Endpoint(),
		RedirectURL:  o.cfg.RedirectURL,
		Scopes:       scopes,
	}
	return nil
}

func (o *OIDC) SignInURL(ctx context.Context, state, nonce string) (string, error) {
	if err := o.discover(ctx); err != nil {
		return "", err
	}
	return o.oauth.AuthCodeURL(state, oidc.Nonce(nonce)), nil
}

func (o *OIDC) Exchange(ctx context.Context, code, nonce string) (Tokens, User, error) {
	if strings.TrimSpace(code) == "" {
		return Tokens{}, User{}, errors.New("authorization code missing")
	}
	if err := o.discover(ctx); err != nil {
		return Tokens{}, User{}, err
	}
	ctx = o.withClient(ctx)
	tok, err := o.oauth.Exchange(ctx, code)
	if err != nil {
		return Tokens{}, User{}, fmt.Errorf("token exchange: %w", err)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return Tokens{}, User{}, errors.New("token response has no id_token")
	}
	idToken, err := o.verifier.Verify(ctx, rawID)
	if err != nil {
		return Tokens{}, User{}, fmt.Errorf("verify id token: %w", err)
	}
	if idToken.Nonce != nonce {
		return Tokens{}, User{}, errors.New("id token nonce mismatch")
	}
	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		Username          string `json:"username"`
		Name              string `json:"name"`
		GivenName         string `json:"given_name"`
		Email             string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Tokens{}, User{}, fmt.Errorf("decode id token claims: %w", err)
	}
	user := User{
		Subject:     idToken.Subject,
		Username:    firstNonEmpty(claims.PreferredUsername, claims.Username, claims.Email),
		DisplayName: firstNonEmpty(claims.Name, claims.GivenName),
		Email:       claims.Email,
	}
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = idToken.Expiry
	}
	return Tokens{IDToken: rawID, AccessToken: tok.AccessToken, Expiry: expiry}, user, nil
}

// SignOut builds the RP-initiated logout URL. Providers without an
// end_session_endpoint yield "".
func (o *OIDC) SignOut(ctx context.Context, idTokenHint string) (string, error) {
	if err := o.discover(ctx); err != nil {
		return "", err
	}
	if o.endSession == "" {
		return "", nil
	}
	u, err := url.Parse(o.endSession)
	if err != nil {
		return "", fmt.Errorf("parse end_session_endpoint: %w", err)
	}
	q := u.Query()
	if idTokenHint != "" {
		q.Set("id_token_hint", idTokenHint)
	}
	if o.cfg.PostLogoutRedirect != "" {
		q.Set("post_logout_redirect_uri", o.cfg.PostLogoutRedirect)
	}
	q.Set("client_id", o.cfg.ClientID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
