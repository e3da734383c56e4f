// Package identity drives the delegated (OIDC) sign-in flow.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned by every operation of the Disabled provider.
var ErrNotConfigured = errors.New("identity provider is not configured")

// Tokens are the credentials issued by the provider after a successful exchange.
type Tokens struct {
	IDToken     string
	AccessToken string
	Expiry      time.Time
}

// User is the identity asserted by the provider's ID token.
type User struct {
	Subject     string
	Username    string
	DisplayName string
	Email       string
}

// Provider is the delegated sign-in surface the web layer consumes.
type Provider interface {
	Enabled() bool
	SignInURL(ctx context.Context, state, nonce string) (string, error)
	Exchange(ctx context.Context, code, nonce string) (Tokens, User, error)
	// SignOut returns the provider URL that ends the session there, or "" when
	// the provider offers none.
	SignOut(ctx context.Context, idTokenHint string) (string, error)
}

// NewState returns fresh state and nonce values for one sign-in attempt.
func NewState() (state, nonce string) {
	return uuid.NewString(), uuid.NewString()
}

// Disabled stands in when no client id is configured.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) SignInURL(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Exchange(context.Context, string, string) (Tokens, User, error) {
	return Tokens{}, User{}, ErrNotConfigured
}

func (Disabled) SignOut(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
