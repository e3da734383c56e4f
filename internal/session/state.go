// Package session owns the visitor's authentication state. Two independent
// sources can authenticate a visitor: the delegated identity provider and the
// local demo login. Callers only see the unified predicate plus Login/Logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estatedesk.app/internal/obs"
)

// Identity describes the signed-in user.
type Identity struct {
	Subject     string   `json:"subject,omitempty"`
	Username    string   `json:"username,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Delegated is the identity provider session.
type Delegated struct {
	Authenticated bool      `json:"authenticated"`
	Identity      Identity  `json:"identity"`
	IDToken       string    `json:"idToken,omitempty"`
	AccessToken   string    `json:"accessToken,omitempty"`
	Expiry        time.Time `json:"expiry,omitempty"`
}

// Local is the demo-credential session.
type Local struct {
	Authenticated bool     `json:"authenticated"`
	Identity      Identity `json:"identity"`
}

// PendingSignIn tracks a delegated sign-in between the redirect to the
// provider and its callback.
type PendingSignIn struct {
	State     string    `json:"state"`
	Nonce     string    `json:"nonce"`
	StartedAt time.Time `json:"startedAt"`
	GraceUsed bool      `json:"graceUsed"`
}

// State is everything kept server-side for one browser.
type State struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Delegated Delegated      `json:"delegated"`
	Local     Local          `json:"local"`
	Pending   *PendingSignIn `json:"pending,omitempty"`
	Flash     string         `json:"flash,omitempty"`
}

// AuthFlowError is a delegated sign-in or sign-out failure. It is logged and
// the visitor proceeds as logged out.
type AuthFlowError struct {
	Op  string
	Err error
}

func (e *AuthFlowError) Error() string { return fmt.Sprintf("auth flow %s: %v", e.Op, e.Err) }

func (e *AuthFlowError) Unwrap() error { return e.Err }

// SignOuter ends the delegated session at the identity provider and returns
// the URL the browser should visit to finish signing out, if any.
type SignOuter interface {
	SignOut(ctx context.Context, idTokenHint string) (string, error)
}

const defaultDisplayName = "User"

// IsAuthenticated is true when either session is active.
func (s *State) IsAuthenticated() bool {
	return s.authenticatedAt(time.Now())
}

func (s *State) authenticatedAt(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.delegatedActive(now) || s.Local.Authenticated
}

func (s *State) delegatedActive(now time.Time) bool {
	if !s.Delegated.Authenticated {
		return false
	}
	return s.Delegated.Expiry.IsZero() || now.Before(s.Delegated.Expiry)
}

// Login accepts any pair of non-empty credentials. No password check happens:
// the local session is a demo stub. On failure state is unchanged.
func (s *State) Login(username, password string) bool {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false
	}
	s.Local = Local{
		Authenticated: true,
		Identity:      Identity{Username: username, Roles: []string{"admin"}},
	}
	return true
}

// BeginSignIn records an outstanding delegated sign-in.
func (s *State) BeginSignIn(state, nonce string, now time.Time) {
	s.Pending = &PendingSignIn{State: state, Nonce: nonce, StartedAt: now}
}

// CompleteSignIn installs the delegated session and clears the pending marker.
func (s *State) CompleteSignIn(id Identity, idToken, accessToken string, expiry time.Time) {
	s.Delegated = Delegated{
		Authenticated: true,
		Identity:      id,
		IDToken:       idToken,
		AccessToken:   accessToken,
		Expiry:        expiry,
	}
	s.Pending = nil
}

// AbortSignIn drops a pending delegated sign-in.
func (s *State) AbortSignIn() { s.Pending = nil }

// AccessToken returns the delegated access token while that session is active.
func (s *State) AccessToken() string {
	if s == nil || !s.delegatedActive(time.Now()) {
		return ""
	}
	return s.Delegated.AccessToken
}

// Logout clears both sessions. When the delegated session is active the
// provider sign-out runs first; its failure is logged and tolerated. The
// returned target is the provider's end-session URL when one is available,
// otherwise entry.
func (s *State) Logout(ctx context.Context, provider SignOuter, entry string) string {
	target := entry
	if s.Delegated.Authenticated && provider != nil {
		url, err := provider.SignOut(ctx, s.Delegated.IDToken)
		if err != nil {
			flowErr := &AuthFlowError{Op: "sign_out", Err: err}
			obs.Logger().Warn().Err(flowErr).Str("session_id", s.ID).Msg("sign_out_failed")
		} else if url != "" {
			target = url
		}
	}
	s.Delegated = Delegated{}
	s.Local = Local{}
	s.Pending = nil
	return target
}

// DisplayName picks the best available name for the header greeting.
func (s *State) DisplayName() string {
	if s == nil {
		return defaultDisplayName
	}
	if s.delegatedActive(time.Now()) {
		id := s.Delegated.Identity
		for _, v := range []string{id.DisplayName, id.Username} {
			if strings.TrimSpace(v) != "" {
				return v
			}
		}
		return defaultDisplayName
	}
	if s.Local.Authenticated && strings.TrimSpace(s.Local.Identity.Username) != "" {
		return s.Local.Identity.Username
	}
	return defaultDisplayName
}

// Method names the active login source for metrics and audit ("oidc", "local").
func (s *State) Method() string {
	switch {
	case s == nil:
		return ""
	case s.delegatedActive(time.Now()):
		return "oidc"
	case s.Local.Authenticated:
		return "local"
	}
	return ""
}

// UserID is the identifier written to audit events.
func (s *State) UserID() string {
	switch s.Method() {
	case "oidc":
		if s.Delegated.Identity.Subject != "" {
			return s.Delegated.Identity.Subject
		}
		return s.Delegated.Identity.Username
	case "local":
		return s.Local.Identity.Username
	}
	return ""
}

// SetFlash stores a one-shot message for the next rendered page.
func (s *State) SetFlash(msg string) { s.Flash = msg }

// TakeFlash returns and clears the flash message.
func (s *State) TakeFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

// IsAuthFlowError reports whether err came from the delegated flow.
func IsAuthFlowError(err error) bool {
	var target *AuthFlowError
	return errors.As(err, &target)
}
