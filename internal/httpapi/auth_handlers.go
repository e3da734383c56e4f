package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"estatedesk.app/internal/audit"
	"estatedesk.app/internal/identity"
	"estatedesk.app/internal/obs"
	"estatedesk.app/internal/session"
	"estatedesk.app/internal/view"
)

const (
	demoUsername = "admin"
	demoPassword = "admin123"

	invalidCredentialsMsg = "Invalid username or password."
	signInFailedMsg       = "Sign-in could not be completed. Please try again."
	ssoUnavailableMsg     = "Single sign-on is currently unavailable."
)

var (
	errNoPendingSignIn = errors.New("no sign-in in progress")
	errStateMismatch   = errors.New("state parameter does not match")
)

func providerError(code, desc string) error {
	if desc == "" {
		return fmt.Errorf("provider returned %s", code)
	}
	return fmt.Errorf("provider returned %s: %s", code, desc)
}

func (a *App) loginPage(s *session.State) view.LoginPage {
	return view.LoginPage{
		Flash:    s.TakeFlash(),
		Warnings: a.cfg.Warnings(),
		OIDC:     a.idp.Enabled(),
	}
}

func (a *App) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s := stateFrom(r)
	if s.IsAuthenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	p := a.loginPage(s)
	if p.Flash != "" {
		a.save(w, r, s)
	}
	writeHTML(w, http.StatusOK, p.Render())
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	a.localLogin(w, r, r.PostForm.Get("username"), r.PostForm.Get("password"))
}

func (a *App) handleDemoLogin(w http.ResponseWriter, r *http.Request) {
	a.localLogin(w, r, demoUsername, demoPassword)
}

// localLogin signs in with the demo credential stub. A new session id is
// issued on success.
func (a *App) localLogin(w http.ResponseWriter, r *http.Request, username, password string) {
	s := stateFrom(r)
	var probe session.State
	if !probe.Login(username, password) {
		obs.CountLogin("local", false)
		p := a.loginPage(s)
		if p.Flash != "" {
			a.save(w, r, s)
		}
		p.Username = username
		p.Error = invalidCredentialsMsg
		writeHTML(w, http.StatusOK, p.Render())
		return
	}
	fresh := a.sessions.Renew(r.Context(), s)
	fresh.Local = probe.Local
	obs.CountLogin("local", true)
	a.save(w, r, fresh)
	ctx := audit.WithActor(r.Context(), fresh.UserID(), fresh.Method())
	_ = audit.LogEvent(ctx, "session.login", map[string]any{"method": "local"})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (a *App) handleOIDCStart(w http.ResponseWriter, r *http.Request) {
	s := stateFrom(r)
	if !a.idp.Enabled() {
		s.SetFlash(ssoUnavailableMsg)
		a.save(w, r, s)
		http.Redirect(w, r, a.entry(), http.StatusSeeOther)
		return
	}
	state, nonce := identity.NewState()
	target, err := a.idp.SignInURL(r.Context(), state, nonce)
	if err != nil {
		flowErr := &session.AuthFlowError{Op: "sign_in_start", Err: err}
		obs.Logger().Warn().Err(flowErr).Str("request_id", requestIDFrom(r.Context())).Msg("sign_in_failed")
		s.SetFlash(ssoUnavailableMsg)
		a.save(w, r, s)
		http.Redirect(w, r, a.entry(), http.StatusSeeOther)
		return
	}
	s.BeginSignIn(state, nonce, a.now())
	a.save(w, r, s)
	http.Redirect(w, r, target, http.StatusFound)
}

// handleOIDCCallback completes the delegated sign-in. Any failure is an
// AuthFlowError: logged, and the visitor proceeds as logged out.
func (a *App) handleOIDCCallback(w http.ResponseWriter, r *http.Request) {
	s := stateFrom(r)
	q := r.URL.Query()
	fail := func(op string, err error) {
		flowErr := &session.AuthFlowError{Op: op, Err: err}
		obs.Logger().Warn().Err(flowErr).Str("request_id", requestIDFrom(r.Context())).Msg("sign_in_failed")
		obs.CountLogin("oidc", false)
		s.AbortSignIn()
		s.SetFlash(signInFailedMsg)
		a.save(w, r, s)
		http.Redirect(w, r, a.entry(), http.StatusSeeOther)
	}

	switch {
	case q.Get("error") != "":
		fail("callback", providerError(q.Get("error"), q.Get("error_description")))
		return
	case s.Pending == nil:
		fail("callback", errNoPendingSignIn)
		return
	case q.Get("state") != s.Pending.State:
		fail("callback", errStateMismatch)
		return
	}

	tokens, user, err := a.idp.Exchange(r.Context(), q.Get("code"), s.Pending.Nonce)
	if err != nil {
		fail("exchange", err)
		return
	}
	fresh := a.sessions.Renew(r.Context(), s)
	fresh.CompleteSignIn(session.Identity{
		Subject:     user.Subject,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}, tokens.IDToken, tokens.AccessToken, tokens.Expiry)
	obs.CountLogin("oidc", true)
	a.save(w, r, fresh)
	ctx := audit.WithActor(r.Context(), fresh.UserID(), fresh.Method())
	_ = audit.LogEvent(ctx, "session.login", map[string]any{"method": "oidc"})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout clears both sessions whatever the provider says, then sends
// the visitor to the provider's end-session page or the entry page.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	s := stateFrom(r)
	ctx := audit.WithActor(r.Context(), s.UserID(), s.Method())
	target := s.Logout(ctx, a.idp, a.entry())
	if err := a.sessions.Destroy(ctx, w, s); err != nil {
		obs.Logger().Warn().Err(err).Str("request_id", requestIDFrom(ctx)).Msg("session_destroy_failed")
	}
	_ = audit.LogEvent(ctx, "session.logout", nil)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
