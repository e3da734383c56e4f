package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"estatedesk.app/internal/audit"
	"estatedesk.app/internal/gateway"
	"estatedesk.app/internal/obs"
	"estatedesk.app/internal/session"
	"estatedesk.app/internal/view"
)

const sessionExpiredMsg = "Your session has expired. Please sign in again."

type pageHandler func(w http.ResponseWriter, r *http.Request, s *session.State)

// withSession loads the visitor's state once per request. Handlers that
// change it call save before writing the response.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := a.sessions.Load(r.Context(), r)
		next.ServeHTTP(w, r.WithContext(session.WithState(r.Context(), s)))
	})
}

func stateFrom(r *http.Request) *session.State {
	if s, ok := session.FromContext(r.Context()); ok {
		return s
	}
	return &session.State{}
}

func (a *App) save(w http.ResponseWriter, r *http.Request, s *session.State) {
	if err := a.sessions.Save(r.Context(), w, s); err != nil {
		obs.Logger().Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("session_save_failed")
	}
}

// protect runs the route guard before next. A redirect or wait verdict ends
// the request there; next never sees an unauthenticated visitor.
func (a *App) protect(next pageHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := stateFrom(r)
		hadPending := s.Pending != nil
		v := a.guard.Evaluate(s, a.now())
		switch v.Decision {
		case session.Wait:
			a.save(w, r, s)
			target := r.URL.RequestURI()
			if r.Method != http.MethodGet {
				target = "/dashboard"
			}
			writeHTML(w, http.StatusOK, view.WaitPage(target))
			return
		case session.Redirect:
			if hadPending {
				a.save(w, r, s)
			}
			http.Redirect(w, r, v.Location, http.StatusSeeOther)
			return
		}
		ctx := r.Context()
		if tok := s.AccessToken(); tok != "" {
			ctx = gateway.WithAccessToken(ctx, tok)
		}
		ctx = audit.WithActor(ctx, s.UserID(), s.Method())
		next(w, r.WithContext(ctx), s)
	}
}

// forceLogout handles a backend 401: the session is dropped and the visitor
// lands on the entry page with a notice. Reports whether it took over the
// response.
func (a *App) forceLogout(w http.ResponseWriter, r *http.Request, s *session.State, err error) bool {
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return false
	}
	_ = audit.LogEvent(r.Context(), "session.forced_logout", map[string]any{"method": s.Method()})
	fresh := a.sessions.Renew(r.Context(), s)
	fresh.SetFlash(sessionExpiredMsg)
	a.save(w, r, fresh)
	http.Redirect(w, r, a.entry(), http.StatusSeeOther)
	return true
}

func (a *App) entry() string {
	if a.guard.EntryPath == "" {
		return "/login"
	}
	return a.guard.EntryPath
}

// bannerFor turns a gateway failure into the page banner.
func bannerFor(err error, retry string) *view.Banner {
	var (
		netErr *gateway.NetworkError
		apiErr *gateway.APIError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return &view.Banner{Message: "Unable to reach the server. Please check your connection and try again.", RetryPath: retry}
	case errors.As(err, &apiErr):
		msg := fmt.Sprintf("The server rejected the request (%d %s).", apiErr.Status, http.StatusText(apiErr.Status))
		return &view.Banner{Message: msg, RetryPath: retry}
	case errors.Is(err, gateway.ErrMalformedResponse):
		return &view.Banner{Message: "The server sent a response that could not be read.", RetryPath: retry}
	}
	return &view.Banner{Message: "Something went wrong. Please try again.", RetryPath: retry}
}
