// Package httpapi is the HTTP surface of the front end: routing, the session
// gate, and the handlers behind every page.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"estatedesk.app/internal/config"
	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/identity"
	"estatedesk.app/internal/obs"
	"estatedesk.app/internal/pages"
	"estatedesk.app/internal/session"
	"estatedesk.app/internal/view"
)

const maxFormBytes = 1 << 20

// Pinger is anything readiness can be checked against, normally the gateway.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyProbe reports whether the backend API answers.
type ReadyProbe struct {
	Backend Pinger
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.Backend == nil {
		return nil
	}
	return rp.Backend.Ping(ctx)
}

// Options wires an App.
type Options struct {
	Config   config.Config
	Sessions *session.Manager
	Identity identity.Provider
	Backend  pages.Backend
	Ready    ReadyProbe
	Version  string
}

// App is the HTTP layer.
type App struct {
	mux      *http.ServeMux
	cfg      config.Config
	sessions *session.Manager
	guard    session.Guard
	idp      identity.Provider
	pages    *pages.Controller
	ready    ReadyProbe
	version  string
	now      func() time.Time
}

func New(opts Options) *App {
	idp := opts.Identity
	if idp == nil {
		idp = identity.Disabled{}
	}
	a := &App{
		mux:      http.NewServeMux(),
		cfg:      opts.Config,
		sessions: opts.Sessions,
		guard:    session.Guard{EntryPath: opts.Config.EntryPath},
		idp:      idp,
		pages:    pages.NewController(opts.Backend),
		ready:    opts.Ready,
		version:  opts.Version,
		now:      time.Now,
	}
	a.routes()
	return a
}

func (a *App) routes() {
	// health/ready/metrics
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())
	a.mux.HandleFunc("GET "+view.StylesheetURL, serveStylesheet)

	// entry and sign-in
	a.mux.HandleFunc("GET /{$}", a.handleRoot)
	a.mux.HandleFunc("GET "+a.entry(), a.handleLoginPage)
	login := http.NewServeMux()
	login.HandleFunc("POST /login", a.handleLogin)
	login.HandleFunc("POST /login/demo", a.handleDemoLogin)
	limited := RateLimit(login, a.cfg.LoginBurst, a.cfg.LoginPerSecond, a.cfg.TrustProxy)
	a.mux.Handle("POST /login", limited)
	a.mux.Handle("POST /login/demo", limited)
	a.mux.HandleFunc("GET /login/oidc", a.handleOIDCStart)
	a.mux.HandleFunc("GET /auth/callback", a.handleOIDCCallback)
	a.mux.HandleFunc("POST /logout", a.handleLogout)

	// protected pages
	a.mux.HandleFunc("GET /dashboard", a.protect(a.handleDashboard))
	a.mux.HandleFunc("GET /{resource}", a.protect(a.handleList))
	a.mux.HandleFunc("POST /{resource}", a.protect(a.handleCreate))
	a.mux.HandleFunc("GET /{resource}/new", a.protect(a.handleNew))
	a.mux.HandleFunc("GET /{resource}/{id}/edit", a.protect(a.handleEdit))
	a.mux.HandleFunc("POST /{resource}/{id}", a.protect(a.handleUpdate))
	a.mux.HandleFunc("GET /{resource}/{id}/delete", a.protect(a.handleConfirmDelete))
	a.mux.HandleFunc("POST /{resource}/{id}/delete", a.protect(a.handleDelete))

	a.mux.HandleFunc("/", a.handleNotFound)
}

// Handler returns the fully wrapped handler for the server.
func (a *App) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withSession(h)
	h = MaxBodyBytes(h, maxFormBytes)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *App) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "estate-web",
		"version": a.version,
		"commit":  obs.CurrentBuild().Commit,
	})
}

func (a *App) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := a.ready.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *App) handleRoot(w http.ResponseWriter, r *http.Request) {
	s := stateFrom(r)
	if s.IsAuthenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, a.entry(), http.StatusSeeOther)
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request, s *session.State) {
	stats, err := a.pages.Dashboard(r.Context())
	if err != nil {
		if a.forceLogout(w, r, s, err) {
			return
		}
		writeHTML(w, http.StatusBadGateway, view.Dashboard(a.shell(w, r, s, ""), nil, bannerFor(err, "/dashboard")))
		return
	}
	writeHTML(w, http.StatusOK, view.Dashboard(a.shell(w, r, s, ""), stats, nil))
}

// handleNotFound serves unmatched paths. Like every other page it sits behind
// the guard, so visitors who are not signed in go to the entry page.
func (a *App) handleNotFound(w http.ResponseWriter, r *http.Request) {
	a.protect(a.notFound)(w, r)
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request, s *session.State) {
	writeHTML(w, http.StatusNotFound, view.NotFound(a.shell(w, r, s, "")))
}

// shell builds the page chrome and consumes the flash message.
func (a *App) shell(w http.ResponseWriter, r *http.Request, s *session.State, active estate.Resource) *view.Shell {
	sh := &view.Shell{UserName: s.DisplayName(), Active: active}
	if msg := s.TakeFlash(); msg != "" {
		sh.Flash = msg
		a.save(w, r, s)
	}
	return sh
}

func serveStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(view.Stylesheet)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, code int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(page))
}
