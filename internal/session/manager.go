package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"estatedesk.app/internal/ids"
	"estatedesk.app/internal/obs"
)

const DefaultCookieName = "estate_session"

// Options configure a Manager.
type Options struct {
	Store      Store
	Codec      *Codec
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager ties the browser cookie to the server-side state.
type Manager struct {
	store  Store
	codec  *Codec
	ttl    time.Duration
	cookie string
	secure bool
	now    func() time.Time
}

func NewManager(opts Options) *Manager {
	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{store: opts.Store, codec: opts.Codec, ttl: ttl, cookie: name, secure: opts.Secure, now: time.Now}
}

// Load returns the state bound to the request cookie, or a fresh anonymous
// state when the cookie is missing, tampered with, expired or unknown.
func (m *Manager) Load(ctx context.Context, r *http.Request) *State {
	c, err := r.Cookie(m.cookie)
	if err != nil {
		return m.fresh()
	}
	sid, err := m.codec.Decode(c.Value)
	if err != nil {
		obs.Logger().Debug().Err(err).Msg("session_cookie_rejected")
		return m.fresh()
	}
	s, err := m.store.Get(ctx, sid)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			obs.Logger().Warn().Err(err).Str("session_id", sid).Msg("session_load_failed")
		}
		return m.fresh()
	}
	return s
}

// Save persists s and refreshes the cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *State) error {
	token, err := m.codec.Encode(s.ID, m.ttl)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew discards the stored state for s and returns a fresh anonymous state
// under a new id. Used on sign-in and on forced logout.
func (m *Manager) Renew(ctx context.Context, s *State) *State {
	if s != nil && s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			obs.Logger().Warn().Err(err).Str("session_id", s.ID).Msg("session_delete_failed")
		}
	}
	return m.fresh()
}

// Destroy removes s and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *State) error {
	var err error
	if s != nil && s.ID != "" {
		err = m.store.Delete(ctx, s.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

func (m *Manager) fresh() *State {
	return &State{ID: ids.New(), CreatedAt: m.now().UTC()}
}

type ctxKey struct{}

// WithState attaches s to ctx.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the state attached by WithState.
func FromContext(ctx context.Context) (*State, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(ctxKey{}).(*State)
	return s, ok && s != nil
}
