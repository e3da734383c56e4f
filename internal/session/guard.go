package session

import "time"

// Decision is the route guard outcome, computed before anything renders.
type Decision int

const (
	// Allow renders the protected page.
	Allow Decision = iota
	// Wait renders a short "processing" page that reloads itself. Issued at
	// most once per pending delegated sign-in.
	Wait
	// Redirect sends the visitor to the entry page. Nothing else renders.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

const defaultPendingTTL = 10 * time.Minute

// Guard protects every page except the entry page.
type Guard struct {
	EntryPath  string
	PendingTTL time.Duration
}

// Verdict is a decision plus the redirect target when relevant.
type Verdict struct {
	Decision Decision
	Location string
}

// Evaluate decides what a request for a protected page gets. It may mutate s
// (grace flag, stale pending sign-in), so the caller saves s afterwards.
func (g Guard) Evaluate(s *State, now time.Time) Verdict {
	if s.authenticatedAt(now) {
		return Verdict{Decision: Allow}
	}
	ttl := g.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	if s != nil && s.Pending != nil {
		switch {
		case now.Sub(s.Pending.StartedAt) > ttl:
			s.Pending = nil
		case !s.Pending.GraceUsed:
			s.Pending.GraceUsed = true
			return Verdict{Decision: Wait}
		}
	}
	entry := g.EntryPath
	if entry == "" {
		entry = "/login"
	}
	return Verdict{Decision: Redirect, Location: entry}
}
