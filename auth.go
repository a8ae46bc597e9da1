package glowstash

import "sync"

// Session is the identity the catalog service calls are made under.
type Session struct {
	UserID string
	Token  string
}

// AuthGate supplies the current user identity and bearer credential.
// Sync is inert without an authenticated session. Invalidate is called when
// the catalog service rejects the credential; the gate owner decides what
// re-authentication looks like.
type AuthGate interface {
	// Session returns the current session and whether one exists.
	Session() (Session, bool)

	// Invalidate marks the current session as no longer valid.
	Invalidate()
}

// StaticGate is an AuthGate backed by a fixed session, used by the CLI and
// by tests. It is safe for concurrent use.
type StaticGate struct {
	mu      sync.Mutex
	session Session
	valid   bool
}

// NewStaticGate creates a gate for the given identity. An empty userID or
// token yields an unauthenticated gate.
func NewStaticGate(userID, token string) *StaticGate {
	return &StaticGate{
		session: Session{UserID: userID, Token: token},
		valid:   userID != "" && token != "",
	}
}

func (g *StaticGate) Session() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid {
		return Session{}, false
	}
	return g.session, true
}

func (g *StaticGate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.valid = false
}
