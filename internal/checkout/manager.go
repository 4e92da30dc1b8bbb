package checkout

import (
	"context"
	"sync"
	"time"
)

const defaultSessionTTL = 30 * time.Minute

// Manager owns one Session per cart owner.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Manager{ttl: ttl, now: time.Now, sessions: map[string]*Session{}}
}

// Get returns the owner's session, creating an idle one on first use.
func (m *Manager) Get(ownerKey string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[ownerKey]
	if !ok {
		session = newSession(m.now())
		m.sessions[ownerKey] = session
	}
	return session
}

// Peek returns the session if one exists.
func (m *Manager) Peek(ownerKey string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[ownerKey]
	return session, ok
}

// Sweep drops sessions idle past the TTL. In-flight sessions are kept.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for key, session := range m.sessions {
		if session.inFlight() || !session.idleSince().Before(cutoff) {
			continue
		}
		delete(m.sessions, key)
		evicted++
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx ends.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
