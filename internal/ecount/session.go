package ecount

import (
	"sync"
	"time"
)

// Session is an authenticated ERP session.
type Session struct {
	Zone     string
	ID       string
	Host     string
	ExpireAt time.Time
}

// SessionCache holds at most one session and hands it out until its TTL
// elapses.
type SessionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *Session
}

// NewSessionCache builds a cache. A nil clock means time.Now.
func NewSessionCache(ttl time.Duration, now func() time.Time) *SessionCache {
	if now == nil {
		now = time.Now
	}
	return &SessionCache{ttl: ttl, now: now}
}

// Get returns the cached session while it is still valid.
func (c *SessionCache) Get() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID == "" || c.current.Zone == "" {
		return Session{}, false
	}
	if !c.current.ExpireAt.After(c.now()) {
		return Session{}, false
	}
	return *c.current, true
}

// Put stores s and stamps its expiry.
func (c *SessionCache) Put(s Session) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.ExpireAt = c.now().Add(c.ttl)
	c.current = &s
	return s
}

// Invalidate drops the cached session.
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
