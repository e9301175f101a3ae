// Package session maps browser sessions to their dashboards.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"patient-dashboard/internal/dashboard"
)

// CookieName is the cookie carrying the session id.
const CookieName = "pd_session"

// DefaultTTL is the idle time after which a session is dropped.
const DefaultTTL = 30 * time.Minute

type entry struct {
	dashboard *dashboard.Dashboard
	lastSeen  time.Time
}

// Store holds one Dashboard per session id and expires idle sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	factory  func() *dashboard.Dashboard
	now      func() time.Time
}

// NewStore creates an empty store. factory builds the dashboard for a new session.
func NewStore(ttl time.Duration, factory func() *dashboard.Dashboard) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the dashboard for id if the session exists and has not expired.
func (s *Store) Get(id string) (*dashboard.Dashboard, bool) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		s.mu.Unlock()
		e.dashboard.CloseAddPatient()
		return nil, false
	}
	e.lastSeen = now
	s.mu.Unlock()
	return e.dashboard, true
}

// GetOrCreate returns the session for id, starting a new one when id is unknown or
// expired. created reports whether a new id was issued.
func (s *Store) GetOrCreate(id string) (string, *dashboard.Dashboard, bool) {
	if id != "" {
		if d, ok := s.Get(id); ok {
			return id, d, false
		}
	}

	d := s.factory()
	newID := uuid.NewString()

	s.mu.Lock()
	s.sessions[newID] = &entry{dashboard: d, lastSeen: s.now()}
	s.mu.Unlock()
	return newID, d, true
}

// Delete ends a session and cancels any pending submission it owns.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		e.dashboard.CloseAddPatient()
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	var expired []*dashboard.Dashboard
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			expired = append(expired, e.dashboard)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, d := range expired {
		d.CloseAddPatient()
	}
	return len(expired)
}

// Run sweeps on every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
