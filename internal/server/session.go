package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"stockdash/internal/dashboard"
)

const sessionCookie = "stockdash_session"

type session struct {
	sel  dashboard.Inputs
	seen time.Time
}

// Sessions keeps each browser's selection between events. Idle sessions are
// dropped after ttl.
type Sessions struct {
	mu       sync.Mutex
	items    map[string]*session
	ttl      time.Duration
	defaults dashboard.Inputs
	now      func() time.Time
}

func NewSessions(ttl time.Duration, defaults dashboard.Inputs) *Sessions {
	return &Sessions{
		items:    map[string]*session{},
		ttl:      ttl,
		defaults: defaults,
		now:      time.Now,
	}
}

// Get returns the selection for id. Unknown, malformed or expired ids get a
// fresh session; the returned id is the one to hand back to the client.
func (s *Sessions) Get(id string) (string, dashboard.Inputs) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)
	if _, err := uuid.Parse(id); err == nil {
		if it, ok := s.items[id]; ok {
			it.seen = now
			return id, copyInputs(it.sel)
		}
	}
	id = uuid.NewString()
	s.items[id] = &session{sel: copyInputs(s.defaults), seen: now}
	return id, copyInputs(s.defaults)
}

func (s *Sessions) Save(id string, sel dashboard.Inputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &session{sel: copyInputs(sel), seen: s.now()}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) prune(now time.Time) {
	for id, it := range s.items {
		if now.Sub(it.seen) > s.ttl {
			delete(s.items, id)
		}
	}
}

// copyInputs detaches the year pointer so sessions never share it.
func copyInputs(in dashboard.Inputs) dashboard.Inputs {
	if in.Year != nil {
		y := *in.Year
		in.Year = &y
	}
	return in
}
