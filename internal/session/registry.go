// Package session tracks server-side login sessions keyed by the numeric
// SSID cookie value. Every session carries an optional expiration timer;
// the registry owns the timers and is the only code allowed to touch them.
package session

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Status reports whether the session's user has authenticated.
type Status int

const (
	Unlogin Status = iota
	Login
)

// Forever disables auto-expiry when passed to SetExpire. Sessions of users
// who are in a game room are pinned with it so a long game cannot time the
// player out.
const Forever time.Duration = -1

// Session is one login. ID values are monotonic from 1 and never reused.
type Session struct {
	ID     uint64
	UserID uint64
	Status Status

	// timer is the pending removal, nil when the session is immortal.
	// gen identifies the arming that scheduled it; a callback carrying a
	// stale gen no-ops. Both guarded by the registry mutex, never by the
	// session itself.
	timer *time.Timer
	gen   uint64
}

// Registry is the in-memory session table.
type Registry struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		nextID:   1,
		sessions: make(map[uint64]*Session),
	}
}

// Create inserts a new session for uid and returns it. No timer is armed;
// callers follow up with SetExpire to give it a lifetime.
func (r *Registry) Create(uid uint64, status Status) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{
		ID:     r.nextID,
		UserID: uid,
		Status: status,
	}
	r.nextID++
	r.sessions[s.ID] = s
	return s
}

// Get returns the live session for ssid, if any.
func (r *Registry) Get(ssid uint64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[ssid]
	return s, ok
}

// Remove erases the session and stops any pending timer. Removing an
// already-gone ssid is a no-op.
func (r *Registry) Remove(ssid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[ssid]
	if !ok {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	delete(r.sessions, ssid)
}

// SetExpire rearms the session's lifetime:
//
//	no timer + Forever -> no-op
//	no timer + finite  -> arm a timer for d
//	timer    + Forever -> stop the timer, session becomes immortal
//	timer    + finite  -> stop the timer, arm a fresh one for d
//
// Every arming bumps the session's generation under the registry mutex,
// and the callback captures only (ssid, gen): it re-looks-up the session
// after locking and no-ops when the generation moved on, so a callback
// that already fired while we were stopping it finds itself stale. After
// SetExpire returns, the previous timer can no longer remove the session.
func (r *Registry) SetExpire(ssid uint64, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[ssid]
	if !ok {
		return
	}

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if d == Forever {
		return
	}

	gen := s.gen
	s.timer = time.AfterFunc(d, func() { r.expire(ssid, gen) })
}

// expire removes the session when gen is still its current arming. A
// stale gen means SetExpire superseded this callback between fire and run.
func (r *Registry) expire(ssid, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[ssid]
	if !ok || s.gen != gen {
		return
	}
	delete(r.sessions, ssid)
	log.Debugf("session %d expired (uid %d)", ssid, s.UserID)
}
