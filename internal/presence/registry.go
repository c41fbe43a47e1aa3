package presence

import "sync"

// Registry maps uid to the client handle of its live connection, split by
// stage. A uid lives in at most one of the two maps at any instant; Enter
// calls refuse when the uid is already present anywhere, which is what
// turns a second login attempt into a "duplicate login" rejection.
//
// One mutex covers both maps. Traffic here is admission events only, not
// per-message work, so contention is negligible.
type Registry struct {
	mu   sync.Mutex
	hall map[uint64]*Client
	room map[uint64]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		hall: make(map[uint64]*Client),
		room: make(map[uint64]*Client),
	}
}

// EnterHall registers c as uid's hall connection. It reports false, and
// registers nothing, when uid already has a hall or room presence.
func (r *Registry) EnterHall(uid uint64, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.hall[uid]; dup {
		return false
	}
	if _, dup := r.room[uid]; dup {
		return false
	}
	r.hall[uid] = c
	return true
}

// EnterRoom registers c as uid's room connection, with the same
// disjointness rule as EnterHall.
func (r *Registry) EnterRoom(uid uint64, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.hall[uid]; dup {
		return false
	}
	if _, dup := r.room[uid]; dup {
		return false
	}
	r.room[uid] = c
	return true
}

// ExitHall drops uid's hall presence. Idempotent.
func (r *Registry) ExitHall(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hall, uid)
}

// ExitRoom drops uid's room presence. Idempotent.
func (r *Registry) ExitRoom(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.room, uid)
}

func (r *Registry) InHall(uid uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.hall[uid]
	return ok
}

func (r *Registry) InRoom(uid uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.room[uid]
	return ok
}

// HallClient returns uid's hall connection handle, if any.
func (r *Registry) HallClient(uid uint64) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.hall[uid]
	return c, ok
}

// RoomClient returns uid's room connection handle, if any.
func (r *Registry) RoomClient(uid uint64) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.room[uid]
	return c, ok
}
