package game

import (
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/owen-qin/gobang/internal/presence"
)

// ErrNotInHall is returned by CreateRoom when a participant is no longer
// in the hall; the matchmaker re-enqueues the survivors on it.
var ErrNotInHall = errors.New("user is not in the hall")

// Registry owns every live room plus the uid -> room index. Room ids are
// monotonic from 1 and never reused.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	rooms  map[uint64]*Room
	byUser map[uint64]uint64

	users    UserStore
	presence *presence.Registry

	// Filter and OnGameEnd are copied onto each new room. Assign them
	// before the matchmaker starts; nil Filter means the default.
	Filter    ChatFilter
	OnGameEnd OnGameEndFunc
}

func NewRegistry(users UserStore, pres *presence.Registry) *Registry {
	return &Registry{
		nextID:   1,
		rooms:    make(map[uint64]*Room),
		byUser:   make(map[uint64]uint64),
		users:    users,
		presence: pres,
	}
}

// CreateRoom pairs u1 (white) with u2 (black). Both must still be in the
// hall; a stale participant fails the whole creation so the matchmaker can
// recycle the other.
func (reg *Registry) CreateRoom(u1, u2 uint64) (*Room, error) {
	if !reg.presence.InHall(u1) || !reg.presence.InHall(u2) {
		return nil, ErrNotInHall
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := reg.nextID
	reg.nextID++

	room := NewRoom(id, reg.users, reg.presence, reg.Filter)
	room.OnGameEnd = reg.OnGameEnd
	room.AddWhite(u1)
	room.AddBlack(u2)

	reg.rooms[id] = room
	reg.byUser[u1] = id
	reg.byUser[u2] = id

	log.Infof("room %d created: white=%d black=%d", id, u1, u2)
	return room, nil
}

func (reg *Registry) RoomByID(id uint64) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	return room, ok
}

func (reg *Registry) RoomByUser(uid uint64) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id, ok := reg.byUser[uid]
	if !ok {
		return nil, false
	}
	room, ok := reg.rooms[id]
	return room, ok
}

// RemoveRoom drops the room and both seat mappings atomically.
func (reg *Registry) RemoveRoom(id uint64) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		return
	}
	delete(reg.byUser, room.WhiteID)
	delete(reg.byUser, room.BlackID)
	delete(reg.rooms, id)
	log.Infof("room %d destroyed", id)
}

// RemoveUser runs the exit protocol for uid's room, then reaps the room
// once the last seat has left. Called by the dispatcher on room-connection
// close; a uid with no room is a no-op.
func (reg *Registry) RemoveUser(uid uint64) {
	room, ok := reg.RoomByUser(uid)
	if !ok {
		return
	}
	room.HandleExit(uid)
	if room.PlayerCount() <= 0 {
		reg.RemoveRoom(room.ID)
	}
}
