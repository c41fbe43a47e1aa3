// internal/game/room.go
package game

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/owen-qin/gobang/internal/presence"
)

// Status is the room state machine. The only transition is
// GameStart -> GameOver, fired by a win, a forfeit, or a mid-game exit;
// GameOver is absorbing.
type Status int

const (
	GameStart Status = iota + 1
	GameOver
)

// UserStore is the slice of the user store a room needs to settle a game.
type UserStore interface {
	RecordWin(ctx context.Context, uid uint64) error
	RecordLoss(ctx context.Context, uid uint64) error
}

// ChatFilter reports whether a chat message must be blocked.
type ChatFilter func(message string) bool

// ContainsForbiddenWord is the default chat filter, a substring match on
// the single blocked token.
func ContainsForbiddenWord(message string) bool {
	return strings.Contains(message, "垃圾")
}

// OnGameEndFunc is invoked exactly once per room, after the outcome has
// been persisted, with forfeit true when the game ended by disconnect
// rather than five in a row.
type OnGameEndFunc func(roomID, winnerID, loserID uint64, forfeit bool)

const storeTimeout = 5 * time.Second

// Room is one match between two seats. All state behind mu; replies are
// broadcast to both seats while mu is held, which keeps the emission order
// identical to the state transition order (Send never blocks).
type Room struct {
	ID      uint64
	WhiteID uint64
	BlackID uint64

	mu          sync.Mutex
	status      Status
	board       Board
	playerCount int
	scored      bool

	users    UserStore
	presence *presence.Registry
	filter   ChatFilter

	// OnGameEnd is assigned by the registry before the room is published.
	OnGameEnd OnGameEndFunc
}

func NewRoom(id uint64, users UserStore, pres *presence.Registry, filter ChatFilter) *Room {
	if filter == nil {
		filter = ContainsForbiddenWord
	}
	return &Room{
		ID:       id,
		status:   GameStart,
		users:    users,
		presence: pres,
		filter:   filter,
	}
}

// AddWhite seats uid as white. Called once by the registry during creation.
func (r *Room) AddWhite(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.WhiteID = uid
	r.playerCount++
}

// AddBlack seats uid as black. Called once by the registry during creation.
func (r *Room) AddBlack(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BlackID = uid
	r.playerCount++
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerCount
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// outcome is a finished game's result, snapshotted under the room lock
// and settled (persisted, published) after it is released.
type outcome struct {
	winner, loser uint64
	forfeit       bool
}

// HandleRequest is the entry point for frames arriving on either seat's
// room connection. uid is the sender as authenticated by the dispatcher;
// the uid field inside the frame is untrusted and normalised away.
func (r *Room) HandleRequest(uid uint64, msg *Message) {
	r.mu.Lock()
	var o *outcome

	if msg.RoomID != r.ID {
		r.broadcast(&Message{
			Optype: msg.Optype,
			Result: false,
			Reason: "room id mismatch",
			RoomID: r.ID,
			UserID: uid,
		})
		r.mu.Unlock()
		return
	}
	if msg.UserID != 0 && msg.UserID != uid {
		log.Debugf("room %d: frame uid %d does not match sender %d, using sender", r.ID, msg.UserID, uid)
	}

	switch msg.Optype {
	case OpPutChess:
		o = r.handlePutChess(uid, msg)
	case OpChat:
		r.handleChat(uid, msg)
	default:
		r.broadcast(&Message{
			Optype: OpUnknown,
			Result: false,
			Reason: "unknown operation",
			RoomID: r.ID,
			UserID: uid,
		})
	}
	r.mu.Unlock()

	if o != nil {
		r.settle(o)
	}
}

// handlePutChess applies one move and returns the outcome to settle when
// the move ended the game. Caller holds r.mu.
func (r *Room) handlePutChess(uid uint64, msg *Message) *outcome {
	reply := &Message{
		Optype: OpPutChess,
		RoomID: r.ID,
		UserID: uid,
		Row:    msg.Row,
		Col:    msg.Col,
	}

	if r.status != GameStart {
		reply.Reason = "game is over"
		r.broadcast(reply)
		return nil
	}

	// A move is the moment disconnects become visible: if a seat has no
	// room presence, the present side wins by forfeit.
	if winner, loser, gone := r.absentSeat(); gone {
		reply.Result = true
		reply.Reason = "opponent disconnected"
		reply.Winner = uint64Ptr(winner)
		reply.Row, reply.Col = nil, nil
		o := r.finish(winner, loser, true)
		r.broadcast(reply)
		return o
	}

	var colour Cell
	switch uid {
	case r.WhiteID:
		colour = White
	case r.BlackID:
		colour = Black
	default:
		reply.Reason = "not a player in this room"
		r.broadcast(reply)
		return nil
	}

	if msg.Row == nil || msg.Col == nil {
		reply.Reason = "missing row or col"
		r.broadcast(reply)
		return nil
	}
	row, col := *msg.Row, *msg.Col
	if !r.board.InBounds(row, col) {
		reply.Reason = "cell out of bounds"
		r.broadcast(reply)
		return nil
	}
	if r.board.At(row, col) != Empty {
		reply.Reason = "cell occupied"
		r.broadcast(reply)
		return nil
	}

	r.board.Place(row, col, colour)
	reply.Result = true

	var o *outcome
	if r.board.WinningMove(row, col) {
		loser := r.BlackID
		if uid == r.BlackID {
			loser = r.WhiteID
		}
		reply.Winner = uint64Ptr(uid)
		reply.Reason = "five in a row"
		o = r.finish(uid, loser, false)
	} else {
		reply.Winner = uint64Ptr(0)
	}
	r.broadcast(reply)
	return o
}

// handleChat relays one chat line through the filter. Caller holds r.mu.
func (r *Room) handleChat(uid uint64, msg *Message) {
	reply := &Message{
		Optype: OpChat,
		RoomID: r.ID,
		UserID: uid,
	}
	if r.filter(msg.Message) {
		reply.Reason = "contains forbidden word"
	} else {
		reply.Result = true
		reply.Message = msg.Message
	}
	r.broadcast(reply)
}

// HandleExit settles a mid-game departure and releases the seat. Exits
// after GameOver only drain the remaining player.
func (r *Room) HandleExit(uid uint64) {
	r.mu.Lock()
	var o *outcome

	if r.status == GameStart {
		winner := r.WhiteID
		if uid == r.WhiteID {
			winner = r.BlackID
		}
		o = r.finish(winner, uid, true)
		r.broadcast(&Message{
			Optype: OpPutChess,
			Result: true,
			Reason: "opponent disconnected",
			RoomID: r.ID,
			UserID: uid,
			Row:    intPtr(-1),
			Col:    intPtr(-1),
			Winner: uint64Ptr(winner),
		})
	}
	r.playerCount--
	r.mu.Unlock()

	if o != nil {
		r.settle(o)
	}
}

// absentSeat reports a seat missing from room presence. Caller holds r.mu.
func (r *Room) absentSeat() (winner, loser uint64, gone bool) {
	if !r.presence.InRoom(r.WhiteID) {
		return r.BlackID, r.WhiteID, true
	}
	if !r.presence.InRoom(r.BlackID) {
		return r.WhiteID, r.BlackID, true
	}
	return 0, 0, false
}

// finish flips the room into its terminal state once and returns the
// outcome for the caller to settle after unlocking; the second and later
// triggers get nil. Caller holds r.mu.
func (r *Room) finish(winner, loser uint64, forfeit bool) *outcome {
	if r.scored {
		return nil
	}
	r.scored = true
	r.status = GameOver
	return &outcome{winner: winner, loser: loser, forfeit: forfeit}
}

// settle persists the outcome and fires the end hook. It runs off the
// room lock so a slow store or feed cannot stall the seats' frames.
// Store failures are logged and the terminal state stands; the board must
// never wedge because the database blinked.
func (r *Room) settle(o *outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.users.RecordWin(ctx, o.winner); err != nil {
		log.Errorf("room %d: failed to record win for user %d: %v", r.ID, o.winner, err)
	}
	if err := r.users.RecordLoss(ctx, o.loser); err != nil {
		log.Errorf("room %d: failed to record loss for user %d: %v", r.ID, o.loser, err)
	}

	if r.OnGameEnd != nil {
		r.OnGameEnd(r.ID, o.winner, o.loser, o.forfeit)
	}
}

// broadcast queues msg for both seats that still hold a room connection.
// Caller holds r.mu; Send is non-blocking so this cannot stall the room.
func (r *Room) broadcast(msg *Message) {
	if c, ok := r.presence.RoomClient(r.WhiteID); ok {
		c.Send(msg)
	}
	if c, ok := r.presence.RoomClient(r.BlackID); ok {
		c.Send(msg)
	}
}
