// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/owen-qin/gobang/internal/game"
	"github.com/owen-qin/gobang/internal/middleware"
	"github.com/owen-qin/gobang/internal/presence"
	"github.com/owen-qin/gobang/internal/session"
)

// RoomWSHandler runs one room connection. Admission requires a live room
// for the user; while the connection is up the session is immortal, and
// the close path runs the room's exit protocol.
func (s *Server) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // Adjust in production
	})
	if err != nil {
		s.Logger.Warnf("room: websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	sess, ok := s.sessionFromRequest(r)
	if !ok {
		rejectWS(r.Context(), c, game.OpRoomReady, "invalid session", CloseInvalidSession)
		return
	}
	uid := sess.UserID

	room, ok := s.Rooms.RoomByUser(uid)
	if !ok {
		rejectWS(r.Context(), c, game.OpRoomReady, "no room for user", CloseNoRoom)
		return
	}

	client := presence.NewClient(uid)
	if !s.Presence.EnterRoom(uid, client) {
		rejectWS(r.Context(), c, game.OpRoomReady, "duplicate login", CloseDuplicateLogin)
		return
	}

	// In-game sessions never time out; a long game must not log the
	// player out under them.
	s.Sessions.SetExpire(sess.ID, session.Forever)
	middleware.LogWebSocketConnect(s.Logger, remoteAddr, "/room", uid)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go writePump(ctx, c, client, s.Logger)

	client.Send(&game.Message{
		Optype:  game.OpRoomReady,
		Result:  true,
		RoomID:  room.ID,
		UserID:  uid,
		WhiteID: room.WhiteID,
		BlackID: room.BlackID,
	})

	readErr := s.roomReadLoop(ctx, c, uid, client)

	s.Presence.ExitRoom(uid)
	s.Sessions.SetExpire(sess.ID, s.SessionTTL)
	s.Rooms.RemoveUser(uid)
	middleware.LogWebSocketDisconnect(s.Logger, remoteAddr, "/room", uid, readErr)
}

func (s *Server) roomReadLoop(ctx context.Context, c *websocket.Conn, uid uint64, client *presence.Client) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg game.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Logger.Warnf("room: invalid json from user %d: %v", uid, err)
			client.Send(&game.Message{Optype: game.OpUnknown, Reason: "invalid json"})
			continue
		}

		// Re-look-up per frame: the room can be reaped between messages
		// (opponent drained out), and a stale mapping is dropped, not
		// acted on.
		room, ok := s.Rooms.RoomByUser(uid)
		if !ok {
			s.Logger.Warnf("room: frame from user %d with no live room, dropped", uid)
			continue
		}
		room.HandleRequest(uid, &msg)
	}
}
