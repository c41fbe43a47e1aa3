// internal/handlers/hall_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/owen-qin/gobang/internal/game"
	"github.com/owen-qin/gobang/internal/middleware"
	"github.com/owen-qin/gobang/internal/presence"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
)

// HallWSHandler runs one hall connection: admit the session into hall
// presence, ack with hall_ready, then relay match_start/match_stop to the
// matchmaker until the peer goes away.
func (s *Server) HallWSHandler(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // Adjust in production
	})
	if err != nil {
		s.Logger.Warnf("hall: websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	sess, ok := s.sessionFromRequest(r)
	if !ok {
		rejectWS(r.Context(), c, game.OpHallReady, "invalid session", CloseInvalidSession)
		return
	}
	uid := sess.UserID

	client := presence.NewClient(uid)
	if !s.Presence.EnterHall(uid, client) {
		rejectWS(r.Context(), c, game.OpHallReady, "duplicate login", CloseDuplicateLogin)
		return
	}
	s.Sessions.SetExpire(sess.ID, s.SessionTTL)
	middleware.LogWebSocketConnect(s.Logger, remoteAddr, "/hall", uid)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go writePump(ctx, c, client, s.Logger)

	client.Send(&game.Message{Optype: game.OpHallReady, Result: true})

	readErr := s.hallReadLoop(ctx, c, uid, client)

	// Cleanup keys off the uid captured at open, not a fresh cookie
	// resolve; an expired session must not leave a presence entry behind.
	s.Presence.ExitHall(uid)
	s.Sessions.SetExpire(sess.ID, s.SessionTTL)
	middleware.LogWebSocketDisconnect(s.Logger, remoteAddr, "/hall", uid, readErr)
}

func (s *Server) hallReadLoop(ctx context.Context, c *websocket.Conn, uid uint64, client *presence.Client) error {
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
			s.Logger.Warnf("hall: invalid json from user %d: %v", uid, err)
			client.Send(&game.Message{Optype: game.OpUnknown, Reason: "invalid json"})
			continue
		}

		switch msg.Optype {
		case game.OpMatchStart:
			if err := s.Matchmaker.Add(uid); err != nil {
				s.Logger.Warnf("hall: match_start for user %d failed: %v", uid, err)
				client.Send(&game.Message{Optype: game.OpMatchStart, Reason: "matchmaking unavailable"})
				continue
			}
			client.Send(&game.Message{Optype: game.OpMatchStart, Result: true})
		case game.OpMatchStop:
			if err := s.Matchmaker.Del(uid); err != nil {
				s.Logger.Warnf("hall: match_stop for user %d failed: %v", uid, err)
				client.Send(&game.Message{Optype: game.OpMatchStop, Reason: "matchmaking unavailable"})
				continue
			}
			client.Send(&game.Message{Optype: game.OpMatchStop, Result: true})
		default:
			client.Send(&game.Message{Optype: game.OpUnknown, Reason: "unknown operation"})
		}
	}
}

// rejectWS delivers the reason frame before closing, so clients always
// see why they were turned away (the close code is a machine-readable
// duplicate of the same fact).
func rejectWS(ctx context.Context, c *websocket.Conn, optype, reason string, code websocket.StatusCode) {
	frame := &game.Message{Optype: optype, Reason: reason}
	if data, err := json.Marshal(frame); err == nil {
		wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
		_ = c.Write(wctx, websocket.MessageText, data)
		cancel()
	}
	_ = c.Close(code, reason)
}

// writePump owns all writes on the socket: it drains the client's
// outbound queue in order and keeps the peer alive with periodic pings.
// A failed write or ping ends the pump; the read side notices shortly.
func writePump(ctx context.Context, c *websocket.Conn, client *presence.Client, logger *logrus.Logger) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-client.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("ws: failed to marshal frame for user %d: %v", client.UserID, err)
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("ws: write to user %d failed: %v", client.UserID, err)
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := c.Ping(pctx)
			cancel()
			if err != nil {
				logger.Warnf("ws: ping to user %d failed, assuming disconnect: %v", client.UserID, err)
				return
			}
		}
	}
}
