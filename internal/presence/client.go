// Package presence tracks which users currently hold a live hall or room
// connection. The matchmaker routes match notifications through it and the
// room uses it to detect mid-game disconnects.
package presence

import (
	log "github.com/sirupsen/logrus"
)

// Client is the server-side handle for one WebSocket peer. The handler
// that accepted the connection owns the socket; everyone else talks to the
// peer by pushing onto OutChan, which the handler's writer goroutine
// drains in order.
type Client struct {
	UserID  uint64
	OutChan chan any
}

func NewClient(uid uint64) *Client {
	return &Client{
		UserID:  uid,
		OutChan: make(chan any, 10),
	}
}

// Send queues msg for the peer without blocking. A full queue drops the
// message; the peer is either dead (the close path will run shortly) or
// unreadably slow, and game callers must never stall on it.
func (c *Client) Send(msg any) {
	select {
	case c.OutChan <- msg:
	default:
		log.Warnf("presence: out queue for user %d full, dropped message", c.UserID)
	}
}
