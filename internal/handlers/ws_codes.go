// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the hall and room handlers. The
// rejection frame carrying the human-readable reason is written before
// the close, so these exist for clients that key on the status.
const (
	CloseInvalidSession = 4000 // no SSID cookie, or the session is gone
	CloseDuplicateLogin = 4001 // uid already holds a hall or room presence
	CloseNoRoom         = 4002 // /room opened by a user with no live room
)
