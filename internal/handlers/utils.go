package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// sessionCookieName is the cookie that carries the numeric session id.
const sessionCookieName = "SSID"

var errNoSession = errors.New("no session cookie")

// ssidFromRequest pulls the numeric SSID out of the request's cookies.
// The same request shape covers plain HTTP and WebSocket upgrades.
func ssidFromRequest(r *http.Request) (uint64, error) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return 0, errNoSession
	}
	ssid, err := strconv.ParseUint(c.Value, 10, 64)
	if err != nil {
		return 0, errNoSession
	}
	return ssid, nil
}

// httpReply is the JSON envelope of every non-profile HTTP response.
type httpReply struct {
	Result bool   `json:"result"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
