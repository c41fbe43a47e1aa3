// internal/handlers/server.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/owen-qin/gobang/internal/game"
	"github.com/owen-qin/gobang/internal/matchmaker"
	"github.com/owen-qin/gobang/internal/models"
	"github.com/owen-qin/gobang/internal/presence"
	"github.com/owen-qin/gobang/internal/session"
)

// UserStore is the slice of the user store the dispatcher needs. The
// concrete pgx-backed store satisfies it; tests plug in fakes.
type UserStore interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUserByID(ctx context.Context, uid uint64) (*models.User, error)
}

// DefaultSessionTTL is the finite session lifetime applied at login, on
// hall admission and whenever a connection closes. Sessions of users who
// are inside a room are pinned with session.Forever instead.
const DefaultSessionTTL = 30 * time.Second

// Server is the frame dispatcher: it owns the HTTP surface and the
// open/message/close flow of the /hall and /room WebSocket stages, and
// routes everything into the registries it was built with.
type Server struct {
	Logger     *logrus.Logger
	Users      UserStore
	Sessions   *session.Registry
	Presence   *presence.Registry
	Rooms      *game.Registry
	Matchmaker *matchmaker.Matchmaker

	// SessionTTL is the finite TTL; WebRoot is where static pages live.
	SessionTTL time.Duration
	WebRoot    string
}

func New(logger *logrus.Logger, users UserStore, sessions *session.Registry, pres *presence.Registry, rooms *game.Registry, mm *matchmaker.Matchmaker) *Server {
	return &Server{
		Logger:     logger,
		Users:      users,
		Sessions:   sessions,
		Presence:   pres,
		Rooms:      rooms,
		Matchmaker: mm,
		SessionTTL: DefaultSessionTTL,
		WebRoot:    "./wwwroot",
	}
}

// Routes builds the full mux: the JSON endpoints, both WebSocket stages
// and the static fallback. The caller wraps it in middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", s.LoginHandler)
	mux.HandleFunc("/reg", s.RegisterHandler)
	mux.HandleFunc("/information", s.InformationHandler)

	mux.HandleFunc("/hall", s.HallWSHandler)
	mux.HandleFunc("/room", s.RoomWSHandler)

	mux.HandleFunc("/", s.StaticHandler)

	return mux
}

// sessionFromRequest resolves the SSID cookie to a live logged-in session.
func (s *Server) sessionFromRequest(r *http.Request) (*session.Session, bool) {
	ssid, err := ssidFromRequest(r)
	if err != nil {
		return nil, false
	}
	sess, ok := s.Sessions.Get(ssid)
	if !ok || sess.Status != session.Login {
		return nil, false
	}
	return sess, true
}
