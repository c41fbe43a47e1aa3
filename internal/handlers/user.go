package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/owen-qin/gobang/internal/database"
	"github.com/owen-qin/gobang/internal/session"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler authenticates the credentials in the body, creates a fresh
// session with a finite TTL and hands the client its SSID cookie.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, httpReply{Reason: "method not allowed"})
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, httpReply{Reason: "invalid request payload"})
		return
	}

	u, err := s.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			writeJSON(w, http.StatusForbidden, httpReply{Reason: "invalid username or password"})
			return
		}
		s.Logger.Errorf("login: authenticate %q: %v", req.Username, err)
		writeJSON(w, http.StatusInternalServerError, httpReply{Reason: "internal error"})
		return
	}

	sess := s.Sessions.Create(u.ID, session.Login)
	s.Sessions.SetExpire(sess.ID, s.SessionTTL)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    strconv.FormatUint(sess.ID, 10),
		HttpOnly: true,
		Path:     "/",
	})
	writeJSON(w, http.StatusOK, httpReply{Result: true})
}

// RegisterHandler inserts a fresh user with the default score. A taken
// username maps to 409; everything else the client did wrong to 400.
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, httpReply{Reason: "method not allowed"})
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, httpReply{Reason: "invalid request payload"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, httpReply{Reason: "username and password are required"})
		return
	}

	if _, err := s.Users.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, database.ErrNameTaken) {
			writeJSON(w, http.StatusConflict, httpReply{Reason: "username already taken"})
			return
		}
		s.Logger.Errorf("register: insert %q: %v", req.Username, err)
		writeJSON(w, http.StatusInternalServerError, httpReply{Reason: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, httpReply{Result: true})
}

// InformationHandler returns the logged-in user's profile and refreshes
// the session TTL, so an open client page keeps its session alive.
func (s *Server) InformationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, httpReply{Reason: "method not allowed"})
		return
	}

	sess, ok := s.sessionFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusForbidden, httpReply{Reason: "not logged in"})
		return
	}

	u, err := s.Users.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, httpReply{Reason: "user not found"})
			return
		}
		s.Logger.Errorf("information: look up user %d: %v", sess.UserID, err)
		writeJSON(w, http.StatusInternalServerError, httpReply{Reason: "internal error"})
		return
	}

	s.Sessions.SetExpire(sess.ID, s.SessionTTL)
	u.Password = ""
	writeJSON(w, http.StatusOK, u)
}
