package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/owen-qin/gobang/internal/database"
	"github.com/owen-qin/gobang/internal/game"
	"github.com/owen-qin/gobang/internal/matchmaker"
	"github.com/owen-qin/gobang/internal/models"
	"github.com/owen-qin/gobang/internal/presence"
	"github.com/owen-qin/gobang/internal/session"
)

// fakeUsers is an in-memory stand-in for the pgx store. It satisfies the
// dispatcher's UserStore plus the matchmaker and room slices, so one fake
// backs a whole test server.
type fakeUsers struct {
	mu        sync.Mutex
	nextID    uint64
	byName    map[string]*models.User
	byID      map[uint64]*models.User
	passwords map[uint64]string
	wins      map[uint64]int
	losses    map[uint64]int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		nextID:    1,
		byName:    map[string]*models.User{},
		byID:      map[uint64]*models.User{},
		passwords: map[uint64]string{},
		wins:      map[uint64]int{},
		losses:    map[uint64]int{},
	}
}

func (f *fakeUsers) Register(_ context.Context, username, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byName[username]; taken {
		return nil, database.ErrNameTaken
	}
	u := &models.User{ID: f.nextID, Username: username, Score: 1000}
	f.nextID++
	f.byName[username] = u
	f.byID[u.ID] = u
	f.passwords[u.ID] = password
	return u, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byName[username]
	if !ok || f.passwords[u.ID] != password {
		return nil, database.ErrInvalidCredentials
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, uid uint64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[uid]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) RecordWin(_ context.Context, uid uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wins[uid]++
	return nil
}

func (f *fakeUsers) RecordLoss(_ context.Context, uid uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.losses[uid]++
	return nil
}

func (f *fakeUsers) setScore(uid, score uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[uid].Score = score
}

func (f *fakeUsers) counts(uid uint64) (wins, losses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wins[uid], f.losses[uid]
}

type testEnv struct {
	srv   *Server
	users *fakeUsers
	ts    *httptest.Server
}

// newTestEnv wires a full dispatcher (real registries and matchmaker, fake
// user store) behind an httptest server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := newFakeUsers()
	sessions := session.NewRegistry()
	pres := presence.NewRegistry()
	rooms := game.NewRegistry(users, pres)

	mm := matchmaker.New(users, pres, rooms)
	mm.Start()
	t.Cleanup(mm.Stop)

	srv := New(logger, users, sessions, pres, rooms, mm)
	srv.SessionTTL = time.Minute
	srv.WebRoot = t.TempDir()

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &testEnv{srv: srv, users: users, ts: ts}
}

// loggedInUser registers a user straight into the fake store and mints a
// live session for it, bypassing the HTTP flow the user suite covers.
func (e *testEnv) loggedInUser(t *testing.T, username string) (uid, ssid uint64) {
	t.Helper()
	u, err := e.users.Register(context.Background(), username, "secret")
	require.NoError(t, err)
	sess := e.srv.Sessions.Create(u.ID, session.Login)
	e.srv.Sessions.SetExpire(sess.ID, e.srv.SessionTTL)
	return u.ID, sess.ID
}
