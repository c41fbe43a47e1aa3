// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/owen-qin/gobang/internal/cache"
	"github.com/owen-qin/gobang/internal/database"
	"github.com/owen-qin/gobang/internal/game"
	"github.com/owen-qin/gobang/internal/handlers"
	"github.com/owen-qin/gobang/internal/matchmaker"
	"github.com/owen-qin/gobang/internal/middleware"
	"github.com/owen-qin/gobang/internal/presence"
	"github.com/owen-qin/gobang/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(lvl)
	}
	logrus.SetLevel(logger.GetLevel())

	database.ConnectDB()
	users := database.NewUserStore(database.DB)

	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, match feed disabled: %v", err)
	}

	sessions := session.NewRegistry()
	pres := presence.NewRegistry()

	rooms := game.NewRegistry(users, pres)
	rooms.OnGameEnd = func(roomID, winnerID, loserID uint64, forfeit bool) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cache.PublishMatchResult(ctx, roomID, winnerID, loserID, forfeit)
	}

	mm := matchmaker.New(users, pres, rooms)
	mm.Start()

	srv := handlers.New(logger, users, sessions, pres, rooms, mm)
	srv.SessionTTL = time.Duration(getEnvInt("SESSION_TTL_SECONDS", 30)) * time.Second
	srv.WebRoot = getEnv("WEB_ROOT", "./wwwroot")

	addr := ":" + getEnv("PORT", "8080")
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: middleware.LogMiddleware(logger)(srv.Routes()),
	}

	go func() {
		logger.Infof("Running on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	mm.Stop()
	if database.DB != nil {
		database.DB.Close()
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
