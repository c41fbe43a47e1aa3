// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Rdb is the global Redis client. Connect it once at application startup;
// a nil Rdb means the match feed is disabled and publishes become no-ops.
var Rdb *redis.Client

// DefaultQueueName is the Redis list carrying match-outcome records for
// downstream consumers (leaderboards, analytics).
var DefaultQueueName = "gobang_matches"

// MatchRecord is one finished game on the feed. Scores live in Postgres;
// this is telemetry about who beat whom and how the game ended.
type MatchRecord struct {
	EventID    uuid.UUID `json:"event_id"`
	RoomID     uint64    `json:"room_id"`
	WinnerID   uint64    `json:"winner_id"`
	LoserID    uint64    `json:"loser_id"`
	Forfeit    bool      `json:"forfeit"`
	FinishedAt int64     `json:"finished_at"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_PASSWORD (optional)
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	password := os.Getenv("REDIS_PASSWORD")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishMatchResult pushes one outcome record onto the feed list. It is
// fire-and-forget: when Redis is absent or down the record is dropped with
// a log line, never an error a game would have to care about.
func PublishMatchResult(ctx context.Context, roomID, winnerID, loserID uint64, forfeit bool) {
	if Rdb == nil {
		return
	}

	rec := MatchRecord{
		EventID:    uuid.New(),
		RoomID:     roomID,
		WinnerID:   winnerID,
		LoserID:    loserID,
		Forfeit:    forfeit,
		FinishedAt: time.Now().Unix(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Errorf("cache: failed to marshal match record for room %d: %v", roomID, err)
		return
	}

	queueName := getEnv("MATCH_FEED_QUEUE", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		log.Warnf("cache: failed to publish match record for room %d: %v", roomID, err)
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
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
