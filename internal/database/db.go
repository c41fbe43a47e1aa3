package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the process-wide connection pool, established by ConnectDB at
// startup before any store is constructed.
//
// The user store expects this table:
//
//	CREATE TABLE users (
//	    id            BIGSERIAL PRIMARY KEY,
//	    username      TEXT    NOT NULL UNIQUE,
//	    password_hash TEXT    NOT NULL,
//	    score         BIGINT  NOT NULL DEFAULT 1000,
//	    total_count   INTEGER NOT NULL DEFAULT 0,
//	    win_count     INTEGER NOT NULL DEFAULT 0
//	);
var DB *pgxpool.Pool

// ConnectDB builds the pool from POSTGRES_USER, POSTGRES_PASSWORD, PG_HOST,
// PG_PORT and PG_DATABASE, pings it, and exits the process on failure.
func ConnectDB() {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	log.Printf("Connected to database %s at %s", os.Getenv("PG_DATABASE"), os.Getenv("PG_HOST"))
}
