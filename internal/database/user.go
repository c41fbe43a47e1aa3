package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/owen-qin/gobang/internal/auth"
	"github.com/owen-qin/gobang/internal/models"
)

var (
	// ErrNotFound is returned when no users row matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrNameTaken is returned by Register on a username collision.
	ErrNameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned by Authenticate for a bad
	// username or password; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore reads and mutates the users table. Score mutations are the
// fixed match-outcome deltas: +30/total+1/win+1 on a win, -30 (saturating
// at zero) and total+1 on a loss.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Register hashes the password and inserts a fresh user row with the
// default score of 1000. A username collision maps to ErrNameTaken.
func (s *UserStore) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := models.User{Username: username}
	q := `INSERT INTO users (username, password_hash)
	      VALUES ($1, $2)
	      RETURNING id, score, total_count, win_count`

	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, username, hash).Scan(&u.ID, &u.Score, &u.TotalCount, &u.WinCount)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &u, nil
}

// Authenticate verifies the username/password pair against the stored
// argon2id hash and returns the profile on success.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	var hash string
	q := `SELECT id, username, password_hash, score, total_count, win_count
	      FROM users
	      WHERE username = $1`

	err := s.pool.QueryRow(ctx, q, username).Scan(
		&u.ID, &u.Username, &hash, &u.Score, &u.TotalCount, &u.WinCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	match, err := auth.VerifyPassword(password, hash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// GetUserByID fetches the profile for uid. The password hash never leaves
// the store through this path.
func (s *UserStore) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	var u models.User
	q := `SELECT id, username, score, total_count, win_count
	      FROM users
	      WHERE id = $1`

	err := s.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.Score, &u.TotalCount, &u.WinCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	return &u, nil
}

// RecordWin applies the winner's outcome deltas.
func (s *UserStore) RecordWin(ctx context.Context, id uint64) error {
	q := `UPDATE users
	      SET score = score + 30, total_count = total_count + 1, win_count = win_count + 1
	      WHERE id = $1`
	return s.recordOutcome(ctx, q, id)
}

// RecordLoss applies the loser's outcome deltas. The score floor is zero.
func (s *UserStore) RecordLoss(ctx context.Context, id uint64) error {
	q := `UPDATE users
	      SET score = GREATEST(score - 30, 0), total_count = total_count + 1
	      WHERE id = $1`
	return s.recordOutcome(ctx, q, id)
}

func (s *UserStore) recordOutcome(ctx context.Context, q string, id uint64) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, id)
		if err != nil {
			return fmt.Errorf("failed to record outcome for user %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
