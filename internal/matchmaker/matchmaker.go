// Package matchmaker pairs hall users of similar strength. Three FIFO
// queues, one per score tier, each drained by its own worker goroutine.
package matchmaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/owen-qin/gobang/internal/game"
	"github.com/owen-qin/gobang/internal/models"
	"github.com/owen-qin/gobang/internal/presence"
)

// Tier is a skill bucket.
type Tier int

const (
	Bronze Tier = iota
	Silver
	Gold
)

func (t Tier) String() string {
	switch t {
	case Bronze:
		return "bronze"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	}
	return "unknown"
}

// TierForScore buckets a score: below 2000 bronze, below 3000 silver,
// everything above gold.
func TierForScore(score uint64) Tier {
	switch {
	case score < 2000:
		return Bronze
	case score < 3000:
		return Silver
	default:
		return Gold
	}
}

// UserStore is the lookup slice the matchmaker needs to pick a tier.
type UserStore interface {
	GetUserByID(ctx context.Context, uid uint64) (*models.User, error)
}

const lookupTimeout = 5 * time.Second

// Matchmaker owns the tier queues and workers. Pairing is FIFO within a
// tier; a popped uid that cancelled or left the hall in the meantime is
// discarded and its would-be partner re-enqueued.
type Matchmaker struct {
	users    UserStore
	presence *presence.Registry
	rooms    *game.Registry

	queues [3]*queue
	wg     sync.WaitGroup
}

func New(users UserStore, pres *presence.Registry, rooms *game.Registry) *Matchmaker {
	m := &Matchmaker{
		users:    users,
		presence: pres,
		rooms:    rooms,
	}
	for i := range m.queues {
		m.queues[i] = newQueue()
	}
	return m
}

// Start launches one worker per tier.
func (m *Matchmaker) Start() {
	for t := Bronze; t <= Gold; t++ {
		m.wg.Add(1)
		go m.run(t)
	}
}

// Stop closes every queue and waits for the workers to drain out.
func (m *Matchmaker) Stop() {
	for _, q := range m.queues {
		q.close()
	}
	m.wg.Wait()
}

// Add enqueues uid in the tier matching its current score.
func (m *Matchmaker) Add(uid uint64) error {
	tier, err := m.tierFor(uid)
	if err != nil {
		return err
	}
	m.queues[tier].push(uid)
	log.Debugf("matchmaker: user %d queued in %s", uid, tier)
	return nil
}

// Del removes uid from the tier matching its current score. A miss means
// the worker already popped the uid; the pop-then-validate path recycles
// any stranded partner, so a miss is success.
func (m *Matchmaker) Del(uid uint64) error {
	tier, err := m.tierFor(uid)
	if err != nil {
		return err
	}
	m.queues[tier].remove(uid)
	return nil
}

func (m *Matchmaker) tierFor(uid uint64) (Tier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	u, err := m.users.GetUserByID(ctx, uid)
	if err != nil {
		return Bronze, fmt.Errorf("matchmaker: look up user %d: %w", uid, err)
	}
	return TierForScore(u.Score), nil
}

// run is one tier's worker loop. Popping before validating keeps the queue
// lock out of connection lookups and room creation; the price is the
// occasional re-enqueue when a pop loses a race with a cancel.
func (m *Matchmaker) run(t Tier) {
	defer m.wg.Done()
	q := m.queues[t]

	for {
		if !q.awaitPair() {
			return
		}

		u1, ok := q.pop()
		if !ok {
			continue
		}
		u2, ok := q.pop()
		if !ok {
			q.push(u1)
			continue
		}

		c1, ok1 := m.presence.HallClient(u1)
		c2, ok2 := m.presence.HallClient(u2)
		if !ok1 || !ok2 {
			if ok1 {
				q.push(u1)
			}
			if ok2 {
				q.push(u2)
			}
			continue
		}

		room, err := m.rooms.CreateRoom(u1, u2)
		if err != nil {
			// someone slipped out of the hall after the client lookup
			if m.presence.InHall(u1) {
				q.push(u1)
			}
			if m.presence.InHall(u2) {
				q.push(u2)
			}
			log.Debugf("matchmaker: %s pairing of %d and %d failed: %v", t, u1, u2, err)
			continue
		}

		c1.Send(&game.Message{Optype: game.OpMatchSuccess, Result: true})
		c2.Send(&game.Message{Optype: game.OpMatchSuccess, Result: true})
		log.Infof("matchmaker: %s matched %d and %d into room %d", t, u1, u2, room.ID)
	}
}
