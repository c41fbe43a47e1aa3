package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterHallAndExit(t *testing.T) {
	r := NewRegistry()
	c := NewClient(1)

	require.True(t, r.EnterHall(1, c))
	assert.True(t, r.InHall(1))
	assert.False(t, r.InRoom(1))

	got, ok := r.HallClient(1)
	require.True(t, ok)
	assert.Same(t, c, got)

	r.ExitHall(1)
	assert.False(t, r.InHall(1))
	_, ok = r.HallClient(1)
	assert.False(t, ok)

	// exits are idempotent
	r.ExitHall(1)
	r.ExitRoom(1)
}

func TestEnterRefusesDuplicates(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.EnterHall(1, NewClient(1)))
	assert.False(t, r.EnterHall(1, NewClient(1)), "second hall entry must be refused")
	assert.False(t, r.EnterRoom(1, NewClient(1)), "room entry while in hall must be refused")

	r.ExitHall(1)
	require.True(t, r.EnterRoom(1, NewClient(1)))
	assert.False(t, r.EnterHall(1, NewClient(1)), "hall entry while in room must be refused")
	assert.False(t, r.EnterRoom(1, NewClient(1)))
}

func TestDisjointnessAcrossUsers(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.EnterHall(1, NewClient(1)))
	require.True(t, r.EnterRoom(2, NewClient(2)))

	assert.True(t, r.InHall(1))
	assert.True(t, r.InRoom(2))
	assert.False(t, r.InRoom(1))
	assert.False(t, r.InHall(2))

	// a user moving stages must exit first
	r.ExitHall(1)
	require.True(t, r.EnterRoom(1, NewClient(1)))
	assert.True(t, r.InRoom(1))
	assert.False(t, r.InHall(1))
}

func TestClientSendDoesNotBlockWhenFull(t *testing.T) {
	c := NewClient(9)
	for i := 0; i < cap(c.OutChan)+5; i++ {
		c.Send(i) // must not block past capacity
	}
	assert.Len(t, c.OutChan, cap(c.OutChan))
}
