package rooms

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRegistry(now *time.Time) *Registry {
	logger := quietLogger()
	r := NewRegistry(NewMemoryStore(logger), NewMemoryPresence(), logger)
	r.now = func() time.Time { return *now }
	return r
}

func TestCreateAndJoin(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)
	ctx := context.Background()

	room, err := r.Create(ctx, "alice-client")
	require.NoError(t, err)
	assert.Equal(t, "alice-client", room.Creator)
	assert.Equal(t, models.RoomWaiting, room.Status)

	_, err = r.Join(ctx, room.ID, "alice-client", "Alice")
	require.NoError(t, err)
	now = now.Add(time.Second)
	_, err = r.Join(ctx, room.ID, "bob-client", "  Bob ")
	require.NoError(t, err)
	_, err = r.Join(ctx, room.ID, "alice-client", "Alice 2")
	require.NoError(t, err)

	players, err := r.Players(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "alice-client", players[0].ClientID, "a rename keeps the join position")
	assert.Equal(t, "Alice 2", players[0].Username)
	assert.Equal(t, "Bob", players[1].Username)
}

func TestJoinValidation(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(&now)
	ctx := context.Background()
	room, err := r.Create(ctx, "c1")
	require.NoError(t, err)

	_, err = r.Join(ctx, room.ID, "", "Alice")
	assert.ErrorIs(t, err, ErrInvalidPlayer)
	_, err = r.Join(ctx, room.ID, "c2", "   ")
	assert.ErrorIs(t, err, ErrInvalidPlayer)
	_, err = r.Join(ctx, room.ID, "c2", "this display name is far too long to show")
	assert.ErrorIs(t, err, ErrInvalidPlayer)
	_, err = r.Join(ctx, uuid.New(), "c2", "Bob")
	assert.ErrorIs(t, err, models.ErrRoomNotFound)

	_, err = r.Create(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestRoomLookup(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(&now)
	ctx := context.Background()

	_, err := r.Room(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrRoomNotFound)

	room, err := r.Create(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, r.SetStatus(ctx, room.ID, models.RoomPlaying))
	got, err := r.Room(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomPlaying, got.Status)
}

func TestTouchIgnoresOutsiders(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)
	ctx := context.Background()

	missing := uuid.New()
	require.NoError(t, r.Touch(ctx, missing, "c1"))
	_, ok, err := r.presence.LastSeen(ctx, missing)
	require.NoError(t, err)
	assert.False(t, ok, "unknown rooms get no presence entry")

	room, err := r.Create(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, r.Touch(ctx, room.ID, "stranger"))
	_, ok, err = r.presence.LastSeen(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, ok, "non-members do not refresh the room")

	_, err = r.Join(ctx, room.ID, "c1", "Alice")
	require.NoError(t, err)
	now = now.Add(time.Minute)
	require.NoError(t, r.Touch(ctx, room.ID, "c1"))
	now = now.Add(time.Minute)
	require.NoError(t, r.Touch(ctx, room.ID, "stranger"))
	last, ok, err := r.presence.LastSeen(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, now.Add(-time.Minute), last)
}

func TestSweeperRemovesIdleRooms(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start
	r := newTestRegistry(&now)
	ctx := context.Background()

	idle, err := r.Create(ctx, "c1")
	require.NoError(t, err)
	_, err = r.Join(ctx, idle.ID, "c1", "Alice")
	require.NoError(t, err)

	active, err := r.Create(ctx, "c2")
	require.NoError(t, err)
	_, err = r.Join(ctx, active.ID, "c2", "Bob")
	require.NoError(t, err)

	empty, err := r.Create(ctx, "c3")
	require.NoError(t, err)

	now = start.Add(90 * time.Minute)
	require.NoError(t, r.Touch(ctx, active.ID, "c2"))

	var stopped []uuid.UUID
	s := &Sweeper{
		Registry:    r,
		Interval:    time.Minute,
		IdleTimeout: 2 * time.Hour,
		OnRemove:    func(id uuid.UUID) { stopped = append(stopped, id) },
		Logger:      quietLogger(),
	}

	removed, err := s.Sweep(ctx, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = s.Sweep(ctx, start.Add(2*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{idle.ID, empty.ID}, removed)
	assert.ElementsMatch(t, removed, stopped)

	_, err = r.Room(ctx, idle.ID)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
	_, err = r.Room(ctx, active.ID)
	assert.NoError(t, err)
}

func TestSweeperRunStopsWithContext(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(&now)
	s := &Sweeper{Registry: r, Interval: time.Millisecond, IdleTimeout: time.Hour, Logger: quietLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestMemoryPresenceKeepsLatest(t *testing.T) {
	p := NewMemoryPresence()
	ctx := context.Background()
	room := uuid.New()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, ok, err := p.LastSeen(ctx, room)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.Touch(ctx, room, "a", t0.Add(time.Minute)))
	require.NoError(t, p.Touch(ctx, room, "b", t0))
	require.NoError(t, p.Touch(ctx, room, "a", t0))
	last, ok, err := p.LastSeen(ctx, room)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, t0.Add(time.Minute), last)

	require.NoError(t, p.Forget(ctx, room))
	_, ok, _ = p.LastSeen(ctx, room)
	assert.False(t, ok)
}
