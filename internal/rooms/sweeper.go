package rooms

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically deletes rooms nobody has been seen in for IdleTimeout.
type Sweeper struct {
	Registry    *Registry
	Interval    time.Duration
	IdleTimeout time.Duration
	// OnRemove is called for every deleted room, e.g. to stop its game.
	OnRemove func(roomID uuid.UUID)
	Logger   *logrus.Logger
}

// Run sweeps every Interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	s.Logger.Infof("room sweeper running every %s (idle timeout %s)", s.Interval, s.IdleTimeout)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.Sweep(ctx, now); err != nil {
				s.Logger.Errorf("room sweep failed: %v", err)
			}
		}
	}
}

// Sweep deletes every room idle since before now-IdleTimeout and returns their ids.
// A failure on one room is logged and does not stop the sweep.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rooms, err := s.Registry.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-s.IdleTimeout)
	var removed []uuid.UUID
	for _, room := range rooms {
		since, err := s.Registry.idleSince(ctx, room)
		if err != nil {
			s.Logger.WithField("room", room.ID).Warnf("failed to read presence: %v", err)
			continue
		}
		if since.After(cutoff) {
			continue
		}
		if err := s.Registry.Remove(ctx, room.ID); err != nil {
			s.Logger.WithField("room", room.ID).Warnf("failed to delete idle room: %v", err)
			continue
		}
		if s.OnRemove != nil {
			s.OnRemove(room.ID)
		}
		s.Logger.WithFields(logrus.Fields{"room": room.ID, "idle_since": since}).Info("deleted idle room")
		removed = append(removed, room.ID)
	}
	return removed, nil
}
