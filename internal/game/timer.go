package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TickInterval is how often a phase timer polls its room.
const TickInterval = time.Second

// TickerFunc returns a channel delivering a tick every d and a function that
// releases it.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type phaseTimer struct {
	owner  *Instance
	cancel context.CancelFunc
	done   chan struct{}
}

// timers runs one polling goroutine per room.
type timers struct {
	mu     sync.Mutex
	active map[uuid.UUID]*phaseTimer
	ticker TickerFunc
	logger *logrus.Logger
}

func newTimers(ticker TickerFunc, logger *logrus.Logger) *timers {
	return &timers{
		active: make(map[uuid.UUID]*phaseTimer),
		ticker: ticker,
		logger: logger,
	}
}

// start runs poll on every tick until it returns false or the timer is stopped.
// Starting a second timer for a room is a no-op.
func (t *timers) start(roomID uuid.UUID, owner *Instance, poll func() bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, running := t.active[roomID]; running {
		t.logger.WithField("room", roomID).Warn("phase timer already running")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	pt := &phaseTimer{owner: owner, cancel: cancel, done: make(chan struct{})}
	t.active[roomID] = pt
	ticks, release := t.ticker(TickInterval)

	go func() {
		defer close(pt.done)
		defer release()
		defer t.forget(roomID, pt)
		t.logger.WithField("room", roomID).Debug("phase timer started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if ctx.Err() != nil || !poll() {
					return
				}
			}
		}
	}()
	return true
}

func (t *timers) forget(roomID uuid.UUID, pt *phaseTimer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[roomID] == pt {
		delete(t.active, roomID)
	}
	t.logger.WithField("room", roomID).Debug("phase timer stopped")
}

// stop cancels the room's timer and waits for it to exit. When owner is not
// nil only a timer started for that instance is stopped. Never call it while
// holding an instance lock.
func (t *timers) stop(roomID uuid.UUID, owner *Instance) {
	t.mu.Lock()
	pt, ok := t.active[roomID]
	if ok && owner != nil && pt.owner != owner {
		ok = false
	}
	if ok {
		delete(t.active, roomID)
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	pt.cancel()
	<-pt.done
}

func (t *timers) running(roomID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[roomID]
	return ok
}

func (t *timers) rooms() []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]uuid.UUID, 0, len(t.active))
	for id := range t.active {
		out = append(out, id)
	}
	return out
}

func (t *timers) stopAll() {
	for _, id := range t.rooms() {
		t.stop(id, nil)
	}
}
