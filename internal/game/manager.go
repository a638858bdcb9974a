package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/content"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/sirupsen/logrus"
)

// MinPlayers is the smallest roster a game can start with.
const MinPlayers = 2

// Registry is the read side of the room registry the engine depends on.
type Registry interface {
	// Room returns models.ErrRoomNotFound (possibly wrapped) for unknown rooms.
	Room(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	// Players returns the roster in join order.
	Players(ctx context.Context, roomID uuid.UUID) ([]models.Player, error)
	// Touch records that a player was just seen.
	Touch(ctx context.Context, roomID uuid.UUID, clientID string) error
}

// Broadcaster fans a message out to every connection of a room. It must not block.
type Broadcaster interface {
	Broadcast(roomID uuid.UUID, msg interface{})
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithTicker replaces the ticker phase timers poll on.
func WithTicker(ticker TickerFunc) Option {
	return func(m *Manager) { m.timers.ticker = ticker }
}

// WithoutTimer disables phase timers. Status calls then perform due transitions.
func WithoutTimer() Option {
	return func(m *Manager) { m.timerless = true }
}

// WithRules registers or replaces the policy for its kind.
func WithRules(r Rules) Option {
	return func(m *Manager) { m.rules[r.Kind()] = r }
}

// Manager runs every room's game. It is the only writer of instances.
type Manager struct {
	store       *Store
	timers      *timers
	registry    Registry
	broadcaster Broadcaster
	rules       map[Kind]Rules
	logger      *logrus.Logger
	now         func() time.Time
	timerless   bool

	// startMu serializes replacing instances so timers always follow the stored one.
	startMu sync.Mutex
}

// NewManager builds a manager with the three stock game kinds.
func NewManager(pools *content.Pools, registry Registry, broadcaster Broadcaster, logger *logrus.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:       NewStore(),
		timers:      newTimers(realTicker, logger),
		registry:    registry,
		broadcaster: broadcaster,
		rules: map[Kind]Rules{
			KindCAH:    NewCAHRules(pools),
			KindMeme:   NewMemeRules(pools),
			KindVoting: NewVotingRules(pools),
		},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start is the creator's request to start a game of kind in a room.
func (m *Manager) Start(ctx context.Context, kind Kind, roomID uuid.UUID, callerID string) (*Instance, error) {
	room, err := m.registry.Room(ctx, roomID)
	if errors.Is(err, models.ErrRoomNotFound) {
		return nil, fmt.Errorf("%w: room %s does not exist", ErrNotFound, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	if room.Creator != callerID {
		return nil, fmt.Errorf("%w: only the room creator can start a game", ErrUnauthorized)
	}
	players, err := m.registry.Players(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players of room %s: %w", roomID, err)
	}
	if len(players) < MinPlayers {
		return nil, fmt.Errorf("%w: at least %d players are required", ErrInvalidPayload, MinPlayers)
	}
	return m.StartGame(kind, roomID, players, room.Creator)
}

// StartGame creates a fresh instance for the room, replacing and stopping any
// previous one, starts its phase timer and broadcasts the opening state.
func (m *Manager) StartGame(kind Kind, roomID uuid.UUID, roster []models.Player, creatorID string) (*Instance, error) {
	rules, ok := m.rules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown game %q", ErrInvalidPayload, kind)
	}
	now := m.now()
	inst, err := newInstance(rules, roomID, roster, creatorID, now)
	if err != nil {
		return nil, err
	}

	m.startMu.Lock()
	if prev := m.store.Put(inst); prev != nil {
		m.timers.stop(roomID, prev)
		m.logger.WithFields(logrus.Fields{"room": roomID, "game": prev.Kind}).Info("replaced running game")
	}
	if !m.timerless {
		m.timers.start(roomID, inst, func() bool { return m.tick(roomID, inst) })
	}
	m.startMu.Unlock()

	inst.mu.Lock()
	msg := inst.view(now, "")
	inst.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"room":    roomID,
		"game":    kind,
		"players": len(roster),
	}).Info("game started")
	m.broadcaster.Broadcast(roomID, msg)
	return inst, nil
}

// Status returns the caller's projection of the room's game of kind. It also
// marks the caller as seen.
func (m *Manager) Status(ctx context.Context, kind Kind, roomID uuid.UUID, clientID string) (interface{}, error) {
	if clientID != "" {
		if err := m.registry.Touch(ctx, roomID, clientID); err != nil {
			m.logger.WithFields(logrus.Fields{"room": roomID, "client": clientID}).Warnf("failed to touch player: %v", err)
		}
	}
	inst, err := m.lookup(kind, roomID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	var update interface{}
	inst.mu.Lock()
	if m.timerless && inst.transition(now) {
		update = inst.view(now, "")
	}
	view := inst.view(now, clientID)
	inst.mu.Unlock()

	if update != nil {
		m.broadcaster.Broadcast(roomID, update)
	}
	return view, nil
}

// SubmitCards plays white cards in the card game.
func (m *Manager) SubmitCards(ctx context.Context, roomID uuid.UUID, clientID string, cards []string) error {
	return m.submit(KindCAH, roomID, clientID, cards)
}

// SubmitCaptions captions the current meme.
func (m *Manager) SubmitCaptions(ctx context.Context, roomID uuid.UUID, clientID string, captions []string) error {
	return m.submit(KindMeme, roomID, clientID, captions)
}

func (m *Manager) submit(kind Kind, roomID uuid.UUID, clientID string, entries []string) error {
	inst, err := m.lookup(kind, roomID)
	if err != nil {
		return err
	}
	inst.mu.Lock()
	msg, err := inst.recordSubmission(clientID, entries, m.now())
	inst.mu.Unlock()
	if err != nil {
		m.logger.WithFields(logrus.Fields{"room": roomID, "client": clientID}).Debugf("submission rejected: %v", err)
		return err
	}
	m.broadcaster.Broadcast(roomID, msg)
	return nil
}

// Vote casts the caller's vote for this round.
func (m *Manager) Vote(ctx context.Context, kind Kind, roomID uuid.UUID, clientID string, p VotePayload) error {
	inst, err := m.lookup(kind, roomID)
	if err != nil {
		return err
	}
	inst.mu.Lock()
	msg, err := inst.recordVote(clientID, p)
	inst.mu.Unlock()
	if err != nil {
		m.logger.WithFields(logrus.Fields{"room": roomID, "client": clientID}).Debugf("vote rejected: %v", err)
		return err
	}
	m.broadcaster.Broadcast(roomID, msg)
	return nil
}

// Advance starts the next round, or ends the game when it is over or the
// content pool is exhausted. In the latter case the returned error wraps
// ErrPoolExhausted alongside a non-nil result.
func (m *Manager) Advance(ctx context.Context, kind Kind, roomID uuid.UUID, actorID string) (*AdvanceResult, error) {
	inst, err := m.lookup(kind, roomID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	inst.mu.Lock()
	res, msg, err := inst.advance(actorID, now)
	inst.mu.Unlock()

	if msg != nil {
		m.broadcaster.Broadcast(roomID, msg)
	}
	if res != nil && res.GameOver {
		m.timers.stop(roomID, inst)
		m.logger.WithFields(logrus.Fields{"room": roomID, "game": kind, "reason": res.Final.Reason}).Info("game over")
	} else if res != nil {
		m.logger.WithFields(logrus.Fields{"room": roomID, "game": kind, "round": res.Round}).Debug("round advanced")
	}
	return res, err
}

// Stop removes the room's game and stops its timer. Unknown rooms are ignored.
func (m *Manager) Stop(roomID uuid.UUID) {
	m.startMu.Lock()
	defer m.startMu.Unlock()
	if _, ok := m.store.Remove(roomID); ok {
		m.logger.WithField("room", roomID).Info("game stopped")
	}
	m.timers.stop(roomID, nil)
}

// Shutdown stops every phase timer.
func (m *Manager) Shutdown() {
	m.timers.stopAll()
}

// ActiveTimers lists rooms whose phase timer is running.
func (m *Manager) ActiveTimers() []uuid.UUID {
	return m.timers.rooms()
}

// Instance returns the room's current instance, whatever its kind.
func (m *Manager) Instance(roomID uuid.UUID) (*Instance, bool) {
	return m.store.Get(roomID)
}

func (m *Manager) lookup(kind Kind, roomID uuid.UUID) (*Instance, error) {
	inst, ok := m.store.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: room %s has no game", ErrNotFound, roomID)
	}
	if inst.Kind != kind {
		return nil, fmt.Errorf("%w: room %s is not playing %s", ErrNotFound, roomID, kind)
	}
	return inst, nil
}

// tick is one phase timer poll. It returns false once the timer should exit
// because its instance is over, removed or replaced.
func (m *Manager) tick(roomID uuid.UUID, inst *Instance) bool {
	if cur, ok := m.store.Get(roomID); !ok || cur != inst {
		return false
	}
	now := m.now()
	var msg interface{}
	inst.mu.Lock()
	if inst.Over {
		inst.mu.Unlock()
		return false
	}
	if inst.transition(now) {
		msg = inst.view(now, "")
		m.logger.WithFields(logrus.Fields{
			"room":  roomID,
			"game":  inst.Kind,
			"phase": inst.Phase,
			"round": inst.Round,
		}).Info("phase changed")
	}
	inst.mu.Unlock()

	if msg != nil {
		m.broadcaster.Broadcast(roomID, msg)
	}
	return true
}
