package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/sirupsen/logrus"
)

// MaxUsernameLength bounds display names.
const MaxUsernameLength = 32

// ErrInvalidPlayer is returned when a join request lacks a client id or a
// usable display name.
var ErrInvalidPlayer = errors.New("invalid player")

// Registry combines a Store and a Presence backend. It satisfies game.Registry.
type Registry struct {
	store    Store
	presence Presence
	logger   *logrus.Logger
	now      func() time.Time
}

func NewRegistry(store Store, presence Presence, logger *logrus.Logger) *Registry {
	return &Registry{
		store:    store,
		presence: presence,
		logger:   logger,
		now:      time.Now,
	}
}

// Create opens a new waiting room owned by creator.
func (r *Registry) Create(ctx context.Context, creator string) (*models.Room, error) {
	if strings.TrimSpace(creator) == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidPlayer)
	}
	room := &models.Room{
		ID:        uuid.New(),
		Creator:   creator,
		Status:    models.RoomWaiting,
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	r.logger.WithFields(logrus.Fields{"room": room.ID, "creator": creator}).Info("room created")
	return room, nil
}

// Join adds clientID to the room under username, or renames them.
func (r *Registry) Join(ctx context.Context, roomID uuid.UUID, clientID, username string) (*models.Player, error) {
	username = strings.TrimSpace(username)
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidPlayer)
	}
	if username == "" || utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, fmt.Errorf("%w: username must be 1 to %d characters", ErrInvalidPlayer, MaxUsernameLength)
	}
	now := r.now().UTC()
	p := &models.Player{
		ClientID: clientID,
		Username: username,
		RoomID:   roomID,
		JoinedAt: now,
		LastSeen: now,
	}
	if err := r.store.UpsertPlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}
	if err := r.presence.Touch(ctx, roomID, clientID, now); err != nil {
		r.logger.WithField("room", roomID).Warnf("failed to record presence: %v", err)
	}
	r.logger.WithFields(logrus.Fields{"room": roomID, "client": clientID, "username": username}).Info("player joined")
	return p, nil
}

// Room returns the room record.
func (r *Registry) Room(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	return r.store.GetRoom(ctx, roomID)
}

// Players returns the roster in join order.
func (r *Registry) Players(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	return r.store.ListPlayers(ctx, roomID)
}

// Touch marks the player as seen now. Unknown rooms and clients outside the
// roster are ignored so they cannot keep a room alive.
func (r *Registry) Touch(ctx context.Context, roomID uuid.UUID, clientID string) error {
	roster, err := r.store.ListPlayers(ctx, roomID)
	if errors.Is(err, models.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, p := range roster {
		if p.ClientID == clientID {
			return r.presence.Touch(ctx, roomID, clientID, r.now().UTC())
		}
	}
	return nil
}

// SetStatus updates the room status.
func (r *Registry) SetStatus(ctx context.Context, roomID uuid.UUID, status string) error {
	return r.store.SetStatus(ctx, roomID, status)
}

// Remove deletes the room and its presence data.
func (r *Registry) Remove(ctx context.Context, roomID uuid.UUID) error {
	if err := r.store.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	if err := r.presence.Forget(ctx, roomID); err != nil {
		r.logger.WithField("room", roomID).Warnf("failed to forget presence: %v", err)
	}
	return nil
}

// idleSince reports when the room last showed activity: the latest player
// touch, or its creation when nobody was ever seen.
func (r *Registry) idleSince(ctx context.Context, room models.Room) (time.Time, error) {
	last, ok, err := r.presence.LastSeen(ctx, room.ID)
	if err != nil {
		return time.Time{}, err
	}
	if !ok || last.Before(room.CreatedAt) {
		return room.CreatedAt, nil
	}
	return last, nil
}
