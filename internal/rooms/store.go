// Package rooms is the room registry: who created a room, who is in it and
// when they were last seen.
package rooms

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/models"
)

// Store persists rooms and their rosters. Unknown rooms yield models.ErrRoomNotFound.
type Store interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error

	// UpsertPlayer adds a player to a room, or renames them if the client id
	// is already in it. A rename keeps the original join position.
	UpsertPlayer(ctx context.Context, p *models.Player) error
	// ListPlayers returns the roster in join order.
	ListPlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error)
}

// Presence tracks player liveness per room.
type Presence interface {
	Touch(ctx context.Context, roomID uuid.UUID, clientID string, at time.Time) error
	// LastSeen returns the most recent touch of any player in the room.
	LastSeen(ctx context.Context, roomID uuid.UUID) (time.Time, bool, error)
	Forget(ctx context.Context, roomID uuid.UUID) error
}
