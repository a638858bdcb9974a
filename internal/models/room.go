package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Room statuses.
const (
	RoomWaiting = "waiting"
	RoomPlaying = "playing"
)

// ErrRoomNotFound is returned by room backends when no room matches an id.
var ErrRoomNotFound = errors.New("room not found")

// Room represents a row in the rooms table.
type Room struct {
	ID        uuid.UUID `json:"id"`
	Creator   string    `json:"creator"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
