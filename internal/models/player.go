package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a roster entry of a room. ClientID is the opaque identifier the
// client generated for itself; it is the only identity the server knows.
type Player struct {
	ClientID string    `json:"client_id"`
	Username string    `json:"username"`
	RoomID   uuid.UUID `json:"room_id"`
	JoinedAt time.Time `json:"joined_at"`
	LastSeen time.Time `json:"last_seen"`
}
