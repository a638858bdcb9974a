// Package realtime fans game messages out to the websocket connections of a room.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// WriteTimeout bounds a single websocket write.
	WriteTimeout = 5 * time.Second
	// OutboxSize is how many messages a slow connection may fall behind before drops.
	OutboxSize = 64
	// DefaultPingInterval is used when the hub is built with a zero interval.
	DefaultPingInterval = 25 * time.Second
)

// Ping is the keepalive the server sends; clients answer with {"type":"pong"}.
type Ping struct {
	Type string `json:"type"`
}

// Conn is one client's websocket within a room.
type Conn struct {
	ID       uuid.UUID
	RoomID   uuid.UUID
	ClientID string

	ws  *websocket.Conn
	out chan []byte
}

// NewConn wraps an accepted websocket.
func NewConn(roomID uuid.UUID, clientID string, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:       uuid.New(),
		RoomID:   roomID,
		ClientID: clientID,
		ws:       ws,
		out:      make(chan []byte, OutboxSize),
	}
}

// enqueue never blocks. It reports false when the outbox is full and data was dropped.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case c.out <- data:
		return true
	default:
		return false
	}
}

// Hub tracks live connections per room. It implements game.Broadcaster.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Conn]struct{}

	pingInterval time.Duration
	logger       *logrus.Logger
}

func NewHub(logger *logrus.Logger, pingInterval time.Duration) *Hub {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	return &Hub{
		rooms:        make(map[uuid.UUID]map[*Conn]struct{}),
		pingInterval: pingInterval,
		logger:       logger,
	}
}

// Register adds c to its room.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[c.RoomID]
	if !ok {
		conns = make(map[*Conn]struct{})
		h.rooms[c.RoomID] = conns
	}
	conns[c] = struct{}{}
}

// Unregister removes c; the room entry goes away with its last connection.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[c.RoomID]
	if !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.rooms, c.RoomID)
	}
}

// Count returns the number of live connections in a room.
func (h *Hub) Count(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Broadcast marshals msg once and queues it on every connection of the room.
func (h *Hub) Broadcast(roomID uuid.UUID, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithField("room", roomID).Errorf("failed to marshal broadcast: %v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.enqueue(data) {
			h.logger.WithFields(logrus.Fields{
				"room":   roomID,
				"client": c.ClientID,
			}).Warn("outbox full, dropped broadcast")
		}
	}
}

// Send queues msg for a single connection.
func (h *Hub) Send(c *Conn, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if !c.enqueue(data) {
		h.logger.WithFields(logrus.Fields{
			"room":   c.RoomID,
			"client": c.ClientID,
		}).Warn("outbox full, dropped message")
		return fmt.Errorf("outbox of %s full", c.ClientID)
	}
	return nil
}

// Pump writes queued messages and periodic pings to c until ctx is done or a
// write fails.
func (h *Hub) Pump(ctx context.Context, c *Conn) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ping, _ := json.Marshal(Ping{Type: "ping"})
	for {
		var data []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data = <-c.out:
		case <-ticker.C:
			data = ping
		}
		if err := h.write(ctx, c, data); err != nil {
			return err
		}
	}
}

func (h *Hub) write(ctx context.Context, c *Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write to %s: %w", c.ClientID, err)
	}
	return nil
}
