package rooms

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/sirupsen/logrus"
)

// MemoryStore keeps rooms in process memory. It backs the registry when no
// database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	rooms   map[uuid.UUID]*models.Room
	players map[uuid.UUID][]models.Player
	logger  *logrus.Logger
}

func NewMemoryStore(logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{
		rooms:   make(map[uuid.UUID]*models.Room),
		players: make(map[uuid.UUID][]models.Player),
		logger:  logger,
	}
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.ID]; exists {
		s.logger.Warnf("room %s already exists", room.ID)
		return fmt.Errorf("room %s already exists", room.ID)
	}
	r := *room
	s.rooms[room.ID] = &r
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	out := *r
	return &out, nil
}

func (s *MemoryStore) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[id]; !exists {
		s.logger.Warnf("attempted to delete non-existent room %s", id)
		return models.ErrRoomNotFound
	}
	delete(s.rooms, id)
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return models.ErrRoomNotFound
	}
	r.Status = status
	return nil
}

func (s *MemoryStore) UpsertPlayer(ctx context.Context, p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[p.RoomID]; !ok {
		return models.ErrRoomNotFound
	}
	roster := s.players[p.RoomID]
	for i := range roster {
		if roster[i].ClientID == p.ClientID {
			roster[i].Username = p.Username
			roster[i].LastSeen = p.LastSeen
			return nil
		}
	}
	np := *p
	if np.JoinedAt.IsZero() {
		np.JoinedAt = time.Now()
	}
	s.players[p.RoomID] = append(roster, np)
	return nil
}

func (s *MemoryStore) ListPlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return nil, models.ErrRoomNotFound
	}
	return append([]models.Player(nil), s.players[roomID]...), nil
}

// MemoryPresence keeps last-seen times in process memory.
type MemoryPresence struct {
	mu   sync.Mutex
	seen map[uuid.UUID]map[string]time.Time
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{seen: make(map[uuid.UUID]map[string]time.Time)}
}

func (p *MemoryPresence) Touch(ctx context.Context, roomID uuid.UUID, clientID string, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	room, ok := p.seen[roomID]
	if !ok {
		room = make(map[string]time.Time)
		p.seen[roomID] = room
	}
	if at.After(room[clientID]) {
		room[clientID] = at
	}
	return nil
}

func (p *MemoryPresence) LastSeen(ctx context.Context, roomID uuid.UUID) (time.Time, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var latest time.Time
	for _, t := range p.seen[roomID] {
		if t.After(latest) {
			latest = t
		}
	}
	return latest, !latest.IsZero(), nil
}

func (p *MemoryPresence) Forget(ctx context.Context, roomID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, roomID)
	return nil
}
