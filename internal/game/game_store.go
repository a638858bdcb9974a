package game

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds the active instance of every room, whatever its kind.
type Store struct {
	mu        sync.Mutex
	instances map[uuid.UUID]*Instance
}

func NewStore() *Store {
	return &Store{
		instances: make(map[uuid.UUID]*Instance),
	}
}

// Put stores inst as its room's instance and returns the one it replaced, if any.
func (s *Store) Put(inst *Instance) *Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.instances[inst.RoomID]
	s.instances[inst.RoomID] = inst
	return prev
}

func (s *Store) Get(roomID uuid.UUID) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, exists := s.instances[roomID]
	return inst, exists
}

// Remove deletes the room's instance and returns it.
func (s *Store) Remove(roomID uuid.UUID) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, exists := s.instances[roomID]
	delete(s.instances, roomID)
	return inst, exists
}
