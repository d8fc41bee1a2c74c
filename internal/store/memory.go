package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/majeanson/newjo-sub001/internal/game"
)

// Memory is the in-process Store used by tests and DATABASE_URL-less
// dev runs. Snapshots are kept JSON-encoded so callers can never alias
// stored state through a returned pointer.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{rooms: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, roomID string) (*game.State, error) {
	m.mu.RLock()
	raw, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var s game.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *Memory) Put(_ context.Context, roomID string, s *game.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.rooms[roomID] = raw
	m.mu.Unlock()
	return nil
}
