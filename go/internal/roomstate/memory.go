package roomstate

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// MemoryStore is an in-process Store for tests and single-node development.
// It applies no TTL; entries live until deleted or the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	playback map[uuid.UUID]*models.PlaybackStatus
	data     map[uuid.UUID]map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		playback: make(map[uuid.UUID]*models.PlaybackStatus),
		data:     make(map[uuid.UUID]map[string]json.RawMessage),
	}
}

func (s *MemoryStore) GetPlaybackStatus(ctx context.Context, roomID uuid.UUID) (*models.PlaybackStatus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.playback[roomID]
	if !ok {
		return nil, false, nil
	}
	cp := *status
	return &cp, true, nil
}

func (s *MemoryStore) SetPlaybackStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error {
	cp := *status
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback[roomID] = &cp
	return nil
}

func (s *MemoryStore) DeletePlaybackStatus(ctx context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.playback, roomID)
	return nil
}

func (s *MemoryStore) GetRoomData(ctx context.Context, roomID uuid.UUID, key string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[roomID][key]
	if !ok {
		return nil, false, nil
	}
	out := make(json.RawMessage, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *MemoryStore) SetRoomData(ctx context.Context, roomID uuid.UUID, key string, value json.RawMessage) error {
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[roomID] == nil {
		s.data[roomID] = make(map[string]json.RawMessage)
	}
	s.data[roomID][key] = cp
	return nil
}

func (s *MemoryStore) ListRoomKeys(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data[roomID]))
	for k := range s.data[roomID] {
		keys = append(keys, k)
	}
	return keys, nil
}
