package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MemoryChannel is an in-process Channel for tests and single-node
// development. Delivery matches the Channel contract: best effort, publish
// order per room, silent drop with no subscribers.
type MemoryChannel struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*memorySubscription]struct{}
}

// NewMemoryChannel creates an empty in-process channel.
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{
		rooms: make(map[uuid.UUID]map[*memorySubscription]struct{}),
	}
}

func (c *MemoryChannel) Publish(ctx context.Context, roomID uuid.UUID, env Envelope) error {
	c.mu.RLock()
	subs := make([]*memorySubscription, 0, len(c.rooms[roomID]))
	for s := range c.rooms[roomID] {
		subs = append(subs, s)
	}
	c.mu.RUnlock()

	for _, s := range subs {
		s.deliver(env)
	}
	return nil
}

func (c *MemoryChannel) Subscribe(ctx context.Context, roomID uuid.UUID) (Subscription, error) {
	s := &memorySubscription{
		channel: c,
		roomID:  roomID,
		ch:      make(chan Envelope, 64),
	}
	c.mu.Lock()
	if c.rooms[roomID] == nil {
		c.rooms[roomID] = make(map[*memorySubscription]struct{})
	}
	c.rooms[roomID][s] = struct{}{}
	c.mu.Unlock()
	return s, nil
}

func (c *MemoryChannel) remove(s *memorySubscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if subs, ok := c.rooms[s.roomID]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(c.rooms, s.roomID)
		}
	}
}

type memorySubscription struct {
	channel *MemoryChannel
	roomID  uuid.UUID
	ch      chan Envelope
	mu      sync.Mutex
	closed  bool
}

func (s *memorySubscription) deliver(env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- env:
	default:
		log.Warn().Str("room_id", env.RoomID).Msg("subscriber buffer full, dropping event")
	}
}

func (s *memorySubscription) C() <-chan Envelope {
	return s.ch
}

func (s *memorySubscription) Unsubscribe() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.channel.remove(s)
	return nil
}
