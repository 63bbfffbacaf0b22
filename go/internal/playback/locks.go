package playback

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// timerLocks serializes transitions per timer id. Each timer gets a
// capacity-1 channel semaphore so acquisition can respect a context
// deadline instead of blocking indefinitely.
type timerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]chan struct{}
}

func newTimerLocks() *timerLocks {
	return &timerLocks{locks: make(map[uuid.UUID]chan struct{})}
}

func (l *timerLocks) get(id uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[id] = ch
	}
	return ch
}

// acquire takes the timer's lock, failing with ErrConcurrentModification
// once ctx expires. The returned release func must be called exactly once.
func (l *timerLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	ch := l.get(id)
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ErrConcurrentModification
	}
}
