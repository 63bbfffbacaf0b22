package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cueroom/go/internal/events"
	"github.com/mcdev12/cueroom/go/internal/models"
	"github.com/mcdev12/cueroom/go/internal/roomstate"
	"github.com/mcdev12/cueroom/go/internal/timer"
	"github.com/rs/zerolog/log"
)

// TimerStore is the durable-entity boundary the gateway consumes. The
// implementation is expected to have already authorized the caller for the
// room before the gateway is invoked.
type TimerStore interface {
	LoadTimer(ctx context.Context, id uuid.UUID) (*models.Timer, bool, error)
	UpdateTimerRunState(ctx context.Context, t *models.Timer) error
}

// RoomDataChange is the payload of a room_data_changed event.
type RoomDataChange struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

const (
	lockTimeout   = 5 * time.Second
	writeAttempts = 3
	writeBackoff  = 50 * time.Millisecond
)

// Gateway is the only component that both writes the room state store and
// publishes to the event channel. For every mutation the store write
// completes before the event is published, so a subscriber never sees an
// event whose status document is not yet readable.
type Gateway struct {
	store   roomstate.Store
	channel events.Channel
	timers  TimerStore
	machine *timer.Machine
	clock   clockwork.Clock
	locks   *timerLocks
}

// NewGateway wires the gateway from its injected collaborators.
func NewGateway(store roomstate.Store, channel events.Channel, timers TimerStore, clock clockwork.Clock) *Gateway {
	return &Gateway{
		store:   store,
		channel: channel,
		timers:  timers,
		machine: timer.NewMachine(clock),
		clock:   clock,
		locks:   newTimerLocks(),
	}
}

// ApplyTransition runs the named transition on the timer, persists the
// resulting playback status and broadcasts a timer_changed event. The
// read-validate-write sequence is serialized per timer; validation failures
// happen before any side effect.
func (g *Gateway) ApplyTransition(ctx context.Context, roomID, timerID uuid.UUID, tr timer.Transition, deltaSeconds int) (*models.PlaybackStatus, error) {
	if !tr.Valid() {
		return nil, fmt.Errorf("%w: unknown transition %q", timer.ErrInvalidTransition, tr)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	release, err := g.locks.acquire(lockCtx, timerID)
	if err != nil {
		return nil, err
	}
	defer release()

	tm, found, err := g.timers.LoadTimer(ctx, timerID)
	if err != nil {
		return nil, fmt.Errorf("load timer: %w", err)
	}
	if !found || tm.RoomID != roomID {
		return nil, fmt.Errorf("%w: timer %s in room %s", ErrNotFound, timerID, roomID)
	}

	// Catch natural completion that happened since the last write, so a
	// countdown that ran out reports InvalidTransition on pause instead of
	// silently pausing a finished run.
	g.machine.Refresh(tm)

	if err := g.machine.Apply(tm, tr, deltaSeconds); err != nil {
		return nil, err
	}

	if err := g.timers.UpdateTimerRunState(ctx, tm); err != nil {
		return nil, fmt.Errorf("persist timer: %w", err)
	}

	status := g.buildStatus(tm)
	if err := g.writeStatus(ctx, roomID, status); err != nil {
		return nil, err
	}

	g.publish(ctx, roomID, events.EventTypeTimerChanged, status)
	return status, nil
}

// ReadStatus returns the room's current playback status.
func (g *Gateway) ReadStatus(ctx context.Context, roomID uuid.UUID) (*models.PlaybackStatus, bool, error) {
	return g.store.GetPlaybackStatus(ctx, roomID)
}

// SetStatus replaces the room's playback status wholesale and broadcasts
// the change. Used by trusted callers only; control clients go through
// ApplyTransition.
func (g *Gateway) SetStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error {
	status.RoomID = roomID
	status.UpdatedAt = g.clock.Now().UTC()
	if err := g.writeStatus(ctx, roomID, status); err != nil {
		return err
	}
	g.publish(ctx, roomID, events.EventTypeTimerChanged, status)
	return nil
}

// DeleteStatus removes the room's playback status.
func (g *Gateway) DeleteStatus(ctx context.Context, roomID uuid.UUID) error {
	return g.store.DeletePlaybackStatus(ctx, roomID)
}

// SetRoomData writes a room data entry through the store and broadcasts a
// room_data_changed event carrying the key and new value.
func (g *Gateway) SetRoomData(ctx context.Context, roomID uuid.UUID, key string, value json.RawMessage) error {
	err := g.withRetry(ctx, func() error {
		return g.store.SetRoomData(ctx, roomID, key, value)
	})
	if err != nil {
		return err
	}

	g.publish(ctx, roomID, events.EventTypeRoomDataChanged, RoomDataChange{Key: key, Value: value})
	return nil
}

// GetRoomData reads a room data entry.
func (g *Gateway) GetRoomData(ctx context.Context, roomID uuid.UUID, key string) (json.RawMessage, bool, error) {
	return g.store.GetRoomData(ctx, roomID, key)
}

// ListRoomKeys enumerates the room's data keys.
func (g *Gateway) ListRoomKeys(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	return g.store.ListRoomKeys(ctx, roomID)
}

// PublishEvent broadcasts an ad-hoc event to the room. Unlike the publishes
// that follow a store write, a failure here is surfaced to the caller since
// there is no authoritative document to fall back on.
func (g *Gateway) PublishEvent(ctx context.Context, roomID uuid.UUID, kind events.EventType, payload json.RawMessage) error {
	env := events.NewEnvelope(roomID, kind, g.clock.Now().UTC(), payload)
	return g.channel.Publish(ctx, roomID, env)
}

// buildStatus derives the full-replace playback document from the timer.
func (g *Gateway) buildStatus(tm *models.Timer) *models.PlaybackStatus {
	id := tm.ID
	return &models.PlaybackStatus{
		RoomID:             tm.RoomID,
		TimerID:            &id,
		TimerType:          tm.TimerType,
		DurationSeconds:    tm.DurationSeconds,
		IsActive:           tm.IsActive,
		IsPaused:           tm.IsPaused,
		IsFinished:         tm.IsFinished,
		IsStopped:          tm.IsStopped,
		CurrentTimeSeconds: tm.CurrentTimeSeconds,
		StartedAt:          tm.StartedAt,
		PausedAt:           tm.PausedAt,
		CompletedAt:        tm.CompletedAt,
		UpdatedAt:          g.clock.Now().UTC(),
	}
}

// writeStatus persists the status document, retrying transient store
// failures. The write is a full replace, so retries are idempotent.
func (g *Gateway) writeStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error {
	return g.withRetry(ctx, func() error {
		return g.store.SetPlaybackStatus(ctx, roomID, status)
	})
}

func (g *Gateway) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if attempt < writeAttempts {
			g.clock.Sleep(writeBackoff * time.Duration(attempt))
		}
	}
	return err
}

// publish broadcasts an event after a successful store write. Failures are
// logged and swallowed: the store is authoritative, so a dropped event costs
// latency until the next poll, never data.
func (g *Gateway) publish(ctx context.Context, roomID uuid.UUID, kind events.EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to marshal event payload")
		return
	}
	env := events.NewEnvelope(roomID, kind, g.clock.Now().UTC(), data)
	if err := g.channel.Publish(ctx, roomID, env); err != nil {
		log.Error().
			Err(err).
			Str("room_id", roomID.String()).
			Str("event_type", string(kind)).
			Msg("event publish failed after store write; readers reconcile from store")
	}
}
