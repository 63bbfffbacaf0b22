package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrChannelUnavailable wraps transient broker failures during publish or
// subscribe.
var ErrChannelUnavailable = errors.New("event channel unavailable")

// EventType names a room event kind.
type EventType string

const (
	EventTypeTimerChanged    EventType = "timer_changed"
	EventTypeRoomDataChanged EventType = "room_data_changed"
	EventTypeCustom          EventType = "custom"
)

// Envelope is the wire form of a room event. Events are fire-and-forget:
// whoever is subscribed at publish time receives the envelope, nobody else
// ever does. The room id routes the event and is not part of the payload.
type Envelope struct {
	ID        string          `json:"event_id"`
	RoomID    string          `json:"room_id"`
	Type      EventType       `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope builds an envelope with a fresh event id.
func NewEnvelope(roomID uuid.UUID, eventType EventType, at time.Time, payload json.RawMessage) Envelope {
	return Envelope{
		ID:        uuid.New().String(),
		RoomID:    roomID.String(),
		Type:      eventType,
		Timestamp: at,
		Payload:   payload,
	}
}

// Subscription is a live per-subscriber event stream. It ends only on
// Unsubscribe or connection loss; events published before the subscription
// existed are never replayed.
type Subscription interface {
	// C yields envelopes in publish order for the subscribed room. The
	// channel closes after Unsubscribe.
	C() <-chan Envelope
	// Unsubscribe detaches the stream. Safe to call more than once, and
	// never blocks a publisher.
	Unsubscribe() error
}

// Channel is a per-room broadcast with at-most-once, best-effort delivery.
// Publishing to a room with no subscribers succeeds silently: the room
// state store stays the source of truth and late joiners reconcile by
// reading it instead of replaying history.
type Channel interface {
	Publish(ctx context.Context, roomID uuid.UUID, env Envelope) error
	Subscribe(ctx context.Context, roomID uuid.UUID) (Subscription, error)
}
