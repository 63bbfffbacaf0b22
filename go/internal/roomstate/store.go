package roomstate

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// ErrStoreUnavailable wraps transient infrastructure failures. Absence of a
// key is never an error; it is reported through the found return value.
var ErrStoreUnavailable = errors.New("room state store unavailable")

// Store is the room-scoped ephemeral state contract. Every operation is
// namespaced by room: no call can observe or mutate another room's entries.
// Entries carry a TTL so abandoned rooms clean themselves up; the store may
// lose everything on restart, which costs display resync only, never data.
type Store interface {
	// GetPlaybackStatus returns the room's current playback document.
	GetPlaybackStatus(ctx context.Context, roomID uuid.UUID) (*models.PlaybackStatus, bool, error)
	// SetPlaybackStatus replaces the room's playback document wholesale.
	SetPlaybackStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error
	// DeletePlaybackStatus removes the playback document. Deleting an
	// absent document is not an error.
	DeletePlaybackStatus(ctx context.Context, roomID uuid.UUID) error

	// GetRoomData returns the named room data value.
	GetRoomData(ctx context.Context, roomID uuid.UUID, key string) (json.RawMessage, bool, error)
	// SetRoomData stores an arbitrary value under key, last writer wins.
	SetRoomData(ctx context.Context, roomID uuid.UUID, key string, value json.RawMessage) error
	// ListRoomKeys enumerates the room's data keys in no particular order.
	ListRoomKeys(ctx context.Context, roomID uuid.UUID) ([]string, error)
}
