package rooms

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrRoomNotFound is returned when a room does not exist or is deleted.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomNameTaken is returned when the owner already has a room with
	// the requested name.
	ErrRoomNameTaken = errors.New("room name already taken")
	// ErrNotOwner is returned when the caller does not own the room.
	ErrNotOwner = errors.New("caller does not own the room")
)

// CreateRoomRequest carries the fields needed to create a room.
type CreateRoomRequest struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// UpdateRoomRequest carries the mutable room fields; nil leaves a field
// unchanged.
type UpdateRoomRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
