package timers

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// ErrTimerNotFound is returned when a timer does not exist or is deleted.
var ErrTimerNotFound = errors.New("timer not found")

// CreateTimerRequest carries the fields needed to create a timer.
type CreateTimerRequest struct {
	RoomID          uuid.UUID        `json:"room_id"`
	Title           string           `json:"title"`
	TimerType       models.TimerType `json:"timer_type"`
	DurationSeconds *int             `json:"duration_seconds,omitempty"`
	DisplayID       *uuid.UUID       `json:"display_id,omitempty"`
	Speaker         *string          `json:"speaker,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	ChimeType       models.ChimeType `json:"chime_type,omitempty"`
	FlashType       models.FlashType `json:"flash_type,omitempty"`
	IsManualStart   *bool            `json:"is_manual_start,omitempty"`
	ShowTitle       *bool            `json:"show_title,omitempty"`
	ShowSpeaker     *bool            `json:"show_speaker,omitempty"`
	ShowNotes       *bool            `json:"show_notes,omitempty"`
}

// UpdateTimerRequest carries the mutable configuration fields. Nil fields
// are left unchanged. Run-state flags are owned by the playback gateway and
// are not updatable here.
type UpdateTimerRequest struct {
	Title           *string           `json:"title,omitempty"`
	TimerType       *models.TimerType `json:"timer_type,omitempty"`
	DurationSeconds *int              `json:"duration_seconds,omitempty"`
	DisplayID       *uuid.UUID        `json:"display_id,omitempty"`
	Speaker         *string           `json:"speaker,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	ChimeType       *models.ChimeType `json:"chime_type,omitempty"`
	FlashType       *models.FlashType `json:"flash_type,omitempty"`
	IsManualStart   *bool             `json:"is_manual_start,omitempty"`
	ShowTitle       *bool             `json:"show_title,omitempty"`
	ShowSpeaker     *bool             `json:"show_speaker,omitempty"`
	ShowNotes       *bool             `json:"show_notes,omitempty"`
}
