package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaybackStatus is the single room-scoped document describing which timer
// currently has playback focus and its live fields. It is replaced wholesale
// on every update, never merged, and is always re-derivable from the durable
// Timer record plus wall clock.
type PlaybackStatus struct {
	RoomID  uuid.UUID  `json:"room_id"`
	TimerID *uuid.UUID `json:"timer_id,omitempty"`

	TimerType          TimerType  `json:"timer_type,omitempty"`
	DurationSeconds    *int       `json:"duration_seconds,omitempty"`
	IsActive           bool       `json:"is_active"`
	IsPaused           bool       `json:"is_paused"`
	IsFinished         bool       `json:"is_finished"`
	IsStopped          bool       `json:"is_stopped"`
	CurrentTimeSeconds int        `json:"current_time_seconds"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	PausedAt           *time.Time `json:"paused_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
