package models

import (
	"time"

	"github.com/google/uuid"
)

// TimerType defines how a timer counts.
type TimerType string

const (
	TimerTypeCountdown TimerType = "COUNTDOWN"
	TimerTypeCountup   TimerType = "COUNTUP"
	TimerTypeStopwatch TimerType = "STOPWATCH"
)

// Valid reports whether t is a known timer type.
func (t TimerType) Valid() bool {
	switch t {
	case TimerTypeCountdown, TimerTypeCountup, TimerTypeStopwatch:
		return true
	}
	return false
}

// ChimeType defines the sound played when a timer finishes.
type ChimeType string

const (
	ChimeNone   ChimeType = "NONE"
	ChimeBell   ChimeType = "BELL"
	ChimeChime  ChimeType = "CHIME"
	ChimeAlarm  ChimeType = "ALARM"
	ChimeCustom ChimeType = "CUSTOM"
)

// Valid reports whether c is a known chime type.
func (c ChimeType) Valid() bool {
	switch c {
	case ChimeNone, ChimeBell, ChimeChime, ChimeAlarm, ChimeCustom:
		return true
	}
	return false
}

// FlashType defines how a display flashes when a timer finishes.
type FlashType string

const (
	FlashNone       FlashType = "NONE"
	FlashSingle     FlashType = "SINGLE"
	FlashContinuous FlashType = "CONTINUOUS"
	FlashSlowBlink  FlashType = "SLOW_BLINK"
	FlashFastBlink  FlashType = "FAST_BLINK"
)

// Valid reports whether f is a known flash type.
func (f FlashType) Valid() bool {
	switch f {
	case FlashNone, FlashSingle, FlashContinuous, FlashSlowBlink, FlashFastBlink:
		return true
	}
	return false
}

// Timer represents a countdown/countup/stopwatch timer belonging to a room.
// ShareUUID is the externally shareable token used in display-facing URLs;
// ID never leaves the backend surface.
type Timer struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	ShareUUID string    `json:"uuid"`
	Title     string    `json:"title"`

	DisplayID *uuid.UUID `json:"display_id,omitempty"`
	Speaker   *string    `json:"speaker,omitempty"`
	Notes     *string    `json:"notes,omitempty"`

	TimerType       TimerType `json:"timer_type"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	ChimeType       ChimeType `json:"chime_type"`
	FlashType       FlashType `json:"flash_type"`

	IsManualStart    bool       `json:"is_manual_start"`
	ScheduledStartAt *time.Time `json:"scheduled_start_at,omitempty"`

	// Live run state. Exactly one state holds at a time; see the timer
	// package for the flag-to-state mapping.
	IsActive           bool       `json:"is_active"`
	IsPaused           bool       `json:"is_paused"`
	IsFinished         bool       `json:"is_finished"`
	IsStopped          bool       `json:"is_stopped"`
	CurrentTimeSeconds int        `json:"current_time_seconds"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	PausedAt           *time.Time `json:"paused_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	ShowTitle   bool `json:"show_title"`
	ShowSpeaker bool `json:"show_speaker"`
	ShowNotes   bool `json:"show_notes"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	IsDeleted bool       `json:"-"`
}
