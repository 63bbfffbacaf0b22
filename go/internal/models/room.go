package models

import (
	"time"

	"github.com/google/uuid"
)

// Room groups timers and shared ephemeral state under a single owner.
// Name is unique per owner.
type Room struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	IsDeleted bool       `json:"-"`
}

// Display holds presentation configuration for a viewer screen. It never
// affects timer behavior.
type Display struct {
	ID     uuid.UUID `json:"id"`
	RoomID uuid.UUID `json:"room_id"`
	Name   string    `json:"name"`

	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	FontSize        int    `json:"font_size"`
	ShowClock       bool   `json:"show_clock"`
	ShowProgressBar bool   `json:"show_progress_bar"`
	Mirror          bool   `json:"mirror"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	IsDeleted bool       `json:"-"`
}
