package displays

import (
	"errors"

	"github.com/google/uuid"
)

// ErrDisplayNotFound indicates the display does not exist or is deleted.
var ErrDisplayNotFound = errors.New("display not found")

// CreateDisplayRequest carries the fields needed to register a viewer screen.
// Zero-value styling falls back to repository defaults.
type CreateDisplayRequest struct {
	RoomID uuid.UUID `json:"room_id"`
	Name   string    `json:"name"`

	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	FontSize        int    `json:"font_size"`
	ShowClock       bool   `json:"show_clock"`
	ShowProgressBar bool   `json:"show_progress_bar"`
	Mirror          bool   `json:"mirror"`
}

// UpdateDisplayRequest supports partial updates. Nil fields are left untouched.
type UpdateDisplayRequest struct {
	Name            *string `json:"name,omitempty"`
	BackgroundColor *string `json:"background_color,omitempty"`
	TextColor       *string `json:"text_color,omitempty"`
	FontSize        *int    `json:"font_size,omitempty"`
	ShowClock       *bool   `json:"show_clock,omitempty"`
	ShowProgressBar *bool   `json:"show_progress_bar,omitempty"`
	Mirror          *bool   `json:"mirror,omitempty"`
}
