package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/cueroom/go/internal/displays"
	"github.com/mcdev12/cueroom/go/internal/events"
	"github.com/mcdev12/cueroom/go/internal/models"
	"github.com/mcdev12/cueroom/go/internal/playback"
	"github.com/mcdev12/cueroom/go/internal/rooms"
	"github.com/mcdev12/cueroom/go/internal/roomstate"
	"github.com/mcdev12/cueroom/go/internal/timer"
	"github.com/mcdev12/cueroom/go/internal/timers"
)

// ownerHeader carries the authenticated owner id. Authentication itself is
// an upstream concern; this service trusts the header.
const ownerHeader = "X-Owner-ID"

// PlaybackGateway is the slice of the playback core the HTTP surface needs.
type PlaybackGateway interface {
	ApplyTransition(ctx context.Context, roomID, timerID uuid.UUID, tr timer.Transition, deltaSeconds int) (*models.PlaybackStatus, error)
	ReadStatus(ctx context.Context, roomID uuid.UUID) (*models.PlaybackStatus, bool, error)
	SetStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error
	DeleteStatus(ctx context.Context, roomID uuid.UUID) error
	SetRoomData(ctx context.Context, roomID uuid.UUID, key string, value json.RawMessage) error
	GetRoomData(ctx context.Context, roomID uuid.UUID, key string) (json.RawMessage, bool, error)
	ListRoomKeys(ctx context.Context, roomID uuid.UUID) ([]string, error)
	PublishEvent(ctx context.Context, roomID uuid.UUID, kind events.EventType, payload json.RawMessage) error
}

// TimerService is implemented by the timers app.
type TimerService interface {
	CreateTimer(ctx context.Context, req timers.CreateTimerRequest) (*models.Timer, error)
	GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error)
	GetTimerByShareUUID(ctx context.Context, shareUUID string) (*models.Timer, error)
	ListTimersByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Timer, error)
	UpdateTimer(ctx context.Context, id uuid.UUID, req timers.UpdateTimerRequest) (*models.Timer, error)
	DeleteTimer(ctx context.Context, id uuid.UUID) error
	EraseTimer(ctx context.Context, id uuid.UUID) error
}

// RoomService is implemented by the rooms app.
type RoomService interface {
	CreateRoom(ctx context.Context, req rooms.CreateRoomRequest) (*models.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	ListRoomsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, req rooms.UpdateRoomRequest) (*models.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	EraseRoom(ctx context.Context, id uuid.UUID) error
	AuthorizeOwner(ctx context.Context, roomID, ownerID uuid.UUID) error
}

// DisplayService is implemented by the displays app.
type DisplayService interface {
	CreateDisplay(ctx context.Context, req displays.CreateDisplayRequest) (*models.Display, error)
	GetDisplay(ctx context.Context, id uuid.UUID) (*models.Display, error)
	ListDisplaysByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Display, error)
	UpdateDisplay(ctx context.Context, id uuid.UUID, req displays.UpdateDisplayRequest) (*models.Display, error)
	DeleteDisplay(ctx context.Context, id uuid.UUID) error
}

// Handler wires the HTTP surface to the playback core and the durable apps.
type Handler struct {
	gateway  PlaybackGateway
	timers   TimerService
	rooms    RoomService
	displays DisplayService
}

// NewHandler creates the API handler.
func NewHandler(gw PlaybackGateway, timerSvc TimerService, roomSvc RoomService, displaySvc DisplayService) *Handler {
	return &Handler{
		gateway:  gw,
		timers:   timerSvc,
		rooms:    roomSvc,
		displays: displaySvc,
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps domain sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, playback.ErrNotFound),
		errors.Is(err, timers.ErrTimerNotFound),
		errors.Is(err, rooms.ErrRoomNotFound),
		errors.Is(err, displays.ErrDisplayNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rooms.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, timer.ErrInvalidTransition),
		errors.Is(err, playback.ErrConcurrentModification),
		errors.Is(err, rooms.ErrRoomNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, roomstate.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ownerID extracts the trusted owner id header.
func ownerID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(ownerHeader)
	if raw == "" {
		return uuid.Nil, errors.New("missing " + ownerHeader + " header")
	}
	return uuid.Parse(raw)
}

// urlUUID parses a uuid path parameter.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// authorizeRoom checks that the request's owner may mutate the room.
func (h *Handler) authorizeRoom(w http.ResponseWriter, r *http.Request, roomID uuid.UUID) bool {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return false
	}
	if err := h.rooms.AuthorizeOwner(r.Context(), roomID, owner); err != nil {
		writeDomainError(w, err)
		return false
	}
	return true
}
