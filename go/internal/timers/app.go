package timers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// App holds the timer business logic above the repository: boundary
// validation of the closed enum fields and the durable boundary consumed by
// the playback gateway.
type App struct {
	repo *Repository
}

// NewApp creates a timer app.
func NewApp(repo *Repository) *App {
	return &App{repo: repo}
}

func (a *App) CreateTimer(ctx context.Context, req CreateTimerRequest) (*models.Timer, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !req.TimerType.Valid() {
		return nil, fmt.Errorf("invalid timer type %q", req.TimerType)
	}
	if req.TimerType == models.TimerTypeCountdown && req.DurationSeconds == nil {
		return nil, fmt.Errorf("countdown timers require duration_seconds")
	}
	if req.DurationSeconds != nil && *req.DurationSeconds <= 0 {
		return nil, fmt.Errorf("duration_seconds must be positive")
	}
	if req.ChimeType != "" && !req.ChimeType.Valid() {
		return nil, fmt.Errorf("invalid chime type %q", req.ChimeType)
	}
	if req.FlashType != "" && !req.FlashType.Valid() {
		return nil, fmt.Errorf("invalid flash type %q", req.FlashType)
	}
	return a.repo.CreateTimer(ctx, req)
}

func (a *App) GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	return a.repo.GetTimer(ctx, id)
}

func (a *App) GetTimerByShareUUID(ctx context.Context, shareUUID string) (*models.Timer, error) {
	return a.repo.GetTimerByShareUUID(ctx, shareUUID)
}

func (a *App) ListTimersByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Timer, error) {
	return a.repo.ListTimersByRoom(ctx, roomID)
}

func (a *App) UpdateTimer(ctx context.Context, id uuid.UUID, req UpdateTimerRequest) (*models.Timer, error) {
	if req.TimerType != nil && !req.TimerType.Valid() {
		return nil, fmt.Errorf("invalid timer type %q", *req.TimerType)
	}
	if req.ChimeType != nil && !req.ChimeType.Valid() {
		return nil, fmt.Errorf("invalid chime type %q", *req.ChimeType)
	}
	if req.FlashType != nil && !req.FlashType.Valid() {
		return nil, fmt.Errorf("invalid flash type %q", *req.FlashType)
	}
	if req.DurationSeconds != nil && *req.DurationSeconds <= 0 {
		return nil, fmt.Errorf("duration_seconds must be positive")
	}
	return a.repo.UpdateTimer(ctx, id, req)
}

func (a *App) DeleteTimer(ctx context.Context, id uuid.UUID) error {
	return a.repo.SoftDeleteTimer(ctx, id)
}

// EraseTimer permanently removes a timer. Admin surface only.
func (a *App) EraseTimer(ctx context.Context, id uuid.UUID) error {
	return a.repo.DeleteTimer(ctx, id)
}

// LoadTimer implements the playback gateway's durable boundary: absence is
// a non-error outcome.
func (a *App) LoadTimer(ctx context.Context, id uuid.UUID) (*models.Timer, bool, error) {
	tm, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTimerNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return tm, true, nil
}

// UpdateTimerRunState implements the playback gateway's durable boundary.
func (a *App) UpdateTimerRunState(ctx context.Context, tm *models.Timer) error {
	return a.repo.UpdateTimerRunState(ctx, tm)
}
