package displays

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// App holds display business logic. Displays are pure presentation config;
// nothing here touches timer state.
type App struct {
	repo *Repository
}

// NewApp creates a display app.
func NewApp(repo *Repository) *App {
	return &App{repo: repo}
}

func (a *App) CreateDisplay(ctx context.Context, req CreateDisplayRequest) (*models.Display, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.FontSize < 0 {
		return nil, fmt.Errorf("font_size must be non-negative")
	}
	return a.repo.CreateDisplay(ctx, req)
}

func (a *App) GetDisplay(ctx context.Context, id uuid.UUID) (*models.Display, error) {
	return a.repo.GetDisplay(ctx, id)
}

func (a *App) ListDisplaysByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Display, error) {
	return a.repo.ListDisplaysByRoom(ctx, roomID)
}

func (a *App) UpdateDisplay(ctx context.Context, id uuid.UUID, req UpdateDisplayRequest) (*models.Display, error) {
	if req.FontSize != nil && *req.FontSize <= 0 {
		return nil, fmt.Errorf("font_size must be positive")
	}
	return a.repo.UpdateDisplay(ctx, id, req)
}

func (a *App) DeleteDisplay(ctx context.Context, id uuid.UUID) error {
	return a.repo.SoftDeleteDisplay(ctx, id)
}
