package rooms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// App holds room business logic: owner-scoped authorization decisions for
// the playback core and plain CRUD for the admin surface.
type App struct {
	repo *Repository
}

// NewApp creates a room app.
func NewApp(repo *Repository) *App {
	return &App{repo: repo}
}

func (a *App) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return a.repo.CreateRoom(ctx, req)
}

func (a *App) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return a.repo.GetRoom(ctx, id)
}

func (a *App) ListRoomsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Room, error) {
	return a.repo.ListRoomsByOwner(ctx, ownerID)
}

func (a *App) UpdateRoom(ctx context.Context, id uuid.UUID, req UpdateRoomRequest) (*models.Room, error) {
	return a.repo.UpdateRoom(ctx, id, req)
}

func (a *App) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return a.repo.SoftDeleteRoom(ctx, id)
}

// EraseRoom hard-deletes the room row and everything cascading from it.
// Unlike DeleteRoom there is no way back.
func (a *App) EraseRoom(ctx context.Context, id uuid.UUID) error {
	return a.repo.DeleteRoom(ctx, id)
}

// AuthorizeOwner is the authorization decision the playback core consumes:
// whether the caller may mutate the room. It reports ErrRoomNotFound for
// missing rooms and ErrNotOwner for someone else's room.
func (a *App) AuthorizeOwner(ctx context.Context, roomID, ownerID uuid.UUID) error {
	rm, err := a.repo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if rm.OwnerID != ownerID {
		return ErrNotOwner
	}
	return nil
}
