package displays

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/cueroom/go/internal/models"
)

const displayColumns = `id, room_id, name, background_color, text_color, font_size,
	show_clock, show_progress_bar, mirror, created_at, updated_at, deleted_at, is_deleted`

// Styling defaults applied when a create request leaves them zero.
const (
	defaultBackgroundColor = "#000000"
	defaultTextColor       = "#FFFFFF"
	defaultFontSize        = 96
)

// Repository persists displays in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a display repository over the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateDisplay(ctx context.Context, req CreateDisplayRequest) (*models.Display, error) {
	if req.BackgroundColor == "" {
		req.BackgroundColor = defaultBackgroundColor
	}
	if req.TextColor == "" {
		req.TextColor = defaultTextColor
	}
	if req.FontSize == 0 {
		req.FontSize = defaultFontSize
	}

	query := `
		INSERT INTO displays (id, room_id, name, background_color, text_color, font_size,
			show_clock, show_progress_bar, mirror)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + displayColumns

	d, err := scanDisplay(r.db.QueryRow(ctx, query,
		uuid.New(), req.RoomID, req.Name, req.BackgroundColor, req.TextColor, req.FontSize,
		req.ShowClock, req.ShowProgressBar, req.Mirror,
	))
	if err != nil {
		return nil, fmt.Errorf("create display: %w", err)
	}
	return d, nil
}

func (r *Repository) GetDisplay(ctx context.Context, id uuid.UUID) (*models.Display, error) {
	query := `SELECT ` + displayColumns + ` FROM displays WHERE id = $1 AND NOT is_deleted`
	d, err := scanDisplay(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDisplayNotFound
		}
		return nil, fmt.Errorf("get display: %w", err)
	}
	return d, nil
}

func (r *Repository) ListDisplaysByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Display, error) {
	query := `SELECT ` + displayColumns + ` FROM displays
		WHERE room_id = $1 AND NOT is_deleted
		ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("list displays: %w", err)
	}
	defer rows.Close()

	var out []models.Display
	for rows.Next() {
		d, err := scanDisplay(rows)
		if err != nil {
			return nil, fmt.Errorf("list displays: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateDisplay(ctx context.Context, id uuid.UUID, req UpdateDisplayRequest) (*models.Display, error) {
	query := `
		UPDATE displays SET
			name              = COALESCE($2, name),
			background_color  = COALESCE($3, background_color),
			text_color        = COALESCE($4, text_color),
			font_size         = COALESCE($5, font_size),
			show_clock        = COALESCE($6, show_clock),
			show_progress_bar = COALESCE($7, show_progress_bar),
			mirror            = COALESCE($8, mirror),
			updated_at        = now()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + displayColumns

	d, err := scanDisplay(r.db.QueryRow(ctx, query, id,
		req.Name, req.BackgroundColor, req.TextColor, req.FontSize,
		req.ShowClock, req.ShowProgressBar, req.Mirror,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDisplayNotFound
		}
		return nil, fmt.Errorf("update display: %w", err)
	}
	return d, nil
}

func (r *Repository) SoftDeleteDisplay(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE displays SET is_deleted = true, deleted_at = now() WHERE id = $1 AND NOT is_deleted`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete display: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDisplayNotFound
	}
	return nil
}

func scanDisplay(row pgx.Row) (*models.Display, error) {
	var d models.Display
	err := row.Scan(
		&d.ID, &d.RoomID, &d.Name, &d.BackgroundColor, &d.TextColor, &d.FontSize,
		&d.ShowClock, &d.ShowProgressBar, &d.Mirror,
		&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt, &d.IsDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
