package rooms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/cueroom/go/internal/models"
)

const roomColumns = `id, owner_id, name, description, created_at, updated_at, deleted_at, is_deleted`

// Repository persists rooms in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a room repository over the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	query := `
		INSERT INTO rooms (id, owner_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + roomColumns

	rm, err := scanRoom(r.db.QueryRow(ctx, query, uuid.New(), req.OwnerID, req.Name, req.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRoomNameTaken
		}
		return nil, fmt.Errorf("create room: %w", err)
	}
	return rm, nil
}

func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 AND NOT is_deleted`
	rm, err := scanRoom(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return rm, nil
}

func (r *Repository) ListRoomsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
		WHERE owner_id = $1 AND NOT is_deleted
		ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("list rooms: %w", err)
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateRoom(ctx context.Context, id uuid.UUID, req UpdateRoomRequest) (*models.Room, error) {
	query := `
		UPDATE rooms SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			updated_at  = now()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + roomColumns

	rm, err := scanRoom(r.db.QueryRow(ctx, query, id, req.Name, req.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrRoomNameTaken
		}
		return nil, fmt.Errorf("update room: %w", err)
	}
	return rm, nil
}

func (r *Repository) SoftDeleteRoom(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE rooms SET is_deleted = true, deleted_at = now() WHERE id = $1 AND NOT is_deleted`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// DeleteRoom permanently removes a room row; timers and displays follow by
// cascade. Admin surface only.
func (r *Repository) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erase room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var rm models.Room
	err := row.Scan(
		&rm.ID, &rm.OwnerID, &rm.Name, &rm.Description,
		&rm.CreatedAt, &rm.UpdatedAt, &rm.DeletedAt, &rm.IsDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
