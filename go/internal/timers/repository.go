package timers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/cueroom/go/internal/models"
)

const timerColumns = `
	id, room_id, share_uuid, title, display_id, speaker, notes,
	timer_type, duration_seconds, chime_type, flash_type,
	is_manual_start, scheduled_start_at,
	is_active, is_paused, is_finished, is_stopped,
	current_time_seconds, started_at, paused_at, completed_at,
	show_title, show_speaker, show_notes,
	created_at, updated_at, deleted_at, is_deleted`

// Repository persists timers in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a timer repository over the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateTimer(ctx context.Context, req CreateTimerRequest) (*models.Timer, error) {
	chime := req.ChimeType
	if chime == "" {
		chime = models.ChimeNone
	}
	flash := req.FlashType
	if flash == "" {
		flash = models.FlashNone
	}
	manualStart := true
	if req.IsManualStart != nil {
		manualStart = *req.IsManualStart
	}
	showTitle, showSpeaker, showNotes := true, true, false
	if req.ShowTitle != nil {
		showTitle = *req.ShowTitle
	}
	if req.ShowSpeaker != nil {
		showSpeaker = *req.ShowSpeaker
	}
	if req.ShowNotes != nil {
		showNotes = *req.ShowNotes
	}

	query := `
		INSERT INTO timers (
			id, room_id, share_uuid, title, display_id, speaker, notes,
			timer_type, duration_seconds, chime_type, flash_type,
			is_manual_start, show_title, show_speaker, show_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + timerColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New(), req.RoomID, uuid.New().String(), req.Title,
		req.DisplayID, req.Speaker, req.Notes,
		req.TimerType, req.DurationSeconds, chime, flash,
		manualStart, showTitle, showSpeaker, showNotes,
	)
	tm, err := scanTimer(row)
	if err != nil {
		return nil, fmt.Errorf("create timer: %w", err)
	}
	return tm, nil
}

func (r *Repository) GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers WHERE id = $1 AND NOT is_deleted`
	tm, err := scanTimer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("get timer: %w", err)
	}
	return tm, nil
}

// GetTimerByShareUUID resolves the externally shareable token used by
// display URLs.
func (r *Repository) GetTimerByShareUUID(ctx context.Context, shareUUID string) (*models.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers WHERE share_uuid = $1 AND NOT is_deleted`
	tm, err := scanTimer(r.db.QueryRow(ctx, query, shareUUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("get timer by share uuid: %w", err)
	}
	return tm, nil
}

func (r *Repository) ListTimersByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers
		WHERE room_id = $1 AND NOT is_deleted
		ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("list timers: %w", err)
	}
	defer rows.Close()

	var out []models.Timer
	for rows.Next() {
		tm, err := scanTimer(rows)
		if err != nil {
			return nil, fmt.Errorf("list timers: %w", err)
		}
		out = append(out, *tm)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateTimer(ctx context.Context, id uuid.UUID, req UpdateTimerRequest) (*models.Timer, error) {
	query := `
		UPDATE timers SET
			title              = COALESCE($2, title),
			timer_type         = COALESCE($3, timer_type),
			duration_seconds   = COALESCE($4, duration_seconds),
			display_id         = COALESCE($5, display_id),
			speaker            = COALESCE($6, speaker),
			notes              = COALESCE($7, notes),
			chime_type         = COALESCE($8, chime_type),
			flash_type         = COALESCE($9, flash_type),
			is_manual_start    = COALESCE($10, is_manual_start),
			show_title         = COALESCE($11, show_title),
			show_speaker       = COALESCE($12, show_speaker),
			show_notes         = COALESCE($13, show_notes),
			updated_at         = now()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + timerColumns

	row := r.db.QueryRow(ctx, query, id,
		req.Title, req.TimerType, req.DurationSeconds, req.DisplayID,
		req.Speaker, req.Notes, req.ChimeType, req.FlashType,
		req.IsManualStart, req.ShowTitle, req.ShowSpeaker, req.ShowNotes,
	)
	tm, err := scanTimer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("update timer: %w", err)
	}
	return tm, nil
}

// UpdateTimerRunState persists the live run fields written by the playback
// gateway.
func (r *Repository) UpdateTimerRunState(ctx context.Context, tm *models.Timer) error {
	query := `
		UPDATE timers SET
			is_active            = $2,
			is_paused            = $3,
			is_finished          = $4,
			is_stopped           = $5,
			current_time_seconds = $6,
			started_at           = $7,
			paused_at            = $8,
			completed_at         = $9,
			updated_at           = now()
		WHERE id = $1 AND NOT is_deleted`

	tag, err := r.db.Exec(ctx, query, tm.ID,
		tm.IsActive, tm.IsPaused, tm.IsFinished, tm.IsStopped,
		tm.CurrentTimeSeconds, tm.StartedAt, tm.PausedAt, tm.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update timer run state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTimerNotFound
	}
	return nil
}

func (r *Repository) SoftDeleteTimer(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE timers SET is_deleted = true, deleted_at = now() WHERE id = $1 AND NOT is_deleted`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTimerNotFound
	}
	return nil
}

// DeleteTimer permanently removes a timer row. Admin surface only.
func (r *Repository) DeleteTimer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM timers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erase timer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTimerNotFound
	}
	return nil
}

func scanTimer(row pgx.Row) (*models.Timer, error) {
	var tm models.Timer
	err := row.Scan(
		&tm.ID, &tm.RoomID, &tm.ShareUUID, &tm.Title, &tm.DisplayID, &tm.Speaker, &tm.Notes,
		&tm.TimerType, &tm.DurationSeconds, &tm.ChimeType, &tm.FlashType,
		&tm.IsManualStart, &tm.ScheduledStartAt,
		&tm.IsActive, &tm.IsPaused, &tm.IsFinished, &tm.IsStopped,
		&tm.CurrentTimeSeconds, &tm.StartedAt, &tm.PausedAt, &tm.CompletedAt,
		&tm.ShowTitle, &tm.ShowSpeaker, &tm.ShowNotes,
		&tm.CreatedAt, &tm.UpdatedAt, &tm.DeletedAt, &tm.IsDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}
