package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/repository"
)

// EventRepository implements event.Repository for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	id, team_id, kind, sport, opponent, home_score, away_score,
	training_category, gender, description, utc_date, start_time, end_time,
	status, is_final, is_full_report, game_id, report, report_timestamp,
	segments, created_at, updated_at`

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, teamID string, ev *event.Event) error {
	now := time.Now()
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	ev.UpdatedAt = now
	ev.TeamID = teamID

	args, err := eventArgs(ev)
	if err != nil {
		return err
	}
	query := `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID
func (r *EventRepository) Get(ctx context.Context, teamID, id string) (*event.Event, error) {
	return getEvent(ctx, r.db, teamID, id)
}

// Merge applies a patch to a stored event inside a transaction
func (r *EventRepository) Merge(ctx context.Context, teamID, id string, patch event.Patch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ev, err := getEvent(ctx, tx, teamID, id)
	if err != nil {
		return err
	}
	patch.Apply(ev)
	ev.UpdatedAt = time.Now()

	args, err := eventArgs(ev)
	if err != nil {
		return err
	}
	query := `
		UPDATE events SET
			kind = ?, sport = ?, opponent = ?, home_score = ?, away_score = ?,
			training_category = ?, gender = ?, description = ?, utc_date = ?,
			start_time = ?, end_time = ?, status = ?, is_final = ?,
			is_full_report = ?, game_id = ?, report = ?, report_timestamp = ?,
			segments = ?, updated_at = ?
		WHERE id = ? AND team_id = ?
	`
	// args: id, team_id, <fields...>, created_at, updated_at
	fields := append([]any{}, args[2:len(args)-2]...)
	fields = append(fields, ev.UpdatedAt, id, teamID)
	if _, err := tx.ExecContext(ctx, query, fields...); err != nil {
		return fmt.Errorf("failed to merge event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, teamID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND team_id = ?`, id, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getEvent(ctx context.Context, q queryRower, teamID, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ? AND team_id = ?`

	var (
		ev       event.Event
		report   sql.NullString
		segments sql.NullString
	)
	err := q.QueryRowContext(ctx, query, id, teamID).Scan(
		&ev.ID,
		&ev.TeamID,
		&ev.Kind,
		&ev.Sport,
		&ev.Opponent,
		&ev.HomeScore,
		&ev.AwayScore,
		&ev.TrainingCategory,
		&ev.Gender,
		&ev.Description,
		&ev.UTCDate,
		&ev.StartTime,
		&ev.EndTime,
		&ev.Status,
		&ev.IsFinal,
		&ev.IsFullReport,
		&ev.GameID,
		&report,
		&ev.ReportTimestamp,
		&segments,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if report.Valid && report.String != "" {
		if err := json.Unmarshal([]byte(report.String), &ev.Report); err != nil {
			return nil, fmt.Errorf("failed to decode event report: %w", err)
		}
	}
	if segments.Valid && segments.String != "" {
		if err := json.Unmarshal([]byte(segments.String), &ev.Segments); err != nil {
			return nil, fmt.Errorf("failed to decode event segments: %w", err)
		}
	}
	return &ev, nil
}

func eventArgs(ev *event.Event) ([]any, error) {
	report, err := nullJSON(ev.Report != nil, ev.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event report: %w", err)
	}
	segments, err := nullJSON(ev.Segments != nil, ev.Segments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event segments: %w", err)
	}
	return []any{
		ev.ID,
		ev.TeamID,
		ev.Kind,
		ev.Sport,
		ev.Opponent,
		ev.HomeScore,
		ev.AwayScore,
		ev.TrainingCategory,
		ev.Gender,
		ev.Description,
		ev.UTCDate,
		ev.StartTime,
		ev.EndTime,
		ev.Status,
		ev.IsFinal,
		ev.IsFullReport,
		ev.GameID,
		report,
		ev.ReportTimestamp,
		segments,
		ev.CreatedAt,
		ev.UpdatedAt,
	}, nil
}

func nullJSON(present bool, v any) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}
