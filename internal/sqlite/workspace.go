package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rpggio/edgeline/internal/domain/session"
	"github.com/rpggio/edgeline/internal/repository"
)

// WorkspaceRepository implements session.WorkspaceRepository for SQLite.
// The editing state is stored as one JSON document per workspace.
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create inserts a new workspace
func (r *WorkspaceRepository) Create(ctx context.Context, teamID string, ws *session.Workspace) error {
	ws.TeamID = teamID
	state, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}

	query := `
		INSERT INTO workspaces (id, team_id, raw_session_id, event_id, kind, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		ws.ID,
		teamID,
		ws.RawSessionID,
		ws.EventID,
		ws.Details.Kind,
		string(state),
		ws.CreatedAt,
		ws.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

// Get retrieves a workspace by ID
func (r *WorkspaceRepository) Get(ctx context.Context, teamID, id string) (*session.Workspace, error) {
	var state string
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM workspaces WHERE id = ? AND team_id = ?`,
		id, teamID,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	var ws session.Workspace
	if err := json.Unmarshal([]byte(state), &ws); err != nil {
		return nil, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return &ws, nil
}

// Update replaces the stored workspace state
func (r *WorkspaceRepository) Update(ctx context.Context, teamID string, ws *session.Workspace) error {
	state, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}

	query := `
		UPDATE workspaces
		SET event_id = ?, kind = ?, state = ?, updated_at = ?
		WHERE id = ? AND team_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		ws.EventID,
		ws.Details.Kind,
		string(state),
		ws.UpdatedAt,
		ws.ID,
		teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
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

// List returns workspace summaries, most recently updated first
func (r *WorkspaceRepository) List(ctx context.Context, teamID string) ([]session.WorkspaceSummary, error) {
	query := `
		SELECT id, raw_session_id, event_id, kind, updated_at
		FROM workspaces
		WHERE team_id = ?
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var list []session.WorkspaceSummary
	for rows.Next() {
		var s session.WorkspaceSummary
		if err := rows.Scan(&s.ID, &s.RawSessionID, &s.EventID, &s.Kind, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspace rows: %w", err)
	}

	return list, nil
}
