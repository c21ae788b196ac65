package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/edgeline/internal/domain/roster"
)

// PlayerRepository implements roster.Repository for SQLite
type PlayerRepository struct {
	db *DB
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(db *DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// List returns the team roster ordered by name
func (r *PlayerRepository) List(ctx context.Context, teamID string) ([]roster.Player, error) {
	query := `
		SELECT id, team_id, name, tag, created_at
		FROM players
		WHERE team_id = ?
		ORDER BY name ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []roster.Player
	for rows.Next() {
		var p roster.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Tag, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}

	return players, nil
}

// Upsert inserts or updates a player
func (r *PlayerRepository) Upsert(ctx context.Context, teamID string, p *roster.Player) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO players (id, team_id, name, tag, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, tag = excluded.tag
		WHERE players.team_id = excluded.team_id
	`
	if _, err := r.db.ExecContext(ctx, query, p.ID, teamID, p.Name, p.Tag, p.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	p.TeamID = teamID
	return nil
}
