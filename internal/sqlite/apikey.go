package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rpggio/edgeline/internal/repository"
)

// APIKeyRepository stores hashed bearer tokens and the team they grant
// access to.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Add stores the hash of key for teamID
func (r *APIKeyRepository) Add(ctx context.Context, teamID, key, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, team_id, created_at, description) VALUES (?, ?, ?, ?)`,
		hashToken(key), teamID, time.Now(), description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolveTeam returns the team of a bearer token and stamps its last use
func (r *APIKeyRepository) ResolveTeam(ctx context.Context, key string) (string, error) {
	hash := hashToken(key)

	var teamID string
	err := r.db.QueryRowContext(ctx, `SELECT team_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&teamID)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now(), hash); err != nil {
		return "", fmt.Errorf("failed to stamp api key: %w", err)
	}
	return teamID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
