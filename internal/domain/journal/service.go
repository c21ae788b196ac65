package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Service handles journal operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new journal service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Log stores an entry, stamping the current time if missing.
func (s *Service) Log(ctx context.Context, teamID string, entry *Entry) error {
	if entry == nil || entry.WorkspaceID == "" || entry.Type == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, teamID, entry); err != nil {
		return fmt.Errorf("logging journal entry: %w", err)
	}
	return nil
}

// Record logs an entry built from its parts and never fails the caller; a
// journal write error is only logged.
func (s *Service) Record(ctx context.Context, teamID, workspaceID string, typ EntryType, summary string, details any) {
	entry := &Entry{
		WorkspaceID: workspaceID,
		Type:        typ,
		Summary:     summary,
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = string(raw)
		}
	}
	if err := s.Log(ctx, teamID, entry); err != nil {
		s.logger.Warn("journal write failed", "workspace_id", workspaceID, "type", typ, "error", err)
	}
}

// Recent lists entries newest first.
func (s *Service) Recent(ctx context.Context, teamID string, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, teamID, opts)
}
