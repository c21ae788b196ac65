package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service handles roster operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new roster service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// AddRequest describes a roster upsert.
type AddRequest struct {
	ID   string
	Name string
	Tag  string
}

// List returns the team roster.
func (s *Service) List(ctx context.Context, teamID string) ([]Player, error) {
	players, err := s.repo.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing roster: %w", err)
	}
	return players, nil
}

// Add creates or updates a roster player. A stored tag must be unique within
// the team.
func (s *Service) Add(ctx context.Context, teamID string, req AddRequest) (*Player, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(teamID) == "" {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	if req.Tag != "" {
		players, err := s.repo.List(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("listing roster: %w", err)
		}
		for _, p := range players {
			if p.Tag == req.Tag && p.ID != id {
				return nil, ErrTagInUse
			}
		}
	}

	p := &Player{
		ID:        id,
		TeamID:    teamID,
		Name:      strings.TrimSpace(req.Name),
		Tag:       strings.TrimSpace(req.Tag),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Upsert(ctx, teamID, p); err != nil {
		return nil, fmt.Errorf("saving player: %w", err)
	}
	s.logger.Debug("roster player saved", "team_id", teamID, "player_id", p.ID)
	return p, nil
}
