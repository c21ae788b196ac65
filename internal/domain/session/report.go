package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/edgeline/internal/domain/activity"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/repository"
)

// ActivityChart returns the activity series re-timed to the current
// full-session envelope.
func (s *Service) ActivityChart(ctx context.Context, teamID, id string) (*activity.Chart, error) {
	ws, err := s.load(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	chart := activity.BuildChart(ws.Raw.ActivityGraph, ws.Raw.StartTimestamp, ws.Board.FullStart(), ws.Board.FullEnd(), s.loc)
	return &chart, nil
}

// History lists the workspace journal, newest first.
func (s *Service) History(ctx context.Context, teamID, id string, limit int) ([]journal.Entry, error) {
	if _, err := s.load(ctx, teamID, id); err != nil {
		return nil, err
	}
	if s.journal == nil {
		return nil, nil
	}
	entries, err := s.journal.Recent(ctx, teamID, journal.ListOptions{WorkspaceID: id, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

// GenerateReport validates the workspace and starts a report attempt in the
// background. Without an attached event one is created first; it is deleted
// again if the attempt is cancelled.
func (s *Service) GenerateReport(ctx context.Context, teamID, id string) (report.Attempt, error) {
	if s.runner == nil {
		return report.Attempt{}, errors.New("report generation not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ws, err := s.load(ctx, teamID, id)
	if err != nil {
		return report.Attempt{}, err
	}
	if st, ok := s.tracker.Status(ws.ID); ok && st.FinishedAt == nil {
		return st, report.ErrReportInProgress
	}

	if err := report.Validate(ws.event()); err != nil {
		return report.Attempt{}, err
	}
	players, err := s.players.List(ctx, teamID)
	if err != nil {
		return report.Attempt{}, fmt.Errorf("listing roster: %w", err)
	}
	in := report.BuildInput{
		SessionID:      ws.RawSessionID,
		RecordingStart: ws.Raw.StartTimestamp,
		Event:          ws.event(),
		Board:          ws.Board.Clone(),
		Inclusion:      cloneInclusion(ws.Inclusion),
		Players:        players,
	}
	if _, err := report.BuildRequest(in); err != nil {
		return report.Attempt{}, err
	}

	if ws.EventID == "" {
		ev := ws.event()
		ev.ID = uuid.NewString()
		ev.CreatedAt = time.Now()
		ev.UpdatedAt = ev.CreatedAt
		if err := s.events.Create(ctx, teamID, ev); err != nil {
			return report.Attempt{}, fmt.Errorf("creating event: %w", err)
		}
		ws.EventID = ev.ID
		ws.EventCreated = true
		ws.UpdatedAt = time.Now()
		if err := s.workspaces.Update(ctx, teamID, ws); err != nil {
			return report.Attempt{}, fmt.Errorf("saving workspace: %w", err)
		}
		in.Event.ID = ev.ID
	}

	eventID := ws.EventID
	created := ws.EventCreated
	run := func(ctx context.Context, observe report.Observer) error {
		return s.runReport(ctx, ws, in, eventID, created, observe)
	}

	// journaled first so the entry precedes anything the attempt records
	s.record(ctx, ws, journal.TypeReportStarted, "report generation started", map[string]any{"event_id": eventID})
	attempt, err := s.tracker.Start(ctx, ws.ID, run)
	if err != nil {
		return attempt, err
	}
	s.logger.Info("report started", "team_id", teamID, "workspace_id", ws.ID, "event_id", eventID)
	return attempt, nil
}

func (s *Service) runReport(ctx context.Context, ws *Workspace, in report.BuildInput, eventID string, created bool, observe report.Observer) error {
	teamID := ws.TeamID
	res, err := s.runner.Generate(ctx, in, observe)
	if err != nil {
		if errors.Is(err, report.ErrCancelled) {
			// ctx is already cancelled here
			detached := context.WithoutCancel(ctx)
			s.record(detached, ws, journal.TypeReportCancelled, "report generation cancelled", nil)
			if created {
				s.discardEvent(detached, teamID, ws.ID, eventID)
			}
			return err
		}
		s.logger.Warn("report failed", "workspace_id", ws.ID, "event_id", eventID, "error", err)
		s.record(ctx, ws, journal.TypeReportFailed, err.Error(), nil)
		return err
	}

	patch := report.Merge(report.MergeInput{
		Event:     in.Event,
		Board:     in.Board,
		Inclusion: in.Inclusion,
		Players:   in.Players,
		Result:    res,
		Location:  s.loc,
	})
	if err := s.events.Merge(ctx, teamID, eventID, patch); err != nil {
		s.record(ctx, ws, journal.TypeReportFailed, "saving report failed", nil)
		return fmt.Errorf("merging report into event: %w", err)
	}
	s.record(ctx, ws, journal.TypeReportCompleted, "report merged", map[string]any{"event_id": eventID, "game_id": res.GameID})
	return nil
}

// discardEvent deletes an event created only for a cancelled attempt and
// detaches it from the workspace.
func (s *Service) discardEvent(ctx context.Context, teamID, workspaceID, eventID string) {
	if err := s.events.Delete(ctx, teamID, eventID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("deleting event failed", "event_id", eventID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.load(ctx, teamID, workspaceID)
	if err != nil {
		s.logger.Warn("loading workspace failed", "workspace_id", workspaceID, "error", err)
		return
	}
	if ws.EventID != eventID {
		return
	}
	ws.EventID = ""
	ws.EventCreated = false
	ws.UpdatedAt = time.Now()
	if err := s.workspaces.Update(ctx, teamID, ws); err != nil {
		s.logger.Warn("saving workspace failed", "workspace_id", workspaceID, "error", err)
	}
}

// ReportStatus returns the latest report attempt of the workspace.
func (s *Service) ReportStatus(ctx context.Context, teamID, id string) (report.Attempt, error) {
	if _, err := s.load(ctx, teamID, id); err != nil {
		return report.Attempt{}, err
	}
	st, ok := s.tracker.Status(id)
	if !ok {
		return report.Attempt{}, report.ErrNoActiveReport
	}
	return st, nil
}

// CancelReport stops the running report attempt of the workspace.
func (s *Service) CancelReport(ctx context.Context, teamID, id string) error {
	if _, err := s.load(ctx, teamID, id); err != nil {
		return err
	}
	return s.tracker.Cancel(id)
}

// WaitReport blocks until the running attempt finishes.
func (s *Service) WaitReport(ctx context.Context, teamID, id string) (report.Attempt, error) {
	if _, err := s.load(ctx, teamID, id); err != nil {
		return report.Attempt{}, err
	}
	return s.tracker.Wait(ctx, id)
}

func cloneInclusion(inc roster.Inclusion) roster.Inclusion {
	out := make(roster.Inclusion, len(inc))
	for k, v := range inc {
		out[k] = v
	}
	return out
}
