package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/repository"
)

// Service handles Edge session import and workspace editing.
type Service struct {
	workspaces WorkspaceRepository
	events     event.Repository
	players    RosterReader
	edge       EdgeSource
	journal    Journal
	runner     ReportRunner
	tracker    *report.Tracker
	logger     *slog.Logger
	loc        *time.Location

	// serializes load-modify-save of workspaces
	mu sync.Mutex
}

// NewService creates a new session service.
func NewService(
	workspaces WorkspaceRepository,
	events event.Repository,
	players RosterReader,
	edge EdgeSource,
	journal Journal,
	runner ReportRunner,
	tracker *report.Tracker,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if tracker == nil {
		tracker = report.NewTracker(logger)
	}
	return &Service{
		workspaces: workspaces,
		events:     events,
		players:    players,
		edge:       edge,
		journal:    journal,
		runner:     runner,
		tracker:    tracker,
		logger:     logger,
		loc:        time.UTC,
	}
}

// WithLocation sets the zone used for clock labels and event times.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// SetupRequest describes a workspace setup.
type SetupRequest struct {
	SessionID string
	// EventID attaches the workspace to an existing event. Empty means an
	// event is created when a report is generated.
	EventID string
	Details Details
}

// ListSessions returns the recordings available on the Edge device.
func (s *Service) ListSessions(ctx context.Context) ([]Summary, error) {
	list, err := s.edge.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing edge sessions: %w", err)
	}
	return list, nil
}

// ListWorkspaces returns the team's workspaces.
func (s *Service) ListWorkspaces(ctx context.Context, teamID string) ([]WorkspaceSummary, error) {
	return s.workspaces.List(ctx, teamID)
}

// Setup imports a raw session into a new workspace. Match periods are seeded
// from the sport and tags are matched against the roster.
func (s *Service) Setup(ctx context.Context, teamID string, req SetupRequest) (*View, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, ErrInvalidInput
	}

	raw, err := s.edge.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("loading edge session: %w", err)
	}
	if raw.EndTimestamp-raw.StartTimestamp < segment.Minute {
		return nil, fmt.Errorf("%w: recording shorter than one minute", ErrInvalidInput)
	}

	details := req.Details
	var stored []segment.Segment
	if req.EventID != "" {
		ev, err := s.events.Get(ctx, teamID, req.EventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, event.ErrEventNotFound
			}
			return nil, fmt.Errorf("loading event: %w", err)
		}
		details = detailsFromEvent(ev)
		stored = ev.Segments
	}
	if err := normalizeDetails(&details); err != nil {
		return nil, err
	}

	players, err := s.players.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing roster: %w", err)
	}

	board := segment.NewBoard(raw.StartTimestamp, raw.EndTimestamp)
	if details.Kind == event.KindMatch {
		board.SeedPeriods(details.Sport.PeriodNames())
	}
	if len(stored) > 0 {
		board.Restore(stored)
	}

	now := time.Now()
	ws := &Workspace{
		ID:           uuid.NewString(),
		TeamID:       teamID,
		RawSessionID: raw.ID,
		Raw:          *raw,
		EventID:      req.EventID,
		Details:      details,
		Board:        board,
		Inclusion:    roster.SeedInclusion(raw.Players, players),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ws.RawSessionID == "" {
		ws.RawSessionID = req.SessionID
		ws.Raw.ID = req.SessionID
	}

	if err := s.workspaces.Create(ctx, teamID, ws); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	s.logger.Info("workspace created", "team_id", teamID, "workspace_id", ws.ID, "session_id", ws.RawSessionID, "matched_tags", len(ws.Inclusion))
	s.record(ctx, ws, journal.TypeWorkspaceCreated, fmt.Sprintf("imported session %s", ws.RawSessionID), map[string]any{"event_id": ws.EventID})
	return s.view(ws), nil
}

// Get returns the workspace view.
func (s *Service) Get(ctx context.Context, teamID, id string) (*View, error) {
	ws, err := s.load(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	return s.view(ws), nil
}

// Load returns the stored workspace.
func (s *Service) Load(ctx context.Context, teamID, id string) (*Workspace, error) {
	return s.load(ctx, teamID, id)
}

// UpdateDetails edits the event fields of the workspace.
func (s *Service) UpdateDetails(ctx context.Context, teamID, id string, patch DetailsPatch) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		patch.apply(&ws.Details)
		return "", nil
	})
}

// TrimFullSession sets the full-session bounds inside the raw recording.
func (s *Service) TrimFullSession(ctx context.Context, teamID, id string, start, end int64) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if start < ws.Raw.StartTimestamp || end > ws.Raw.EndTimestamp {
			return "", fmt.Errorf("%w: [%d, %d] not within [%d, %d]", ErrOutsideRecording, start, end, ws.Raw.StartTimestamp, ws.Raw.EndTimestamp)
		}
		if err := ws.Board.SetFullSessionBounds(start, end); err != nil {
			return "", err
		}
		return journal.TypeEnvelopeTrimmed, nil
	})
}

// LockFullSession locks or unlocks the full-session envelope.
func (s *Service) LockFullSession(ctx context.Context, teamID, id string, locked bool) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		ws.Board.SetFullSessionLocked(locked)
		return journal.TypeEnvelopeLocked, nil
	})
}

// MarkDrill appends a new drill after the last segment.
func (s *Service) MarkDrill(ctx context.Context, teamID, id, name, label string) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if _, err := ws.Board.AppendDrill(name, label); err != nil {
			return "", err
		}
		return journal.TypeDrillMarked, nil
	})
}

// AddPeriod appends a deletable period such as overtime.
func (s *Service) AddPeriod(ctx context.Context, teamID, id, name, label string) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if _, err := ws.Board.AddPeriod(name, label); err != nil {
			return "", err
		}
		return journal.TypePeriodAdded, nil
	})
}

// UpdateSegment edits a period or drill within its legal bounds.
func (s *Service) UpdateSegment(ctx context.Context, teamID, id string, kind segment.Kind, segmentID int, edit segment.Edit) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if _, err := ws.Board.UpdateSegment(kind, segmentID, edit); err != nil {
			return "", err
		}
		return journal.TypeSegmentUpdated, nil
	})
}

// LockSegment confirms or reopens a period or drill.
func (s *Service) LockSegment(ctx context.Context, teamID, id string, kind segment.Kind, segmentID int, locked bool) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if _, err := ws.Board.SetLocked(kind, segmentID, locked); err != nil {
			return "", err
		}
		return journal.TypeSegmentLocked, nil
	})
}

// DeleteSegment removes a deletable period or drill.
func (s *Service) DeleteSegment(ctx context.Context, teamID, id string, kind segment.Kind, segmentID int) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if err := ws.Board.DeleteSegment(kind, segmentID); err != nil {
			return "", err
		}
		return journal.TypeSegmentDeleted, nil
	})
}

// PlayerChoices lists the roster players assignable to a recording tag.
func (s *Service) PlayerChoices(ctx context.Context, teamID, id, tag string) ([]roster.Player, error) {
	ws, err := s.load(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if _, ok := ws.Raw.Players[tag]; !ok {
		return nil, ErrUnknownTag
	}
	players, err := s.players.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing roster: %w", err)
	}
	return roster.AvailableChoices(tag, players, ws.Raw.Players, ws.Inclusion), nil
}

// AssignPlayer maps a recording tag to a roster player and includes it.
func (s *Service) AssignPlayer(ctx context.Context, teamID, id, tag, playerID string) (*View, error) {
	players, err := s.players.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing roster: %w", err)
	}
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if _, ok := ws.Raw.Players[tag]; !ok {
			return "", ErrUnknownTag
		}
		available := false
		for _, p := range roster.AvailableChoices(tag, players, ws.Raw.Players, ws.Inclusion) {
			if p.ID == playerID {
				available = true
				break
			}
		}
		if !available {
			return "", ErrPlayerUnavailable
		}
		ws.Inclusion = roster.SetAssignment(ws.Inclusion, tag, playerID)
		return journal.TypePlayerAssigned, nil
	})
}

// SetPlayerIncluded toggles whether an assigned tag is reported. Unassigned
// tags are left unchanged.
func (s *Service) SetPlayerIncluded(ctx context.Context, teamID, id, tag string, included bool) (*View, error) {
	return s.mutate(ctx, teamID, id, func(ws *Workspace) (journal.EntryType, error) {
		if _, ok := ws.Raw.Players[tag]; !ok {
			return "", ErrUnknownTag
		}
		inc, changed := roster.SetIncluded(ws.Inclusion, tag, included)
		if !changed {
			return "", nil
		}
		ws.Inclusion = inc
		return journal.TypePlayerIncluded, nil
	})
}

func (s *Service) load(ctx context.Context, teamID, id string) (*Workspace, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	ws, err := s.workspaces.Get(ctx, teamID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("loading workspace: %w", err)
	}
	if ws.Board == nil {
		ws.Board = segment.NewBoard(ws.Raw.StartTimestamp, ws.Raw.EndTimestamp)
	}
	if ws.Inclusion == nil {
		ws.Inclusion = roster.Inclusion{}
	}
	return ws, nil
}

// mutate loads a workspace, applies fn and saves it. fn returns the journal
// entry type, or "" when nothing worth journaling changed.
func (s *Service) mutate(ctx context.Context, teamID, id string, fn func(ws *Workspace) (journal.EntryType, error)) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, err := s.load(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	typ, err := fn(ws)
	if err != nil {
		return nil, err
	}

	ws.UpdatedAt = time.Now()
	if err := s.workspaces.Update(ctx, teamID, ws); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("saving workspace: %w", err)
	}
	if typ != "" {
		s.record(ctx, ws, typ, strings.ReplaceAll(string(typ), "_", " "), nil)
	}
	return s.view(ws), nil
}

func (s *Service) record(ctx context.Context, ws *Workspace, typ journal.EntryType, summary string, details any) {
	if s.journal == nil {
		return
	}
	s.journal.Record(ctx, ws.TeamID, ws.ID, typ, summary, details)
}

func (s *Service) view(ws *Workspace) *View {
	b := ws.Board
	v := &View{
		ID:           ws.ID,
		RawSessionID: ws.RawSessionID,
		EventID:      ws.EventID,
		Details:      ws.Details,
		FullSession:  b.Full,
		Periods:      segmentViews(b, segment.KindPeriod, b.Periods),
		Drills:       segmentViews(b, segment.KindDrill, b.Drills),
		CanAppend:    b.CanAppend(),
		Inclusion:    ws.Inclusion,
	}
	for tag := range ws.Raw.Players {
		v.Tags = append(v.Tags, tag)
	}
	sort.Strings(v.Tags)
	return v
}

func segmentViews(b *segment.Board, kind segment.Kind, list []segment.Segment) []SegmentView {
	out := make([]SegmentView, 0, len(list))
	for _, seg := range list {
		sv := SegmentView{Segment: seg}
		if bounds, err := b.Bounds(kind, seg.ID); err == nil {
			sv.Bounds = bounds
		}
		if d, ok := segment.Duration(seg); ok {
			minutes := d.Milliseconds() / segment.Minute
			sv.DurationMinutes = &minutes
		}
		out = append(out, sv)
	}
	return out
}

func normalizeDetails(d *Details) error {
	if d.Kind == "" {
		d.Kind = event.KindTraining
	}
	switch d.Kind {
	case event.KindMatch:
		if d.Sport == "" {
			d.Sport = event.SportFootball
		}
		if !d.Sport.Valid() {
			return fmt.Errorf("%w: unknown sport %q", ErrInvalidInput, d.Sport)
		}
	case event.KindTraining:
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, d.Kind)
	}
	return nil
}
