package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/domain/session"
)

// maxReportWait caps report_status wait_seconds.
const maxReportWait = 120 * time.Second

// Handler dispatches MCP tool calls to domain services.
type Handler struct {
	workspaces WorkspaceService
	roster     RosterService
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		workspaces: services.Workspaces,
		roster:     services.Roster,
	}
}

// Handle dispatches a tool call to the domain services.
func (h *Handler) Handle(ctx context.Context, teamID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "ping":
		return PingResponse{Message: "pong", TeamID: teamID}, nil

	// Edge device and workspaces
	case "list_edge_sessions":
		list, err := h.workspaces.ListSessions(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return ListEdgeSessionsResponse{Sessions: nonNil(list)}, nil
	case "list_workspaces":
		list, err := h.workspaces.ListWorkspaces(ctx, teamID)
		if err != nil {
			return nil, mapError(err)
		}
		return ListWorkspacesResponse{Workspaces: nonNil(list)}, nil
	case "setup_edge_session":
		var req SetupEdgeSessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.Setup(ctx, teamID, session.SetupRequest{
			SessionID: req.SessionID,
			EventID:   req.EventID,
			Details: session.Details{
				Kind:             req.Kind,
				Sport:            req.Sport,
				Opponent:         req.Opponent,
				HomeScore:        req.HomeScore,
				AwayScore:        req.AwayScore,
				TrainingCategory: req.TrainingCategory,
				Gender:           req.Gender,
				Description:      req.Description,
			},
		}))
	case "get_workspace":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.Get(ctx, teamID, req.WorkspaceID))
	case "set_event_details":
		var req SetEventDetailsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.UpdateDetails(ctx, teamID, req.WorkspaceID, session.DetailsPatch{
			Opponent:         req.Opponent,
			HomeScore:        req.HomeScore,
			AwayScore:        req.AwayScore,
			TrainingCategory: req.TrainingCategory,
			Gender:           req.Gender,
			Description:      req.Description,
		}))

	// Segments
	case "trim_full_session":
		var req TrimFullSessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.TrimFullSession(ctx, teamID, req.WorkspaceID, req.StartTimestamp, req.EndTimestamp))
	case "lock_full_session":
		var req LockParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.LockFullSession(ctx, teamID, req.WorkspaceID, boolOr(req.Locked, true)))
	case "mark_drill":
		var req NamedSegmentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.MarkDrill(ctx, teamID, req.WorkspaceID, req.Name, req.Label))
	case "add_period":
		var req NamedSegmentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.AddPeriod(ctx, teamID, req.WorkspaceID, req.Name, req.Label))
	case "update_segment":
		var req UpdateSegmentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.StartTimestamp == nil && req.EndTimestamp == nil {
			return nil, invalidParams(errors.New("start_timestamp or end_timestamp required"))
		}
		return wrap(h.workspaces.UpdateSegment(ctx, teamID, req.WorkspaceID, req.Kind, req.SegmentID, segment.Edit{
			StartTimestamp: req.StartTimestamp,
			EndTimestamp:   req.EndTimestamp,
		}))
	case "lock_segment":
		var req LockSegmentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.LockSegment(ctx, teamID, req.WorkspaceID, req.Kind, req.SegmentID, boolOr(req.Locked, true)))
	case "delete_segment":
		var req SegmentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.DeleteSegment(ctx, teamID, req.WorkspaceID, req.Kind, req.SegmentID))
	case "activity_chart":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.ActivityChart(ctx, teamID, req.WorkspaceID))

	// Players
	case "player_choices":
		var req TagParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		players, err := h.workspaces.PlayerChoices(ctx, teamID, req.WorkspaceID, req.Tag)
		if err != nil {
			return nil, mapError(err)
		}
		return PlayerChoicesResponse{Tag: req.Tag, Players: nonNil(players)}, nil
	case "assign_player":
		var req AssignPlayerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.AssignPlayer(ctx, teamID, req.WorkspaceID, req.Tag, req.PlayerID))
	case "set_player_included":
		var req SetPlayerIncludedParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.workspaces.SetPlayerIncluded(ctx, teamID, req.WorkspaceID, req.Tag, req.Included))
	case "list_roster":
		players, err := h.roster.List(ctx, teamID)
		if err != nil {
			return nil, mapError(err)
		}
		return ListRosterResponse{Players: nonNil(players)}, nil
	case "add_player":
		var req AddPlayerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.roster.Add(ctx, teamID, roster.AddRequest{ID: req.ID, Name: req.Name, Tag: req.Tag}))

	// Reports
	case "generate_report":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		attempt, err := h.workspaces.GenerateReport(ctx, teamID, req.WorkspaceID)
		if err != nil {
			return nil, mapError(err)
		}
		return ReportStatusResponse{Attempt: attempt, Done: attempt.FinishedAt != nil}, nil
	case "report_status":
		var req ReportStatusParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.reportStatus(ctx, teamID, req)
	case "cancel_report":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.workspaces.CancelReport(ctx, teamID, req.WorkspaceID); err != nil {
			return nil, mapError(err)
		}
		return h.reportStatus(ctx, teamID, ReportStatusParams{WorkspaceID: req.WorkspaceID, WaitSeconds: 15})
	case "workspace_history":
		var req WorkspaceHistoryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.workspaces.History(ctx, teamID, req.WorkspaceID, req.Limit)
		if err != nil {
			return nil, mapError(err)
		}
		return WorkspaceHistoryResponse{Entries: nonNil(entries)}, nil
	default:
		return nil, &APIError{Code: "UNKNOWN_TOOL", Message: fmt.Sprintf("unknown method: %s", method)}
	}
}

// reportStatus returns the latest attempt, optionally waiting for it to finish.
func (h *Handler) reportStatus(ctx context.Context, teamID string, req ReportStatusParams) (any, error) {
	if req.WaitSeconds > 0 {
		wait := min(time.Duration(req.WaitSeconds)*time.Second, maxReportWait)
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		attempt, err := h.workspaces.WaitReport(waitCtx, teamID, req.WorkspaceID)
		cancel()
		if err == nil {
			return ReportStatusResponse{Attempt: attempt, Done: attempt.FinishedAt != nil}, nil
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return nil, mapError(err)
		}
	}
	attempt, err := h.workspaces.ReportStatus(ctx, teamID, req.WorkspaceID)
	if err != nil {
		return nil, mapError(err)
	}
	return ReportStatusResponse{Attempt: attempt, Done: attempt.FinishedAt != nil}, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return invalidParams(err)
	}
	return nil
}

// wrap maps the error of a service call returning a single value.
func wrap[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
