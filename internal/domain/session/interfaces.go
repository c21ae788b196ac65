package session

import (
	"context"

	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
)

// WorkspaceRepository provides persistence for workspaces.
type WorkspaceRepository interface {
	Create(ctx context.Context, teamID string, ws *Workspace) error
	Get(ctx context.Context, teamID, id string) (*Workspace, error)
	Update(ctx context.Context, teamID string, ws *Workspace) error
	List(ctx context.Context, teamID string) ([]WorkspaceSummary, error)
}

// EdgeSource reads recordings from the Edge device.
type EdgeSource interface {
	ListSessions(ctx context.Context) ([]Summary, error)
	GetSession(ctx context.Context, id string) (*RawSession, error)
}

// RosterReader lists the players of a team.
type RosterReader interface {
	List(ctx context.Context, teamID string) ([]roster.Player, error)
}

// ReportRunner runs one report-generation attempt to completion.
type ReportRunner interface {
	Generate(ctx context.Context, in report.BuildInput, observe report.Observer) (*report.Result, error)
}

// Journal records workspace history.
type Journal interface {
	Record(ctx context.Context, teamID, workspaceID string, typ journal.EntryType, summary string, details any)
	Recent(ctx context.Context, teamID string, opts journal.ListOptions) ([]journal.Entry, error)
}
