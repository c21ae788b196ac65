package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/edgeline/internal/domain/activity"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/domain/session"
)

// WorkspaceService defines the session import and editing operations needed by MCP.
type WorkspaceService interface {
	ListSessions(ctx context.Context) ([]session.Summary, error)
	ListWorkspaces(ctx context.Context, teamID string) ([]session.WorkspaceSummary, error)
	Setup(ctx context.Context, teamID string, req session.SetupRequest) (*session.View, error)
	Get(ctx context.Context, teamID, id string) (*session.View, error)
	UpdateDetails(ctx context.Context, teamID, id string, patch session.DetailsPatch) (*session.View, error)
	TrimFullSession(ctx context.Context, teamID, id string, start, end int64) (*session.View, error)
	LockFullSession(ctx context.Context, teamID, id string, locked bool) (*session.View, error)
	MarkDrill(ctx context.Context, teamID, id, name, label string) (*session.View, error)
	AddPeriod(ctx context.Context, teamID, id, name, label string) (*session.View, error)
	UpdateSegment(ctx context.Context, teamID, id string, kind segment.Kind, segmentID int, edit segment.Edit) (*session.View, error)
	LockSegment(ctx context.Context, teamID, id string, kind segment.Kind, segmentID int, locked bool) (*session.View, error)
	DeleteSegment(ctx context.Context, teamID, id string, kind segment.Kind, segmentID int) (*session.View, error)
	PlayerChoices(ctx context.Context, teamID, id, tag string) ([]roster.Player, error)
	AssignPlayer(ctx context.Context, teamID, id, tag, playerID string) (*session.View, error)
	SetPlayerIncluded(ctx context.Context, teamID, id, tag string, included bool) (*session.View, error)
	ActivityChart(ctx context.Context, teamID, id string) (*activity.Chart, error)
	History(ctx context.Context, teamID, id string, limit int) ([]journal.Entry, error)
	GenerateReport(ctx context.Context, teamID, id string) (report.Attempt, error)
	ReportStatus(ctx context.Context, teamID, id string) (report.Attempt, error)
	WaitReport(ctx context.Context, teamID, id string) (report.Attempt, error)
	CancelReport(ctx context.Context, teamID, id string) error
}

// RosterService defines roster operations needed by MCP.
type RosterService interface {
	List(ctx context.Context, teamID string) ([]roster.Player, error)
	Add(ctx context.Context, teamID string, req roster.AddRequest) (*roster.Player, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Workspaces WorkspaceService
	Roster     RosterService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      TeamResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultTeam   string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.DefaultTeam == "" {
		cfg.DefaultTeam = "default"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "edgeline",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only and always runs without auth.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultTeam))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services), cfg.Logger)

	return server
}
