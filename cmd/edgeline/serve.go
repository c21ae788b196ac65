package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/edgeline/internal/config"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/session"
	"github.com/rpggio/edgeline/internal/edge"
	"github.com/rpggio/edgeline/internal/mcp"
	"github.com/rpggio/edgeline/internal/sqlite"
	"github.com/rpggio/edgeline/internal/transport"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio or HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		return err
	}
	defer a.Close()

	mcpServer, err := buildServer(a)
	if err != nil {
		return err
	}

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}
	return runHTTPMode(ctx, logger, mcpServer, a)
}

func buildServer(a *app) (*sdkmcp.Server, error) {
	cfg := a.cfg
	loc, err := cfg.Team.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid team timezone: %w", err)
	}

	device := edge.NewClient(cfg.Edge.BaseURL, cfg.Edge.APIKey, cfg.Edge.EdgeTimeout(), a.logger)
	orchestrator := report.NewOrchestrator(device, report.Config{
		PollInterval:         cfg.Report.PollInterval(),
		MaxPolls:             cfg.Report.MaxPolls,
		MaxTransientFailures: cfg.Report.MaxTransientFailures,
		CancelTimeout:        cfg.Report.CancelTimeout(),
	}, a.logger)

	workspaces := session.NewService(
		sqlite.NewWorkspaceRepository(a.db),
		a.events,
		a.players,
		device,
		journal.NewService(sqlite.NewJournalRepository(a.db), a.logger),
		orchestrator,
		report.NewTracker(a.logger),
		a.logger,
	).WithLocation(loc)

	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Workspaces: workspaces,
			Roster:     roster.NewService(a.players, a.logger),
		},
		Resolver:      sqlite.NewAPIKeyRepository(a.db),
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		DefaultTeam:   cfg.Team.DefaultID,
		Logger:        a.logger,
	}), nil
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or ctx is cancelled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, a *app) error {
	routerCfg := transport.RouterConfig{
		MCP:    transport.NewMCPHandler(mcpServer, logger),
		Logger: logger,
	}
	if a.cfg.Auth.Enabled {
		routerCfg.Auth = transport.AuthMiddleware(sqlite.NewAPIKeyRepository(a.db))
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", a.cfg.Auth.Enabled, "store", a.cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
