package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/edgeline/internal/config"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/edge"
	"github.com/rpggio/edgeline/internal/sqlite"
	"github.com/spf13/cobra"
)

var (
	rosterName string
	rosterTag  string
	rosterID   string
	rosterTeam string

	apiKeyTeam        string
	apiKeyDescription string
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recordings stored on the Edge device",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	device := edge.NewClient(cfg.Edge.BaseURL, cfg.Edge.APIKey, cfg.Edge.EdgeTimeout(), nil)

	sessions, err := device.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	loc, err := cfg.Team.Location()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tDURATION\tREPORT")
	for _, s := range sessions {
		start := time.UnixMilli(s.Start).In(loc).Format("2006-01-02 15:04")
		dur := (time.Duration(s.Duration) * time.Millisecond).Round(time.Second)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", s.ID, start, dur, s.Report)
	}
	return tw.Flush()
}

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect or edit the team roster",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List players",
		Args:  cobra.NoArgs,
		RunE:  runRosterListCmd,
	}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a player",
		Args:  cobra.NoArgs,
		RunE:  runRosterAddCmd,
	}
	addCmd.Flags().StringVar(&rosterName, "name", "", "player name")
	addCmd.Flags().StringVar(&rosterTag, "tag", "", "Edge tag worn by the player")
	addCmd.Flags().StringVar(&rosterID, "id", "", "existing player id to update")
	_ = addCmd.MarkFlagRequired("name")

	cmd.PersistentFlags().StringVar(&rosterTeam, "team", "", "team id (default: team.default_id)")
	cmd.AddCommand(listCmd, addCmd)
	return cmd
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	a, err := openApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

func teamOrDefault(team string, cfg config.Config) string {
	if team != "" {
		return team
	}
	return cfg.Team.DefaultID
}

func runRosterListCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		players, err := roster.NewService(a.players, a.logger).List(ctx, teamOrDefault(rosterTeam, a.cfg))
		if err != nil {
			return err
		}
		return printPlayers(cmd.OutOrStdout(), players)
	})
}

func runRosterAddCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		p, err := roster.NewService(a.players, a.logger).Add(ctx, teamOrDefault(rosterTeam, a.cfg), roster.AddRequest{
			ID:   rosterID,
			Name: rosterName,
			Tag:  rosterTag,
		})
		if err != nil {
			return err
		}
		return printPlayers(cmd.OutOrStdout(), []roster.Player{*p})
	})
}

func printPlayers(w io.Writer, players []roster.Player) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTAG")
	for _, p := range players {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Tag)
	}
	return tw.Flush()
}

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage bearer tokens for the HTTP transport",
	}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a bearer token for a team and print it once",
		Args:  cobra.NoArgs,
		RunE:  runAPIKeyAddCmd,
	}
	addCmd.Flags().StringVar(&apiKeyTeam, "team", "", "team id (default: team.default_id)")
	addCmd.Flags().StringVar(&apiKeyDescription, "description", "", "note stored with the key")
	cmd.AddCommand(addCmd)
	return cmd
}

func runAPIKeyAddCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		key := "el_" + uuid.NewString()
		team := teamOrDefault(apiKeyTeam, a.cfg)
		if err := sqlite.NewAPIKeyRepository(a.db).Add(ctx, team, key, apiKeyDescription); err != nil {
			return fmt.Errorf("failed to add api key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "team: %s\nkey:  %s\n", team, key)
		return nil
	})
}
