package mcp

import (
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/domain/session"
)

type WorkspaceParams struct {
	WorkspaceID string `json:"workspace_id"`
}

type SetupEdgeSessionParams struct {
	SessionID        string      `json:"session_id"`
	EventID          string      `json:"event_id,omitempty"`
	Kind             event.Kind  `json:"kind,omitempty"`
	Sport            event.Sport `json:"sport,omitempty"`
	Opponent         string      `json:"opponent,omitempty"`
	HomeScore        string      `json:"home_score,omitempty"`
	AwayScore        string      `json:"away_score,omitempty"`
	TrainingCategory string      `json:"training_category,omitempty"`
	Gender           string      `json:"gender,omitempty"`
	Description      string      `json:"description,omitempty"`
}

type SetEventDetailsParams struct {
	WorkspaceID      string  `json:"workspace_id"`
	Opponent         *string `json:"opponent,omitempty"`
	HomeScore        *string `json:"home_score,omitempty"`
	AwayScore        *string `json:"away_score,omitempty"`
	TrainingCategory *string `json:"training_category,omitempty"`
	Gender           *string `json:"gender,omitempty"`
	Description      *string `json:"description,omitempty"`
}

type TrimFullSessionParams struct {
	WorkspaceID    string `json:"workspace_id"`
	StartTimestamp int64  `json:"start_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
}

type LockParams struct {
	WorkspaceID string `json:"workspace_id"`
	Locked      *bool  `json:"locked,omitempty"`
}

type NamedSegmentParams struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name,omitempty"`
	Label       string `json:"label,omitempty"`
}

type SegmentParams struct {
	WorkspaceID string       `json:"workspace_id"`
	Kind        segment.Kind `json:"kind"`
	SegmentID   int          `json:"segment_id"`
}

type UpdateSegmentParams struct {
	SegmentParams
	StartTimestamp *int64 `json:"start_timestamp,omitempty"`
	EndTimestamp   *int64 `json:"end_timestamp,omitempty"`
}

type LockSegmentParams struct {
	SegmentParams
	Locked *bool `json:"locked,omitempty"`
}

type TagParams struct {
	WorkspaceID string `json:"workspace_id"`
	Tag         string `json:"tag"`
}

type AssignPlayerParams struct {
	TagParams
	PlayerID string `json:"player_id"`
}

type SetPlayerIncludedParams struct {
	TagParams
	Included bool `json:"included"`
}

type ReportStatusParams struct {
	WorkspaceID string `json:"workspace_id"`
	WaitSeconds int    `json:"wait_seconds,omitempty"`
}

type WorkspaceHistoryParams struct {
	WorkspaceID string `json:"workspace_id"`
	Limit       int    `json:"limit,omitempty"`
}

type AddPlayerParams struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
}

type ListEdgeSessionsResponse struct {
	Sessions []session.Summary `json:"sessions"`
}

type ListWorkspacesResponse struct {
	Workspaces []session.WorkspaceSummary `json:"workspaces"`
}

type PlayerChoicesResponse struct {
	Tag     string          `json:"tag"`
	Players []roster.Player `json:"players"`
}

type ListRosterResponse struct {
	Players []roster.Player `json:"players"`
}

type ReportStatusResponse struct {
	report.Attempt
	Done bool `json:"done"`
}

type WorkspaceHistoryResponse struct {
	Entries []journal.Entry `json:"entries"`
}

type PingResponse struct {
	Message string `json:"message"`
	TeamID  string `json:"team_id"`
}
