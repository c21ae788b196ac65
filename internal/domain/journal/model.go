package journal

import "time"

// EntryType represents the kind of workspace event being journaled.
type EntryType string

const (
	TypeWorkspaceCreated EntryType = "workspace_created"
	TypeEnvelopeTrimmed  EntryType = "envelope_trimmed"
	TypeEnvelopeLocked   EntryType = "envelope_locked"
	TypeDrillMarked      EntryType = "drill_marked"
	TypePeriodAdded      EntryType = "period_added"
	TypeSegmentUpdated   EntryType = "segment_updated"
	TypeSegmentLocked    EntryType = "segment_locked"
	TypeSegmentDeleted   EntryType = "segment_deleted"
	TypePlayerAssigned   EntryType = "player_assigned"
	TypePlayerIncluded   EntryType = "player_included"
	TypeReportStarted    EntryType = "report_started"
	TypeReportCompleted  EntryType = "report_completed"
	TypeReportFailed     EntryType = "report_failed"
	TypeReportCancelled  EntryType = "report_cancelled"
)

// Entry represents one event in a workspace's edit history
type Entry struct {
	ID          int64     `json:"id"`
	TeamID      string    `json:"team_id"`
	WorkspaceID string    `json:"workspace_id"`
	Type        EntryType `json:"type"`
	Summary     string    `json:"summary"`
	Details     string    `json:"details,omitempty"` // JSON string
	CreatedAt   time.Time `json:"created_at"`
}

// ListOptions provides filtering options for listing entries.
type ListOptions struct {
	WorkspaceID string
	Type        *EntryType
	Limit       int
	Offset      int
}
