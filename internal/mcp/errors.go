package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/domain/session"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type errorMapping struct {
	target error
	code   string
	hint   string
}

// Order matters: wrapped report failures must match before generic input errors.
var errorMappings = []errorMapping{
	{session.ErrWorkspaceNotFound, "WORKSPACE_NOT_FOUND", "Call list_workspaces or setup_edge_session"},
	{session.ErrSessionNotFound, "EDGE_SESSION_NOT_FOUND", "Call list_edge_sessions for available recordings"},
	{session.ErrUnknownTag, "UNKNOWN_TAG", "Use a tag listed in the workspace view"},
	{session.ErrPlayerUnavailable, "PLAYER_UNAVAILABLE", "Call player_choices for the tag"},
	{session.ErrOutsideRecording, "OUTSIDE_RECORDING", "Keep bounds within the raw recording"},
	{session.ErrInvalidInput, "INVALID_INPUT", ""},
	{event.ErrEventNotFound, "EVENT_NOT_FOUND", "Check the event id or omit it to create a new event"},

	{segment.ErrSegmentNotFound, "SEGMENT_NOT_FOUND", "Check kind and segment_id in the workspace view"},
	{segment.ErrInvalidKind, "INVALID_SEGMENT_KIND", "Use kind period or drill"},
	{segment.ErrOutOfBounds, "SEGMENT_OUT_OF_BOUNDS", "Stay within the bounds returned for the segment"},
	{segment.ErrSegmentDisabled, "SEGMENT_DISABLED", "Set the previous segment's end first"},
	{segment.ErrSegmentLocked, "SEGMENT_LOCKED", "Unlock the segment before editing"},
	{segment.ErrIncomplete, "SEGMENT_INCOMPLETE", "Set start and end before locking"},
	{segment.ErrNotDeletable, "SEGMENT_NOT_DELETABLE", ""},
	{segment.ErrAppendNotAllowed, "APPEND_NOT_ALLOWED", "Lock the full session and leave at least one minute after the last segment"},
	{segment.ErrFullSessionLocked, "FULL_SESSION_LOCKED", "Unlock the full session before trimming"},

	{roster.ErrTagInUse, "TAG_IN_USE", ""},
	{roster.ErrInvalidInput, "INVALID_INPUT", ""},

	{report.ErrMissingOpponent, "MISSING_OPPONENT", "Call set_event_details"},
	{report.ErrMissingScore, "MISSING_SCORE", "Call set_event_details"},
	{report.ErrMissingCategory, "MISSING_CATEGORY", "Call set_event_details"},
	{report.ErrNothingToReport, "NOTHING_TO_REPORT", "Lock at least one period or drill"},
	{report.ErrReportInProgress, "REPORT_IN_PROGRESS", "Call report_status or cancel_report"},
	{report.ErrNoActiveReport, "NO_ACTIVE_REPORT", "Call generate_report"},
	{report.ErrReportTimeout, "REPORT_TIMEOUT", "Retry generate_report"},
	{report.ErrReportFailed, "REPORT_FAILED", "Check the Edge device connection and retry"},
	{report.ErrUnexpectedResponse, "UNEXPECTED_REPORT_RESPONSE", "Retry generate_report"},
	{report.ErrCancelled, "REPORT_CANCELLED", ""},
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// without a stable code.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return &APIError{Code: m.code, Message: err.Error(), RecoveryHint: m.hint}
		}
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func invalidParams(err error) *APIError {
	return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check the tool input schema"}
}
