package session

import "errors"

var (
	// ErrWorkspaceNotFound indicates the workspace doesn't exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrSessionNotFound indicates the Edge device has no such session.
	ErrSessionNotFound = errors.New("edge session not found")
	// ErrInvalidInput indicates invalid workspace input.
	ErrInvalidInput = errors.New("invalid workspace input")
	// ErrUnknownTag indicates the tag is not part of the recording.
	ErrUnknownTag = errors.New("tag not present in recording")
	// ErrPlayerUnavailable indicates the player is assigned to another tag or not on the roster.
	ErrPlayerUnavailable = errors.New("player not available for tag")
	// ErrOutsideRecording indicates full-session bounds outside the raw recording.
	ErrOutsideRecording = errors.New("bounds outside recording")
)
