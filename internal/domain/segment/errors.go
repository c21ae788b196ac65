package segment

import "errors"

var (
	// ErrSegmentNotFound indicates no segment of the given kind has the id.
	ErrSegmentNotFound = errors.New("segment not found")
	// ErrInvalidKind indicates the operation does not apply to the segment kind.
	ErrInvalidKind = errors.New("invalid segment kind for operation")
	// ErrOutOfBounds indicates a timestamp outside the legal edit range.
	ErrOutOfBounds = errors.New("timestamp outside legal edit range")
	// ErrSegmentDisabled indicates the segment cannot be edited yet.
	ErrSegmentDisabled = errors.New("segment is disabled for editing")
	// ErrSegmentLocked indicates the segment is confirmed and must be unlocked first.
	ErrSegmentLocked = errors.New("segment is locked")
	// ErrIncomplete indicates a segment needs both endpoints for the operation.
	ErrIncomplete = errors.New("segment endpoints not set")
	// ErrNotDeletable indicates the segment may not be removed.
	ErrNotDeletable = errors.New("segment is not deletable")
	// ErrAppendNotAllowed indicates a new drill cannot be appended.
	ErrAppendNotAllowed = errors.New("cannot append segment")
	// ErrFullSessionLocked indicates the envelope bounds are pinned.
	ErrFullSessionLocked = errors.New("full session is locked")
)
