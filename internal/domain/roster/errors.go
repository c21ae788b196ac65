package roster

import "errors"

var (
	// ErrInvalidInput indicates invalid player input.
	ErrInvalidInput = errors.New("invalid player input")
	// ErrTagInUse indicates another roster player already stores the tag.
	ErrTagInUse = errors.New("tag already assigned to another player")
)
