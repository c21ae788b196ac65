package journal

import "errors"

// ErrInvalidInput indicates a missing or malformed journal entry.
var ErrInvalidInput = errors.New("invalid journal entry")
