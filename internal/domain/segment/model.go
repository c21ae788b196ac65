package segment

import "time"

// Kind distinguishes the full-session envelope from fixed periods and free-form drills.
type Kind string

const (
	KindFullSession Kind = "full_session"
	KindPeriod      Kind = "period"
	KindDrill       Kind = "drill"
)

// Minute is the edit granularity in milliseconds.
const Minute int64 = 60_000

// FullSessionName is the semantic key of the envelope segment.
const FullSessionName = "fullSession"

// Segment is one marked interval of a recording. Timestamps are epoch milliseconds.
type Segment struct {
	ID             int    `json:"id"`
	Kind           Kind   `json:"kind"`
	Name           string `json:"name"`
	Label          string `json:"label,omitempty"`
	StartTimestamp *int64 `json:"start_timestamp,omitempty"`
	EndTimestamp   *int64 `json:"end_timestamp,omitempty"`
	Locked         bool   `json:"locked"`
	Deletable      bool   `json:"deletable"`
}

// New creates an unlocked segment with both endpoints unset.
func New(id int, name, label string, kind Kind, deletable bool) Segment {
	return Segment{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Label:     label,
		Deletable: deletable && kind != KindFullSession,
	}
}

// IsPeriod reports whether the segment is a fixed match period.
func (s Segment) IsPeriod() bool {
	return s.Kind == KindPeriod
}

// DisplayName returns the label when set, otherwise the name.
func (s Segment) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// IsComplete reports whether both endpoints are set.
func (s Segment) IsComplete() bool {
	return s.StartTimestamp != nil && s.EndTimestamp != nil
}

// Duration returns the whole-minute length of the segment. Both endpoints are
// floored to the minute before subtracting.
func Duration(s Segment) (time.Duration, bool) {
	if !s.IsComplete() {
		return 0, false
	}
	floored := floorMinute(*s.EndTimestamp) - floorMinute(*s.StartTimestamp)
	return time.Duration(floored) * time.Millisecond, true
}

// Overlaps reports whether two complete segments intersect. Incomplete
// segments never overlap anything.
func Overlaps(a, b Segment) bool {
	if !a.IsComplete() || !b.IsComplete() {
		return false
	}
	return *a.StartTimestamp < *b.EndTimestamp && *b.StartTimestamp < *a.EndTimestamp
}

func (s Segment) clone() Segment {
	if s.StartTimestamp != nil {
		s.StartTimestamp = ptr(*s.StartTimestamp)
	}
	if s.EndTimestamp != nil {
		s.EndTimestamp = ptr(*s.EndTimestamp)
	}
	return s
}

func floorMinute(ms int64) int64 {
	floored := ms - ms%Minute
	if ms < 0 && ms%Minute != 0 {
		floored -= Minute
	}
	return floored
}

func ptr(v int64) *int64 {
	return &v
}
