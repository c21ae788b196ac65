package session

import (
	"time"

	"github.com/rpggio/edgeline/internal/domain/activity"
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
)

// Summary is one entry of the Edge device session listing.
type Summary struct {
	ID       string `json:"id"`
	Start    int64  `json:"start"`
	Duration int64  `json:"duration"`
	Report   bool   `json:"report"`
}

// RawSession is a recording pulled from the Edge device. The activity graph
// is relative to StartTimestamp.
type RawSession struct {
	ID             string                       `json:"id"`
	ActivityGraph  []activity.Point             `json:"activityGraph"`
	Duration       int64                        `json:"duration"`
	StartTimestamp int64                        `json:"startTimestamp"`
	EndTimestamp   int64                        `json:"endTimestamp"`
	Players        map[string]roster.TagSummary `json:"players"`
}

// Details are the event fields edited alongside the segments.
type Details struct {
	Kind             event.Kind  `json:"kind"`
	Sport            event.Sport `json:"sport,omitempty"`
	Opponent         string      `json:"opponent,omitempty"`
	HomeScore        string      `json:"home_score,omitempty"`
	AwayScore        string      `json:"away_score,omitempty"`
	TrainingCategory string      `json:"training_category,omitempty"`
	Gender           string      `json:"gender,omitempty"`
	Description      string      `json:"description,omitempty"`
}

// DetailsPatch updates individual details. Nil fields are left unchanged.
type DetailsPatch struct {
	Opponent         *string
	HomeScore        *string
	AwayScore        *string
	TrainingCategory *string
	Gender           *string
	Description      *string
}

// Workspace is the editing state of one imported raw session.
type Workspace struct {
	ID           string           `json:"id"`
	TeamID       string           `json:"team_id"`
	RawSessionID string           `json:"raw_session_id"`
	Raw          RawSession       `json:"raw"`
	EventID      string           `json:"event_id,omitempty"`
	EventCreated bool             `json:"event_created"`
	Details      Details          `json:"details"`
	Board        *segment.Board   `json:"board"`
	Inclusion    roster.Inclusion `json:"inclusion"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// WorkspaceSummary is a lightweight workspace listing entry.
type WorkspaceSummary struct {
	ID           string     `json:"id"`
	RawSessionID string     `json:"raw_session_id"`
	EventID      string     `json:"event_id,omitempty"`
	Kind         event.Kind `json:"kind"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SegmentView is a segment with its computed edit bounds.
type SegmentView struct {
	segment.Segment
	Bounds          segment.EditBounds `json:"bounds"`
	DurationMinutes *int64             `json:"duration_minutes,omitempty"`
}

// View is the workspace state returned to clients.
type View struct {
	ID           string           `json:"id"`
	RawSessionID string           `json:"raw_session_id"`
	EventID      string           `json:"event_id,omitempty"`
	Details      Details          `json:"details"`
	FullSession  segment.Segment  `json:"full_session"`
	Periods      []SegmentView    `json:"periods"`
	Drills       []SegmentView    `json:"drills"`
	CanAppend    bool             `json:"can_append"`
	Inclusion    roster.Inclusion `json:"inclusion"`
	Tags         []string         `json:"tags"`
}

func (w *Workspace) event() *event.Event {
	return &event.Event{
		ID:               w.EventID,
		TeamID:           w.TeamID,
		Kind:             w.Details.Kind,
		Sport:            w.Details.Sport,
		Opponent:         w.Details.Opponent,
		HomeScore:        w.Details.HomeScore,
		AwayScore:        w.Details.AwayScore,
		TrainingCategory: w.Details.TrainingCategory,
		Gender:           w.Details.Gender,
		Description:      w.Details.Description,
	}
}

func detailsFromEvent(ev *event.Event) Details {
	return Details{
		Kind:             ev.Kind,
		Sport:            ev.Sport,
		Opponent:         ev.Opponent,
		HomeScore:        ev.HomeScore,
		AwayScore:        ev.AwayScore,
		TrainingCategory: ev.TrainingCategory,
		Gender:           ev.Gender,
		Description:      ev.Description,
	}
}

func (p DetailsPatch) apply(d *Details) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&d.Opponent, p.Opponent)
	set(&d.HomeScore, p.HomeScore)
	set(&d.AwayScore, p.AwayScore)
	set(&d.TrainingCategory, p.TrainingCategory)
	set(&d.Gender, p.Gender)
	set(&d.Description, p.Description)
}
