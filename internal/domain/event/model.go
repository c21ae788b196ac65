package event

import (
	"time"

	"github.com/rpggio/edgeline/internal/domain/segment"
)

// Kind distinguishes matches from training sessions.
type Kind string

const (
	KindMatch    Kind = "match"
	KindTraining Kind = "training"
)

// Sport selects the fixed period structure of a match.
type Sport string

const (
	SportFootball Sport = "football"
	SportHockey   Sport = "hockey"
)

// PeriodNames returns the period names seeded for a match of this sport.
func (s Sport) PeriodNames() []string {
	switch s {
	case SportHockey:
		return []string{"preMatch", "firstPeriod", "secondPeriod", "thirdPeriod"}
	default:
		return []string{"preMatch", "firstHalf", "secondHalf"}
	}
}

// Valid reports whether the sport is known.
func (s Sport) Valid() bool {
	return s == SportFootball || s == SportHockey
}

// Status is the outcome stamped on a finalized event.
type Status string

const (
	StatusWin       Status = "win"
	StatusLoss      Status = "loss"
	StatusDraw      Status = "draw"
	StatusPlayed    Status = "played"
	StatusCompleted Status = "completed"
)

// Event is the persisted training or match record a report is merged into.
type Event struct {
	ID               string            `json:"id"`
	TeamID           string            `json:"team_id"`
	Kind             Kind              `json:"kind"`
	Sport            Sport             `json:"sport"`
	Opponent         string            `json:"opponent,omitempty"`
	HomeScore        string            `json:"home_score,omitempty"`
	AwayScore        string            `json:"away_score,omitempty"`
	TrainingCategory string            `json:"training_category,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	Description      string            `json:"description,omitempty"`
	UTCDate          string            `json:"utc_date,omitempty"`
	StartTime        string            `json:"start_time,omitempty"`
	EndTime          string            `json:"end_time,omitempty"`
	Status           Status            `json:"status,omitempty"`
	IsFinal          bool              `json:"is_final"`
	IsFullReport     bool              `json:"is_full_report"`
	GameID           string            `json:"game_id,omitempty"`
	Report           map[string]any    `json:"report,omitempty"`
	ReportTimestamp  int64             `json:"report_timestamp,omitempty"`
	Segments         []segment.Segment `json:"segments,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Patch is a merge-update: nil fields leave the stored value untouched.
type Patch struct {
	Opponent         *string
	HomeScore        *string
	AwayScore        *string
	TrainingCategory *string
	Gender           *string
	Description      *string
	UTCDate          *string
	StartTime        *string
	EndTime          *string
	Status           *Status
	IsFinal          *bool
	IsFullReport     *bool
	GameID           *string
	Report           map[string]any
	ReportTimestamp  *int64
	Segments         []segment.Segment
}

// Apply merges the patch into ev.
func (p Patch) Apply(ev *Event) {
	setString(&ev.Opponent, p.Opponent)
	setString(&ev.HomeScore, p.HomeScore)
	setString(&ev.AwayScore, p.AwayScore)
	setString(&ev.TrainingCategory, p.TrainingCategory)
	setString(&ev.Gender, p.Gender)
	setString(&ev.Description, p.Description)
	setString(&ev.UTCDate, p.UTCDate)
	setString(&ev.StartTime, p.StartTime)
	setString(&ev.EndTime, p.EndTime)
	setString(&ev.GameID, p.GameID)
	if p.Status != nil {
		ev.Status = *p.Status
	}
	if p.IsFinal != nil {
		ev.IsFinal = *p.IsFinal
	}
	if p.IsFullReport != nil {
		ev.IsFullReport = *p.IsFullReport
	}
	if p.Report != nil {
		ev.Report = p.Report
	}
	if p.ReportTimestamp != nil {
		ev.ReportTimestamp = *p.ReportTimestamp
	}
	if p.Segments != nil {
		ev.Segments = p.Segments
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
