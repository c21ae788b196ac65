package report

import (
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
)

// WholeGameName is the name of the synthetic whole-game segment, which is
// never sent as a drill.
const WholeGameName = "fullGame"

// Drill is one reported window, relative to the full-session start.
type Drill struct {
	DrillName string `json:"drillName"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
}

// Request is the body submitted to the report job endpoint.
type Request struct {
	SessionID    string            `json:"sessionId"`
	Drills       []Drill           `json:"drills"`
	Players      map[string]string `json:"players"`
	IsHockey     bool              `json:"isHockey"`
	Gender       string            `json:"gender,omitempty"`
	Description  string            `json:"description,omitempty"`
	SessionStart int64             `json:"sessionStart"`
	SessionEnd   int64             `json:"sessionEnd"`
}

// Response is any reply of the report job endpoint. Exactly one of the
// pending or complete shapes is expected.
type Response struct {
	GameID    string         `json:"gameId,omitempty"`
	Message   string         `json:"message,omitempty"`
	Stats     map[string]any `json:"stats,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
}

// Pending job messages.
const (
	MessageReportNotFound = "Report not found"
	MessageNoMappingFile  = "No mapping file found"
)

// IsComplete reports whether the response carries stats.
func (r *Response) IsComplete() bool {
	return r != nil && r.Stats != nil
}

// IsPending reports whether the job was accepted but has not finished.
func (r *Response) IsPending() bool {
	if r == nil || r.Stats != nil {
		return false
	}
	switch r.Message {
	case MessageReportNotFound, MessageNoMappingFile:
		return true
	case "":
		return r.GameID != ""
	}
	return false
}

// BuildInput is everything a request is assembled from.
type BuildInput struct {
	SessionID      string
	RecordingStart int64
	Event          *event.Event
	Board          *segment.Board
	Inclusion      roster.Inclusion
	Players        []roster.Player
}

// BuildRequest assembles the job body from the locked periods and drills and
// the included players.
func BuildRequest(in BuildInput) (Request, error) {
	fullStart := in.Board.FullStart()

	var drills []Drill
	for _, seg := range in.Board.Segments() {
		if !seg.Locked || !seg.IsComplete() || seg.Name == WholeGameName {
			continue
		}
		drills = append(drills, Drill{
			DrillName: seg.DisplayName(),
			Start:     *seg.StartTimestamp - fullStart,
			End:       *seg.EndTimestamp - fullStart,
		})
	}
	if len(drills) == 0 {
		return Request{}, ErrNothingToReport
	}

	players := make(map[string]string)
	for tag, a := range in.Inclusion {
		if !a.Included {
			continue
		}
		if p, ok := roster.FindPlayer(in.Players, a.PlayerID); ok {
			players[tag] = p.Name
		}
	}

	req := Request{
		SessionID:    in.SessionID,
		Drills:       drills,
		Players:      players,
		SessionStart: fullStart - in.RecordingStart,
		SessionEnd:   in.Board.FullEnd() - in.RecordingStart,
	}
	if in.Event != nil {
		req.IsHockey = in.Event.Sport == event.SportHockey
		req.Gender = in.Event.Gender
		req.Description = in.Event.Description
	}
	return req, nil
}
