package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
)

// MergeInput is what a finished report is merged from.
type MergeInput struct {
	Event     *event.Event
	Board     *segment.Board
	Inclusion roster.Inclusion
	Players   []roster.Player
	Result    *Result
	Location  *time.Location
}

// Merge builds the event patch for a completed report: the workspace
// details, translated stats, computed date and time fields, outcome status
// and the locked segments.
func Merge(in MergeInput) event.Patch {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	start := time.UnixMilli(in.Board.FullStart())
	end := time.UnixMilli(in.Board.FullEnd())

	utcDate := start.UTC().Format(time.RFC3339)
	startTime := start.In(loc).Format("15:04")
	endTime := end.In(loc).Format("15:04")
	status := Outcome(in.Event)
	final := true

	var locked []segment.Segment
	for _, seg := range in.Board.Segments() {
		if seg.Locked {
			locked = append(locked, seg)
		}
	}

	patch := event.Patch{
		UTCDate:      &utcDate,
		StartTime:    &startTime,
		EndTime:      &endTime,
		Status:       &status,
		IsFinal:      &final,
		IsFullReport: &final,
		Segments:     locked,
	}
	if ev := in.Event; ev != nil {
		patch.Opponent = ptr(ev.Opponent)
		patch.HomeScore = ptr(ev.HomeScore)
		patch.AwayScore = ptr(ev.AwayScore)
		patch.TrainingCategory = ptr(ev.TrainingCategory)
		patch.Gender = ptr(ev.Gender)
		patch.Description = ptr(ev.Description)
	}
	if in.Result != nil {
		gameID := in.Result.GameID
		ts := in.Result.Timestamp
		patch.GameID = &gameID
		patch.ReportTimestamp = &ts
		patch.Report = TranslateStats(in.Result.Stats, in.Inclusion, in.Players)
	}
	return patch
}

func ptr[T any](v T) *T { return &v }

// Outcome derives the event status. Matches with numeric scores are a win,
// loss or draw from the home side's view; other matches are played and
// trainings completed.
func Outcome(ev *event.Event) event.Status {
	if ev == nil || ev.Kind != event.KindMatch {
		return event.StatusCompleted
	}
	home, errHome := strconv.Atoi(strings.TrimSpace(ev.HomeScore))
	away, errAway := strconv.Atoi(strings.TrimSpace(ev.AwayScore))
	if errHome != nil || errAway != nil {
		return event.StatusPlayed
	}
	switch {
	case home > away:
		return event.StatusWin
	case home < away:
		return event.StatusLoss
	default:
		return event.StatusDraw
	}
}

// TranslateStats rewrites every map key equal to an assigned hardware tag to
// the roster tag of the assigned player, or the player id when the player has
// no stored tag.
func TranslateStats(stats map[string]any, inc roster.Inclusion, players []roster.Player) map[string]any {
	if stats == nil {
		return nil
	}
	keys := make(map[string]string, len(inc))
	for tag, a := range inc {
		if a.PlayerID == "" {
			continue
		}
		p, ok := roster.FindPlayer(players, a.PlayerID)
		if !ok {
			continue
		}
		if p.Tag != "" {
			keys[tag] = p.Tag
		} else {
			keys[tag] = p.ID
		}
	}
	return translateMap(stats, keys)
}

func translateMap(m map[string]any, keys map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if renamed, ok := keys[k]; ok {
			k = renamed
		}
		out[k] = translateValue(v, keys)
	}
	return out
}

func translateValue(v any, keys map[string]string) any {
	switch val := v.(type) {
	case map[string]any:
		return translateMap(val, keys)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = translateValue(item, keys)
		}
		return out
	default:
		return v
	}
}
