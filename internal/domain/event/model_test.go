package event_test

import (
	"testing"

	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/stretchr/testify/require"
)

func TestSport_PeriodNames(t *testing.T) {
	require.Equal(t, []string{"preMatch", "firstHalf", "secondHalf"}, event.SportFootball.PeriodNames())
	require.Equal(t, []string{"preMatch", "firstPeriod", "secondPeriod", "thirdPeriod"}, event.SportHockey.PeriodNames())
	require.False(t, event.Sport("curling").Valid())
}

func TestPatch_Apply(t *testing.T) {
	ev := &event.Event{ID: "e1", Opponent: "Rovers", Gender: "female"}
	status := event.StatusWin
	final := true
	opponent := "United"

	event.Patch{Opponent: &opponent, Status: &status, IsFinal: &final}.Apply(ev)

	require.Equal(t, "United", ev.Opponent)
	require.Equal(t, "female", ev.Gender)
	require.Equal(t, event.StatusWin, ev.Status)
	require.True(t, ev.IsFinal)
	require.False(t, ev.IsFullReport)
}
