package segment_test

import (
	"testing"

	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/stretchr/testify/require"
)

const minute = segment.Minute

func ms(v int64) *int64 { return &v }

func lockedBoard(t *testing.T, start, end int64) *segment.Board {
	t.Helper()
	b := segment.NewBoard(start, end)
	b.SetFullSessionLocked(true)
	return b
}

func requireNoOverlap(t *testing.T, list []segment.Segment) {
	t.Helper()
	for i := 1; i < len(list); i++ {
		a, b := list[i-1], list[i]
		if !a.IsComplete() || !b.IsComplete() {
			continue
		}
		require.LessOrEqual(t, *a.EndTimestamp, *b.StartTimestamp, "segments %d and %d overlap", a.ID, b.ID)
	}
}

func requireInsideEnvelope(t *testing.T, b *segment.Board) {
	t.Helper()
	for _, seg := range b.Segments() {
		if seg.StartTimestamp != nil {
			require.GreaterOrEqual(t, *seg.StartTimestamp, b.FullStart())
		}
		if seg.EndTimestamp != nil {
			require.LessOrEqual(t, *seg.EndTimestamp, b.FullEnd())
		}
	}
}

func TestBoard_AppendAndEditKeepsDrillsOrdered(t *testing.T) {
	b := lockedBoard(t, 0, 60*minute)

	ends := []int64{10 * minute, 25 * minute, 40 * minute}
	for i, end := range ends {
		drill, err := b.AppendDrill("", "")
		require.NoError(t, err)
		require.Equal(t, i, drill.ID)
		_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{EndTimestamp: ms(end)})
		require.NoError(t, err)
		requireNoOverlap(t, b.Drills)
		requireInsideEnvelope(t, b)
	}

	// drill 0 may not reach into drill 1
	_, err := b.UpdateSegment(segment.KindDrill, 0, segment.Edit{EndTimestamp: ms(15 * minute)})
	require.ErrorIs(t, err, segment.ErrOutOfBounds)

	_, err = b.UpdateSegment(segment.KindDrill, 0, segment.Edit{EndTimestamp: ms(8 * minute)})
	require.NoError(t, err)

	// drill 2 may not start before drill 1 ends
	_, err = b.UpdateSegment(segment.KindDrill, 2, segment.Edit{StartTimestamp: ms(20 * minute)})
	require.ErrorIs(t, err, segment.ErrOutOfBounds)

	_, err = b.UpdateSegment(segment.KindDrill, 2, segment.Edit{StartTimestamp: ms(30 * minute)})
	require.NoError(t, err)

	requireNoOverlap(t, b.Drills)
	requireInsideEnvelope(t, b)
}

func TestBoard_AppendIDsIncrease(t *testing.T) {
	b := lockedBoard(t, 0, 60*minute)

	var ids []int
	for i := 0; i < 4; i++ {
		drill, err := b.AppendDrill("", "")
		require.NoError(t, err)
		ids = append(ids, drill.ID)
		_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{EndTimestamp: ms(int64(i+1) * 10 * minute)})
		require.NoError(t, err)
	}

	require.Equal(t, []int{0, 1, 2, 3}, ids)
	require.Equal(t, "drill3", b.Drills[3].Name)
}

func TestBoard_AppendIDsFollowPeriods(t *testing.T) {
	b := segment.NewBoard(0, 90*minute)
	b.SeedPeriods([]string{"preMatch", "firstHalf", "secondHalf"})
	b.SetFullSessionLocked(true)

	drill, err := b.AppendDrill("warmup", "Warm up")
	require.NoError(t, err)
	require.Equal(t, 3, drill.ID)
	require.Equal(t, "Warm up", drill.DisplayName())
}

func TestBoard_LockPinsEnvelope(t *testing.T) {
	b := segment.NewBoard(0, 60*minute)
	b.SeedPeriods([]string{"preMatch", "firstHalf"})

	_, err := b.UpdateSegment(segment.KindPeriod, 0, segment.Edit{StartTimestamp: ms(5 * minute), EndTimestamp: ms(10 * minute)})
	require.NoError(t, err)
	_, err = b.UpdateSegment(segment.KindPeriod, 1, segment.Edit{StartTimestamp: ms(12 * minute), EndTimestamp: ms(50 * minute)})
	require.NoError(t, err)

	b.SetFullSessionLocked(true)
	require.Equal(t, 5*minute, b.FullStart())
	require.Equal(t, 50*minute, b.FullEnd())

	_, err = b.UpdateSegment(segment.KindPeriod, 1, segment.Edit{EndTimestamp: ms(40 * minute)})
	require.NoError(t, err)
	_, err = b.UpdateSegment(segment.KindPeriod, 0, segment.Edit{StartTimestamp: ms(6 * minute)})
	require.NoError(t, err)

	require.Equal(t, 5*minute, b.FullStart())
	require.Equal(t, 50*minute, b.FullEnd())
	require.ErrorIs(t, b.SetFullSessionBounds(0, 60*minute), segment.ErrFullSessionLocked)
}

func TestBoard_AppendEligibility(t *testing.T) {
	b := segment.NewBoard(0, 600000)
	require.False(t, b.CanAppend(), "unlocked envelope never allows append")

	b.SetFullSessionLocked(true)
	require.True(t, b.CanAppend())

	drill, err := b.AppendDrill("", "")
	require.NoError(t, err)
	require.Equal(t, int64(0), *drill.StartTimestamp)
	require.Equal(t, int64(600000), *drill.EndTimestamp)

	_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{EndTimestamp: ms(600000 - 30000)})
	require.NoError(t, err)
	require.False(t, b.CanAppend())

	_, err = b.AppendDrill("", "")
	require.ErrorIs(t, err, segment.ErrAppendNotAllowed)

	_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{EndTimestamp: ms(600000 - 60000)})
	require.NoError(t, err)
	require.True(t, b.CanAppend())
}

func TestBoard_AutoExpandsUnlockedEnvelope(t *testing.T) {
	b := segment.NewBoard(10*minute, 20*minute)
	drill := segment.New(0, "restored", "", segment.KindDrill, true)
	drill.StartTimestamp = ms(5 * minute)
	drill.EndTimestamp = ms(25 * minute)
	b.Drills = append(b.Drills, drill)

	b.Normalize()
	require.Equal(t, 5*minute, b.FullStart())
	require.Equal(t, 25*minute, b.FullEnd())

	locked := segment.NewBoard(10*minute, 20*minute)
	locked.Full.Locked = true
	locked.Drills = append(locked.Drills, drill)
	locked.Normalize()
	require.Equal(t, 10*minute, locked.FullStart())
	require.Equal(t, 20*minute, locked.FullEnd())
}

func TestBoard_PeriodsFilledInOrder(t *testing.T) {
	b := segment.NewBoard(0, 90*minute)
	b.SeedPeriods([]string{"preMatch", "firstHalf", "secondHalf"})

	bounds, err := b.Bounds(segment.KindPeriod, 1)
	require.NoError(t, err)
	require.True(t, bounds.Disabled)

	_, err = b.UpdateSegment(segment.KindPeriod, 1, segment.Edit{StartTimestamp: ms(10 * minute)})
	require.ErrorIs(t, err, segment.ErrSegmentDisabled)

	_, err = b.UpdateSegment(segment.KindPeriod, 0, segment.Edit{StartTimestamp: ms(0), EndTimestamp: ms(5 * minute)})
	require.NoError(t, err)

	bounds, err = b.Bounds(segment.KindPeriod, 1)
	require.NoError(t, err)
	require.False(t, bounds.Disabled)
	require.Equal(t, 5*minute, bounds.StartMin)
	require.Equal(t, 90*minute, bounds.EndMax)
}

func TestBoard_BoundsFromNeighbours(t *testing.T) {
	b := lockedBoard(t, 0, 60*minute)
	for _, end := range []int64{10 * minute, 30 * minute, 50 * minute} {
		drill, err := b.AppendDrill("", "")
		require.NoError(t, err)
		_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{EndTimestamp: ms(end)})
		require.NoError(t, err)
	}

	bounds, err := b.Bounds(segment.KindDrill, 1)
	require.NoError(t, err)
	require.Equal(t, segment.EditBounds{
		StartMin: 10 * minute,
		StartMax: 29 * minute,
		EndMin:   11 * minute,
		EndMax:   29 * minute,
	}, bounds)

	require.NoError(t, b.DeleteSegment(segment.KindDrill, 1))

	bounds, err = b.Bounds(segment.KindDrill, 2)
	require.NoError(t, err)
	require.Equal(t, 10*minute, bounds.StartMin)
	require.Equal(t, 60*minute, bounds.EndMax)

	bounds, err = b.Bounds(segment.KindDrill, 0)
	require.NoError(t, err)
	require.Equal(t, 29*minute, bounds.EndMax)
}

func TestBoard_DisabledWhenNoRoomLeft(t *testing.T) {
	b := segment.NewBoard(0, 10*minute)
	b.SeedPeriods([]string{"first", "second"})
	_, err := b.UpdateSegment(segment.KindPeriod, 0, segment.Edit{StartTimestamp: ms(0), EndTimestamp: ms(10*minute - 30000)})
	require.NoError(t, err)

	bounds, err := b.Bounds(segment.KindPeriod, 1)
	require.NoError(t, err)
	require.True(t, bounds.Disabled)
}

func TestBoard_DeleteRules(t *testing.T) {
	b := segment.NewBoard(0, 90*minute)
	b.SeedPeriods([]string{"preMatch"})
	require.ErrorIs(t, b.DeleteSegment(segment.KindPeriod, 0), segment.ErrNotDeletable)
	require.ErrorIs(t, b.DeleteSegment(segment.KindFullSession, 0), segment.ErrInvalidKind)
	require.ErrorIs(t, b.DeleteSegment(segment.KindDrill, 7), segment.ErrSegmentNotFound)

	overtime, err := b.AddPeriod("overtime", "Overtime")
	require.NoError(t, err)
	require.True(t, overtime.Deletable)
	require.NoError(t, b.DeleteSegment(segment.KindPeriod, overtime.ID))
	require.Len(t, b.Periods, 1)
}

func TestBoard_LockRequiresCompleteSegment(t *testing.T) {
	b := segment.NewBoard(0, 90*minute)
	b.SeedPeriods([]string{"preMatch"})

	_, err := b.SetLocked(segment.KindPeriod, 0, true)
	require.ErrorIs(t, err, segment.ErrIncomplete)

	_, err = b.UpdateSegment(segment.KindPeriod, 0, segment.Edit{StartTimestamp: ms(0), EndTimestamp: ms(10 * minute)})
	require.NoError(t, err)
	locked, err := b.SetLocked(segment.KindPeriod, 0, true)
	require.NoError(t, err)
	require.True(t, locked.Locked)

	_, err = b.UpdateSegment(segment.KindPeriod, 0, segment.Edit{EndTimestamp: ms(20 * minute)})
	require.ErrorIs(t, err, segment.ErrSegmentLocked)
}

func TestBoard_TrimEnvelope(t *testing.T) {
	b := segment.NewBoard(0, 60*minute)
	b.SeedPeriods([]string{"preMatch"})
	_, err := b.UpdateSegment(segment.KindPeriod, 0, segment.Edit{StartTimestamp: ms(10 * minute), EndTimestamp: ms(20 * minute)})
	require.NoError(t, err)

	require.ErrorIs(t, b.SetFullSessionBounds(15*minute, 60*minute), segment.ErrOutOfBounds)
	require.ErrorIs(t, b.SetFullSessionBounds(0, 15*minute), segment.ErrOutOfBounds)
	require.NoError(t, b.SetFullSessionBounds(5*minute, 30*minute))
	require.Equal(t, 5*minute, b.FullStart())
	require.Equal(t, 30*minute, b.FullEnd())
}

func TestBoard_CloneIsIndependent(t *testing.T) {
	b := lockedBoard(t, 0, 60*minute)
	_, err := b.AppendDrill("", "")
	require.NoError(t, err)

	c := b.Clone()
	_, err = b.UpdateSegment(segment.KindDrill, 0, segment.Edit{EndTimestamp: ms(30 * minute)})
	require.NoError(t, err)

	require.Equal(t, 60*minute, *c.Drills[0].EndTimestamp)
	require.Equal(t, 30*minute, *b.Drills[0].EndTimestamp)
}

func TestBoard_RestoreSplitsByKind(t *testing.T) {
	period := segment.New(0, "preMatch", "", segment.KindPeriod, false)
	period.StartTimestamp = ms(20 * minute)
	period.EndTimestamp = ms(30 * minute)
	drill := segment.New(1, "drill1", "", segment.KindDrill, true)
	drill.StartTimestamp = ms(50 * minute)
	drill.EndTimestamp = ms(70 * minute)

	b := segment.NewBoard(25*minute, 60*minute)
	b.Restore([]segment.Segment{period, drill})

	require.Len(t, b.Periods, 1)
	require.Len(t, b.Drills, 1)
	require.Equal(t, 20*minute, b.FullStart())
	require.Equal(t, 70*minute, b.FullEnd())
}

func TestBoard_RestoreKeepsSeededPeriods(t *testing.T) {
	firstHalf := segment.New(7, "firstHalf", "", segment.KindPeriod, false)
	firstHalf.StartTimestamp = ms(5 * minute)
	firstHalf.EndTimestamp = ms(50 * minute)
	firstHalf.Locked = true

	b := segment.NewBoard(0, 100*minute)
	b.SeedPeriods([]string{"preMatch", "firstHalf", "secondHalf"})
	b.Restore([]segment.Segment{firstHalf})

	require.Len(t, b.Periods, 3)
	got, err := b.Get(segment.KindPeriod, 1)
	require.NoError(t, err)
	require.Equal(t, "firstHalf", got.Name)
	require.True(t, got.Locked)
	require.Equal(t, 50*minute, *got.EndTimestamp)
}

func TestBoard_UpdateEnforcesExposedBounds(t *testing.T) {
	b := lockedBoard(t, 0, 60*minute)
	drill, err := b.AppendDrill("", "")
	require.NoError(t, err)
	_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{EndTimestamp: ms(20 * minute)})
	require.NoError(t, err)

	bounds, err := b.Bounds(segment.KindDrill, drill.ID)
	require.NoError(t, err)
	require.Equal(t, 19*minute, bounds.StartMax)
	require.Equal(t, minute, bounds.EndMin)

	_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{StartTimestamp: ms(bounds.StartMax + 1)})
	require.ErrorIs(t, err, segment.ErrOutOfBounds)
	require.ErrorContains(t, err, "[0, 1140000]")

	_, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{EndTimestamp: ms(bounds.EndMin - 1)})
	require.ErrorIs(t, err, segment.ErrOutOfBounds)
	require.ErrorContains(t, err, "[60000, 3600000]")

	seg, err := b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{StartTimestamp: ms(bounds.StartMax)})
	require.NoError(t, err)
	require.Equal(t, 19*minute, *seg.StartTimestamp)

	// both endpoints move together past the old end
	seg, err = b.UpdateSegment(segment.KindDrill, drill.ID, segment.Edit{StartTimestamp: ms(30 * minute), EndTimestamp: ms(40 * minute)})
	require.NoError(t, err)
	require.Equal(t, 30*minute, *seg.StartTimestamp)
	require.Equal(t, 40*minute, *seg.EndTimestamp)
}
