package segment_test

import (
	"testing"
	"time"

	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seg := segment.New(3, "firstHalf", "", segment.KindPeriod, false)
	require.Equal(t, 3, seg.ID)
	require.True(t, seg.IsPeriod())
	require.False(t, seg.Locked)
	require.False(t, seg.Deletable)
	require.Nil(t, seg.StartTimestamp)
	require.Nil(t, seg.EndTimestamp)
	require.Equal(t, "firstHalf", seg.DisplayName())

	full := segment.New(0, segment.FullSessionName, "", segment.KindFullSession, true)
	require.False(t, full.Deletable)
}

func TestDuration(t *testing.T) {
	seg := segment.New(0, "drill", "", segment.KindDrill, true)
	_, ok := segment.Duration(seg)
	require.False(t, ok)

	// 00:00:45 -> 00:10:15 floors to 00:00 -> 00:10
	seg.StartTimestamp = ms(45_000)
	seg.EndTimestamp = ms(10*minute + 15_000)
	d, ok := segment.Duration(seg)
	require.True(t, ok)
	require.Equal(t, 10*time.Minute, d)
}

func TestOverlaps(t *testing.T) {
	a := segment.New(0, "a", "", segment.KindDrill, true)
	b := segment.New(1, "b", "", segment.KindDrill, true)
	a.StartTimestamp, a.EndTimestamp = ms(0), ms(10*minute)
	b.StartTimestamp = ms(5 * minute)
	require.False(t, segment.Overlaps(a, b), "incomplete segments never overlap")

	b.EndTimestamp = ms(20 * minute)
	require.True(t, segment.Overlaps(a, b))

	b.StartTimestamp = ms(10 * minute)
	require.False(t, segment.Overlaps(a, b), "touching segments do not overlap")
}
