package firestore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestEventDocKeepsSegments(t *testing.T) {
	start, end := int64(1000), int64(61000)
	ev := &event.Event{
		ID:       "e1",
		Kind:     event.KindTraining,
		Segments: []segment.Segment{{ID: 3, Kind: segment.KindDrill, Name: "drill3", Label: "Rondo", StartTimestamp: &start, EndTimestamp: &end, Locked: true, Deletable: true}},
		Report:   map[string]any{"T1": 1.0},
	}

	got := fromEventDoc("e1", "team1", toEventDoc(ev))
	require.Equal(t, "team1", got.TeamID)
	require.Equal(t, event.KindTraining, got.Kind)
	require.Equal(t, ev.Segments, got.Segments)
	require.Equal(t, ev.Report, got.Report)
}

// newEmulatorStore connects to a local Firestore emulator or skips the test
func newEmulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	store, err := NewStore(context.Background(), "edgeline-test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEventRepository_Emulator(t *testing.T) {
	store := newEmulatorStore(t)
	ctx := context.Background()
	repo := store.Events()
	teamID := uuid.NewString()

	ev := &event.Event{ID: "e1", Kind: event.KindMatch, Sport: event.SportFootball, Opponent: "Rovers"}
	require.NoError(t, repo.Create(ctx, teamID, ev))
	require.ErrorIs(t, repo.Create(ctx, teamID, ev), repository.ErrConflict)

	final := true
	require.NoError(t, repo.Merge(ctx, teamID, "e1", event.Patch{IsFinal: &final}))

	loaded, err := repo.Get(ctx, teamID, "e1")
	require.NoError(t, err)
	require.True(t, loaded.IsFinal)
	require.Equal(t, "Rovers", loaded.Opponent)

	require.NoError(t, repo.Delete(ctx, teamID, "e1"))
	require.ErrorIs(t, repo.Delete(ctx, teamID, "e1"), repository.ErrNotFound)
	_, err = repo.Get(ctx, teamID, "e1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlayerRepository_Emulator(t *testing.T) {
	store := newEmulatorStore(t)
	ctx := context.Background()
	repo := store.Players()
	teamID := uuid.NewString()

	require.NoError(t, repo.Upsert(ctx, teamID, &roster.Player{ID: "p2", Name: "Lee", Tag: "B"}))
	require.NoError(t, repo.Upsert(ctx, teamID, &roster.Player{ID: "p1", Name: "Kim"}))

	players, err := repo.List(ctx, teamID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	require.Equal(t, "Kim", players[0].Name)
	require.Equal(t, "B", players[1].Tag)
}
