package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/edgeline/internal/domain/activity"
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/domain/session"
	"github.com/rpggio/edgeline/internal/repository"
	"github.com/rpggio/edgeline/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	minute = segment.Minute
	start  = int64(1_700_000_000_000)
	teamID = "team1"
)

func ms(v int64) *int64 { return &v }

type fakeRunner struct {
	generate func(ctx context.Context, in report.BuildInput, observe report.Observer) (*report.Result, error)
}

func (f *fakeRunner) Generate(ctx context.Context, in report.BuildInput, observe report.Observer) (*report.Result, error) {
	return f.generate(ctx, in, observe)
}

type fixture struct {
	workspaces *mocks.WorkspaceRepository
	events     *mocks.EventRepository
	players    *mocks.RosterRepository
	edge       *mocks.EdgeSource
	runner     *fakeRunner
	svc        *session.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		workspaces: &mocks.WorkspaceRepository{},
		events:     &mocks.EventRepository{},
		players:    &mocks.RosterRepository{},
		edge:       &mocks.EdgeSource{},
		runner:     &fakeRunner{},
	}
	f.svc = session.NewService(f.workspaces, f.events, f.players, f.edge, nil, f.runner, nil, nil)
	return f
}

func rawSession() *session.RawSession {
	return &session.RawSession{
		ID:             "s1",
		StartTimestamp: start,
		EndTimestamp:   start + 90*minute,
		Duration:       90 * minute,
		ActivityGraph: []activity.Point{
			{Timestamp: 0, Value: 1},
			{Timestamp: 45 * minute, Value: 2},
			{Timestamp: 90 * minute, Value: 3},
		},
		Players: map[string]roster.TagSummary{
			"A": {Load: 1},
			"B": {Load: 2},
			"C": {Load: 3},
		},
	}
}

func teamRoster() []roster.Player {
	return []roster.Player{
		{ID: "p1", Name: "Kim", Tag: "A"},
		{ID: "p2", Name: "Lee", Tag: "B"},
		{ID: "p3", Name: "Sam"},
	}
}

// stored returns a workspace the mocked repository hands out on every Get.
func (f *fixture) stored(t *testing.T, details session.Details) *session.Workspace {
	t.Helper()
	raw := rawSession()
	b := segment.NewBoard(raw.StartTimestamp, raw.EndTimestamp)
	if details.Kind == event.KindMatch {
		b.SeedPeriods(details.Sport.PeriodNames())
	}
	ws := &session.Workspace{
		ID:           "w1",
		TeamID:       teamID,
		RawSessionID: raw.ID,
		Raw:          *raw,
		Details:      details,
		Board:        b,
		Inclusion:    roster.SeedInclusion(raw.Players, teamRoster()),
	}
	f.workspaces.On("Get", mock.Anything, teamID, "w1").Return(ws, nil)
	f.workspaces.On("Update", mock.Anything, teamID, ws).Return(nil)
	f.players.On("List", mock.Anything, teamID).Return(teamRoster(), nil)
	return ws
}

func TestSessionService_SetupMatchSeedsPeriodsAndTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.edge.On("GetSession", ctx, "s1").Return(rawSession(), nil)
	f.players.On("List", ctx, teamID).Return(teamRoster(), nil)
	f.workspaces.On("Create", ctx, teamID, mock.AnythingOfType("*session.Workspace")).Return(nil)

	view, err := f.svc.Setup(ctx, teamID, session.SetupRequest{
		SessionID: "s1",
		Details:   session.Details{Kind: event.KindMatch, Sport: event.SportHockey},
	})
	require.NoError(t, err)
	require.NotEmpty(t, view.ID)
	require.Len(t, view.Periods, 4)
	require.Equal(t, "firstPeriod", view.Periods[1].Name)
	require.Empty(t, view.Drills)
	require.False(t, view.CanAppend)
	require.Equal(t, roster.Inclusion{
		"A": {PlayerID: "p1", Included: true},
		"B": {PlayerID: "p2", Included: true},
	}, view.Inclusion)
	require.Equal(t, []string{"A", "B", "C"}, view.Tags)
	f.workspaces.AssertExpectations(t)
}

func TestSessionService_SetupAttachesExistingEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	period := segment.New(0, "preMatch", "", segment.KindPeriod, false)
	period.StartTimestamp = ms(start + 5*minute)
	period.EndTimestamp = ms(start + 10*minute)
	period.Locked = true

	f.edge.On("GetSession", ctx, "s1").Return(rawSession(), nil)
	f.events.On("Get", ctx, teamID, "e1").Return(&event.Event{
		ID:       "e1",
		Kind:     event.KindMatch,
		Sport:    event.SportFootball,
		Opponent: "Rovers",
		Segments: []segment.Segment{period},
	}, nil)
	f.players.On("List", ctx, teamID).Return(teamRoster(), nil)
	f.workspaces.On("Create", ctx, teamID, mock.AnythingOfType("*session.Workspace")).Return(nil)

	view, err := f.svc.Setup(ctx, teamID, session.SetupRequest{SessionID: "s1", EventID: "e1"})
	require.NoError(t, err)
	require.Equal(t, "e1", view.EventID)
	require.Equal(t, "Rovers", view.Details.Opponent)
	require.Len(t, view.Periods, 3)
	require.Equal(t, "preMatch", view.Periods[0].Name)
	require.True(t, view.Periods[0].Locked)
	require.Equal(t, start+5*minute, *view.Periods[0].StartTimestamp)
	require.Equal(t, "firstHalf", view.Periods[1].Name)
	require.False(t, view.Periods[1].Locked)
	require.Equal(t, int64(5), *view.Periods[0].DurationMinutes)
}

func TestSessionService_SetupErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Setup(ctx, teamID, session.SetupRequest{})
	require.ErrorIs(t, err, session.ErrInvalidInput)

	f.edge.On("GetSession", ctx, "missing").Return(nil, session.ErrSessionNotFound)
	_, err = f.svc.Setup(ctx, teamID, session.SetupRequest{SessionID: "missing"})
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	f.edge.On("GetSession", ctx, "s1").Return(rawSession(), nil)
	f.events.On("Get", ctx, teamID, "nope").Return(nil, repository.ErrNotFound)
	_, err = f.svc.Setup(ctx, teamID, session.SetupRequest{SessionID: "s1", EventID: "nope"})
	require.ErrorIs(t, err, event.ErrEventNotFound)

	_, err = f.svc.Setup(ctx, teamID, session.SetupRequest{
		SessionID: "s1",
		Details:   session.Details{Kind: event.KindMatch, Sport: "curling"},
	})
	require.ErrorIs(t, err, session.ErrInvalidInput)
}

func TestSessionService_WorkspaceNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.workspaces.On("Get", ctx, teamID, "gone").Return(nil, repository.ErrNotFound)

	_, err := f.svc.Get(ctx, teamID, "gone")
	require.ErrorIs(t, err, session.ErrWorkspaceNotFound)
	_, err = f.svc.MarkDrill(ctx, teamID, "gone", "", "")
	require.ErrorIs(t, err, session.ErrWorkspaceNotFound)
}

func TestSessionService_MarkDrillsAfterLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stored(t, session.Details{Kind: event.KindTraining, TrainingCategory: "speed"})

	_, err := f.svc.MarkDrill(ctx, teamID, "w1", "", "")
	require.ErrorIs(t, err, segment.ErrAppendNotAllowed)

	_, err = f.svc.TrimFullSession(ctx, teamID, "w1", start-minute, start+60*minute)
	require.ErrorIs(t, err, session.ErrOutsideRecording)

	view, err := f.svc.TrimFullSession(ctx, teamID, "w1", start+10*minute, start+60*minute)
	require.NoError(t, err)
	require.Equal(t, start+10*minute, *view.FullSession.StartTimestamp)

	_, err = f.svc.LockFullSession(ctx, teamID, "w1", true)
	require.NoError(t, err)

	view, err = f.svc.MarkDrill(ctx, teamID, "w1", "", "Warm up")
	require.NoError(t, err)
	require.Len(t, view.Drills, 1)
	require.Equal(t, start+10*minute, *view.Drills[0].StartTimestamp)

	view, err = f.svc.UpdateSegment(ctx, teamID, "w1", segment.KindDrill, 0, segment.Edit{EndTimestamp: ms(start + 30*minute)})
	require.NoError(t, err)
	require.True(t, view.CanAppend)
	require.Equal(t, start+30*minute-minute, view.Drills[0].Bounds.StartMax)

	view, err = f.svc.LockSegment(ctx, teamID, "w1", segment.KindDrill, 0, true)
	require.NoError(t, err)
	require.True(t, view.Drills[0].Locked)

	chart, err := f.svc.ActivityChart(ctx, teamID, "w1")
	require.NoError(t, err)
	require.Equal(t, []activity.Point{{Timestamp: 35 * minute, Value: 2}}, chart.Points)
	require.Len(t, chart.Gridlines, activity.GridlineCount)
}

func TestSessionService_PlayerAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ws := f.stored(t, session.Details{Kind: event.KindTraining})

	choices, err := f.svc.PlayerChoices(ctx, teamID, "w1", "C")
	require.NoError(t, err)
	require.Len(t, choices, 1)
	require.Equal(t, "p3", choices[0].ID)

	_, err = f.svc.PlayerChoices(ctx, teamID, "w1", "Z")
	require.ErrorIs(t, err, session.ErrUnknownTag)

	_, err = f.svc.AssignPlayer(ctx, teamID, "w1", "C", "p1")
	require.ErrorIs(t, err, session.ErrPlayerUnavailable)

	view, err := f.svc.AssignPlayer(ctx, teamID, "w1", "C", "p3")
	require.NoError(t, err)
	require.Equal(t, roster.Assignment{PlayerID: "p3", Included: true}, view.Inclusion["C"])

	view, err = f.svc.SetPlayerIncluded(ctx, teamID, "w1", "A", false)
	require.NoError(t, err)
	require.False(t, view.Inclusion["A"].Included)
	require.Equal(t, "p1", ws.Inclusion["A"].PlayerID)
}

func TestSessionService_GenerateReportCreatesAndMergesEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ws := f.stored(t, session.Details{Kind: event.KindTraining, TrainingCategory: "speed"})
	ws.Board.SetFullSessionLocked(true)
	_, err := ws.Board.AppendDrill("", "")
	require.NoError(t, err)
	_, err = ws.Board.SetLocked(segment.KindDrill, 0, true)
	require.NoError(t, err)

	f.runner.generate = func(ctx context.Context, in report.BuildInput, observe report.Observer) (*report.Result, error) {
		observe(report.Progress{State: report.StatePolling, GameID: "g1", Calls: 1})
		return &report.Result{GameID: "g1", Stats: map[string]any{"A": 1.0}, Calls: 2}, nil
	}

	var createdID string
	f.events.On("Create", mock.Anything, teamID, mock.AnythingOfType("*event.Event")).
		Run(func(args mock.Arguments) { createdID = args.Get(2).(*event.Event).ID }).
		Return(nil)
	f.events.On("Merge", mock.Anything, teamID, mock.AnythingOfType("string"), mock.MatchedBy(func(p event.Patch) bool {
		return p.Status != nil && *p.Status == event.StatusCompleted && p.GameID != nil && *p.GameID == "g1"
	})).Return(nil)

	_, err = f.svc.GenerateReport(ctx, teamID, "w1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := f.svc.WaitReport(waitCtx, teamID, "w1")
	require.NoError(t, err)
	require.Equal(t, report.StateComplete, st.State)
	require.Equal(t, "g1", st.GameID)

	require.NotEmpty(t, createdID)
	require.Equal(t, createdID, ws.EventID)
	f.events.AssertCalled(t, "Merge", mock.Anything, teamID, createdID, mock.Anything)
}

func TestSessionService_CancelReportDeletesCreatedEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ws := f.stored(t, session.Details{Kind: event.KindTraining, TrainingCategory: "speed"})
	ws.Board.SetFullSessionLocked(true)
	_, err := ws.Board.AppendDrill("", "")
	require.NoError(t, err)
	_, err = ws.Board.SetLocked(segment.KindDrill, 0, true)
	require.NoError(t, err)

	running := make(chan struct{})
	f.runner.generate = func(ctx context.Context, in report.BuildInput, observe report.Observer) (*report.Result, error) {
		observe(report.Progress{State: report.StateSubmitting})
		close(running)
		<-ctx.Done()
		return &report.Result{GameID: "g1"}, report.ErrCancelled
	}
	f.events.On("Create", mock.Anything, teamID, mock.AnythingOfType("*event.Event")).Return(nil)
	f.events.On("Delete", mock.Anything, teamID, mock.AnythingOfType("string")).Return(nil)

	_, err = f.svc.GenerateReport(ctx, teamID, "w1")
	require.NoError(t, err)
	<-running

	_, err = f.svc.GenerateReport(ctx, teamID, "w1")
	require.ErrorIs(t, err, report.ErrReportInProgress)

	require.NoError(t, f.svc.CancelReport(ctx, teamID, "w1"))

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := f.svc.WaitReport(waitCtx, teamID, "w1")
	require.NoError(t, err)
	require.Equal(t, report.StateCancelled, st.State)

	f.events.AssertNumberOfCalls(t, "Delete", 1)
	require.Empty(t, ws.EventID)
	require.False(t, ws.EventCreated)

	require.ErrorIs(t, f.svc.CancelReport(ctx, teamID, "w1"), report.ErrNoActiveReport)
}

func TestSessionService_GenerateReportMergesDetailsIntoAttachedEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ws := f.stored(t, session.Details{Kind: event.KindMatch, Sport: event.SportFootball})
	ws.EventID = "e1"
	ws.Board.SetFullSessionLocked(true)
	_, err := ws.Board.AppendDrill("", "")
	require.NoError(t, err)
	_, err = ws.Board.SetLocked(segment.KindDrill, 0, true)
	require.NoError(t, err)

	_, err = f.svc.UpdateDetails(ctx, teamID, "w1", session.DetailsPatch{
		Opponent:    strPtr("United"),
		HomeScore:   strPtr("1"),
		AwayScore:   strPtr("3"),
		Gender:      strPtr("male"),
		Description: strPtr("cup tie"),
	})
	require.NoError(t, err)

	f.runner.generate = func(ctx context.Context, in report.BuildInput, observe report.Observer) (*report.Result, error) {
		return &report.Result{GameID: "g7"}, nil
	}
	var merged event.Patch
	f.events.On("Merge", mock.Anything, teamID, "e1", mock.AnythingOfType("event.Patch")).
		Run(func(args mock.Arguments) { merged = args.Get(3).(event.Patch) }).
		Return(nil)

	_, err = f.svc.GenerateReport(ctx, teamID, "w1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := f.svc.WaitReport(waitCtx, teamID, "w1")
	require.NoError(t, err)
	require.Equal(t, report.StateComplete, st.State)

	f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	require.Equal(t, "United", *merged.Opponent)
	require.Equal(t, "1", *merged.HomeScore)
	require.Equal(t, "3", *merged.AwayScore)
	require.Equal(t, "male", *merged.Gender)
	require.Equal(t, "cup tie", *merged.Description)
	require.Equal(t, event.StatusLoss, *merged.Status)
	require.Equal(t, "g7", *merged.GameID)
}

type recorded struct {
	typ      journal.EntryType
	ctxAlive bool
}

type memJournal struct {
	mu      sync.Mutex
	entries []recorded
}

func (j *memJournal) Record(ctx context.Context, teamID, workspaceID string, typ journal.EntryType, summary string, details any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, recorded{typ: typ, ctxAlive: ctx.Err() == nil})
}

func (j *memJournal) Recent(ctx context.Context, teamID string, opts journal.ListOptions) ([]journal.Entry, error) {
	return nil, nil
}

func (j *memJournal) find(typ journal.EntryType) (recorded, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range j.entries {
		if e.typ == typ {
			return e, true
		}
	}
	return recorded{}, false
}

func TestSessionService_CancelReportJournalsOnLiveContext(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jr := &memJournal{}
	f.svc = session.NewService(f.workspaces, f.events, f.players, f.edge, jr, f.runner, nil, nil)
	ws := f.stored(t, session.Details{Kind: event.KindTraining, TrainingCategory: "speed"})
	ws.EventID = "e1"
	ws.Board.SetFullSessionLocked(true)
	_, err := ws.Board.AppendDrill("", "")
	require.NoError(t, err)
	_, err = ws.Board.SetLocked(segment.KindDrill, 0, true)
	require.NoError(t, err)

	running := make(chan struct{})
	f.runner.generate = func(ctx context.Context, in report.BuildInput, observe report.Observer) (*report.Result, error) {
		close(running)
		<-ctx.Done()
		return nil, report.ErrCancelled
	}

	_, err = f.svc.GenerateReport(ctx, teamID, "w1")
	require.NoError(t, err)
	<-running
	require.NoError(t, f.svc.CancelReport(ctx, teamID, "w1"))

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := f.svc.WaitReport(waitCtx, teamID, "w1")
	require.NoError(t, err)
	require.Equal(t, report.StateCancelled, st.State)

	entry, ok := jr.find(journal.TypeReportCancelled)
	require.True(t, ok)
	require.True(t, entry.ctxAlive)

	// attached events survive a cancelled attempt
	f.events.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	require.Equal(t, "e1", ws.EventID)
}

func TestSessionService_GenerateReportValidatesFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stored(t, session.Details{Kind: event.KindMatch, Sport: event.SportFootball})

	_, err := f.svc.GenerateReport(ctx, teamID, "w1")
	require.ErrorIs(t, err, report.ErrMissingOpponent)

	_, err = f.svc.UpdateDetails(ctx, teamID, "w1", session.DetailsPatch{
		Opponent:  strPtr("Rovers"),
		HomeScore: strPtr("1"),
		AwayScore: strPtr("0"),
	})
	require.NoError(t, err)

	_, err = f.svc.GenerateReport(ctx, teamID, "w1")
	require.ErrorIs(t, err, report.ErrNothingToReport)
	f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)

	_, err = f.svc.ReportStatus(ctx, teamID, "w1")
	require.ErrorIs(t, err, report.ErrNoActiveReport)
}

func strPtr(s string) *string { return &s }
