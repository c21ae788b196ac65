package report

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Attempt is the observable status of one report-generation attempt.
type Attempt struct {
	WorkspaceID string     `json:"workspace_id"`
	State       State      `json:"state"`
	GameID      string     `json:"game_id,omitempty"`
	Calls       int        `json:"calls"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// RunFunc performs one attempt, reporting progress through observe.
type RunFunc func(ctx context.Context, observe Observer) error

type attempt struct {
	status Attempt
	cancel context.CancelFunc
	done   chan struct{}
}

// Tracker runs at most one attempt per workspace in the background and keeps
// the status of the latest attempt.
type Tracker struct {
	mu       sync.Mutex
	attempts map[string]*attempt
	logger   *slog.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{attempts: make(map[string]*attempt), logger: logger}
}

// Start launches run for workspaceID. The attempt outlives ctx; only Cancel
// stops it.
func (t *Tracker) Start(ctx context.Context, workspaceID string, run RunFunc) (Attempt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if a, ok := t.attempts[workspaceID]; ok && a.running() {
		return a.status, ErrReportInProgress
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a := &attempt{
		status: Attempt{
			WorkspaceID: workspaceID,
			State:       StateIdle,
			StartedAt:   time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	t.attempts[workspaceID] = a

	go func() {
		defer close(a.done)
		defer cancel()
		err := run(runCtx, func(p Progress) { t.update(a, p) })
		t.finish(a, err)
	}()

	return a.status, nil
}

// Status returns the latest attempt for workspaceID.
func (t *Tracker) Status(workspaceID string) (Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.attempts[workspaceID]
	if !ok {
		return Attempt{}, false
	}
	return a.status, true
}

// Cancel stops the running attempt for workspaceID.
func (t *Tracker) Cancel(workspaceID string) error {
	t.mu.Lock()
	a, ok := t.attempts[workspaceID]
	t.mu.Unlock()
	if !ok {
		return ErrNoActiveReport
	}
	if !a.running() {
		return ErrNoActiveReport
	}
	a.cancel()
	return nil
}

// Wait blocks until the attempt for workspaceID finishes or ctx is done.
func (t *Tracker) Wait(ctx context.Context, workspaceID string) (Attempt, error) {
	t.mu.Lock()
	a, ok := t.attempts[workspaceID]
	t.mu.Unlock()
	if !ok {
		return Attempt{}, ErrNoActiveReport
	}
	select {
	case <-a.done:
	case <-ctx.Done():
		return Attempt{}, ctx.Err()
	}
	st, _ := t.Status(workspaceID)
	return st, nil
}

func (a *attempt) running() bool {
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}

// update records progress. Terminal states are only set by finish, after the
// run function has returned.
func (t *Tracker) update(a *attempt, p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !p.State.Terminal() {
		a.status.State = p.State
	}
	if p.GameID != "" {
		a.status.GameID = p.GameID
	}
	a.status.Calls = p.Calls
}

func (t *Tracker) finish(a *attempt, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	a.status.FinishedAt = &now
	switch {
	case err == nil:
		a.status.State = StateComplete
	case errors.Is(err, ErrCancelled):
		a.status.State = StateCancelled
	case errors.Is(err, ErrReportTimeout):
		a.status.State = StateTimedOut
		a.status.Error = err.Error()
	default:
		a.status.State = StateFailed
		a.status.Error = err.Error()
	}
	t.logger.Info("report attempt finished", "workspace_id", a.status.WorkspaceID, "state", a.status.State, "game_id", a.status.GameID)
}
