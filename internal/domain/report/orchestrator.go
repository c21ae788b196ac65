package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// State is the phase of one report-generation attempt.
type State string

const (
	StateIdle       State = "idle"
	StateBuilding   State = "building"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateComplete   State = "complete"
	StateCancelled  State = "cancelled"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
)

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool {
	switch s {
	case StateComplete, StateCancelled, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// Client talks to the report job endpoints.
type Client interface {
	SubmitReport(ctx context.Context, gameID string, req Request) (*Response, error)
	CancelReport(ctx context.Context, gameID string) error
}

// Config bounds the poll loop.
type Config struct {
	PollInterval         time.Duration
	MaxPolls             int
	MaxTransientFailures int
	CancelTimeout        time.Duration
}

// DefaultConfig returns a 3.5s interval with roughly twelve minutes of polling.
func DefaultConfig() Config {
	return Config{
		PollInterval:         3500 * time.Millisecond,
		MaxPolls:             200,
		MaxTransientFailures: 3,
		CancelTimeout:        10 * time.Second,
	}
}

// Progress is reported to the observer on every transition.
type Progress struct {
	State  State
	GameID string
	Calls  int
}

// Observer receives progress updates. It must not block.
type Observer func(Progress)

// Result is the outcome of a finished attempt.
type Result struct {
	GameID    string
	Stats     map[string]any
	Timestamp int64
	Calls     int
}

// Orchestrator submits a request and polls the job until it completes, fails
// or the context is cancelled.
type Orchestrator struct {
	client Client
	cfg    Config
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator. Zero config fields take defaults.
func NewOrchestrator(client Client, cfg Config, logger *slog.Logger) *Orchestrator {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = def.MaxPolls
	}
	if cfg.MaxTransientFailures <= 0 {
		cfg.MaxTransientFailures = def.MaxTransientFailures
	}
	if cfg.CancelTimeout <= 0 {
		cfg.CancelTimeout = def.CancelTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{client: client, cfg: cfg, logger: logger}
}

// Generate validates the event, builds the request and runs it.
func (o *Orchestrator) Generate(ctx context.Context, in BuildInput, observe Observer) (*Result, error) {
	if err := Validate(in.Event); err != nil {
		return nil, err
	}
	notify(observe, Progress{State: StateBuilding})
	req, err := BuildRequest(in)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, req, observe)
}

// Run submits req and resubmits it with the known game id every poll
// interval until the response carries stats. Calls are strictly sequential
// and the context is checked before each one.
func (o *Orchestrator) Run(ctx context.Context, req Request, observe Observer) (*Result, error) {
	var (
		gameID   string
		calls    int
		failures int
	)
	logger := o.logger.With("session_id", req.SessionID)

	notify(observe, Progress{State: StateSubmitting})
	for {
		if ctx.Err() != nil {
			return o.cancel(ctx, gameID, calls, observe)
		}
		if calls >= o.cfg.MaxPolls {
			o.bestEffortCancel(ctx, gameID)
			notify(observe, Progress{State: StateTimedOut, GameID: gameID, Calls: calls})
			return &Result{GameID: gameID, Calls: calls}, fmt.Errorf("%w after %d calls", ErrReportTimeout, calls)
		}

		calls++
		resp, err := o.client.SubmitReport(ctx, gameID, req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return o.cancel(ctx, gameID, calls, observe)
			}
			failures++
			logger.Warn("report submit failed", "game_id", gameID, "attempt", calls, "failures", failures, "error", err)
			if failures >= o.cfg.MaxTransientFailures {
				notify(observe, Progress{State: StateFailed, GameID: gameID, Calls: calls})
				return &Result{GameID: gameID, Calls: calls}, fmt.Errorf("%w: %w", ErrReportFailed, err)
			}
		case resp.IsComplete():
			if resp.GameID != "" {
				gameID = resp.GameID
			}
			logger.Info("report complete", "game_id", gameID, "calls", calls)
			notify(observe, Progress{State: StateComplete, GameID: gameID, Calls: calls})
			return &Result{GameID: gameID, Stats: resp.Stats, Timestamp: resp.Timestamp, Calls: calls}, nil
		case resp.IsPending():
			failures = 0
			if resp.GameID != "" {
				gameID = resp.GameID
			}
			logger.Debug("report pending", "game_id", gameID, "attempt", calls, "message", resp.Message)
		default:
			notify(observe, Progress{State: StateFailed, GameID: gameID, Calls: calls})
			return &Result{GameID: gameID, Calls: calls}, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp.Message)
		}

		notify(observe, Progress{State: StatePolling, GameID: gameID, Calls: calls})

		timer := time.NewTimer(o.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return o.cancel(ctx, gameID, calls, observe)
		case <-timer.C:
		}
	}
}

func (o *Orchestrator) cancel(ctx context.Context, gameID string, calls int, observe Observer) (*Result, error) {
	o.bestEffortCancel(ctx, gameID)
	notify(observe, Progress{State: StateCancelled, GameID: gameID, Calls: calls})
	return &Result{GameID: gameID, Calls: calls}, ErrCancelled
}

// bestEffortCancel asks the job endpoint to drop gameID. Errors are logged.
func (o *Orchestrator) bestEffortCancel(ctx context.Context, gameID string) {
	if gameID == "" {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.CancelTimeout)
	defer cancel()
	if err := o.client.CancelReport(cctx, gameID); err != nil {
		o.logger.Warn("report cancel failed", "game_id", gameID, "error", err)
	}
}

func notify(observe Observer, p Progress) {
	if observe != nil {
		observe(p)
	}
}
