package mocks

import (
	"context"

	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// EventRepository is a mock for event.Repository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Create(ctx context.Context, teamID string, ev *event.Event) error {
	args := m.Called(ctx, teamID, ev)
	return args.Error(0)
}

func (m *EventRepository) Get(ctx context.Context, teamID, id string) (*event.Event, error) {
	args := m.Called(ctx, teamID, id)
	if ev, ok := args.Get(0).(*event.Event); ok {
		return ev, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) Merge(ctx context.Context, teamID, id string, patch event.Patch) error {
	args := m.Called(ctx, teamID, id, patch)
	return args.Error(0)
}

func (m *EventRepository) Delete(ctx context.Context, teamID, id string) error {
	args := m.Called(ctx, teamID, id)
	return args.Error(0)
}

// RosterRepository is a mock for roster.Repository.
type RosterRepository struct {
	mock.Mock
}

func (m *RosterRepository) List(ctx context.Context, teamID string) ([]roster.Player, error) {
	args := m.Called(ctx, teamID)
	if list, ok := args.Get(0).([]roster.Player); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RosterRepository) Upsert(ctx context.Context, teamID string, p *roster.Player) error {
	args := m.Called(ctx, teamID, p)
	return args.Error(0)
}

// WorkspaceRepository is a mock for session.WorkspaceRepository.
type WorkspaceRepository struct {
	mock.Mock
}

func (m *WorkspaceRepository) Create(ctx context.Context, teamID string, ws *session.Workspace) error {
	args := m.Called(ctx, teamID, ws)
	return args.Error(0)
}

func (m *WorkspaceRepository) Get(ctx context.Context, teamID, id string) (*session.Workspace, error) {
	args := m.Called(ctx, teamID, id)
	if ws, ok := args.Get(0).(*session.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkspaceRepository) Update(ctx context.Context, teamID string, ws *session.Workspace) error {
	args := m.Called(ctx, teamID, ws)
	return args.Error(0)
}

func (m *WorkspaceRepository) List(ctx context.Context, teamID string) ([]session.WorkspaceSummary, error) {
	args := m.Called(ctx, teamID)
	if list, ok := args.Get(0).([]session.WorkspaceSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// JournalRepository is a mock for journal.Repository.
type JournalRepository struct {
	mock.Mock
}

func (m *JournalRepository) Log(ctx context.Context, teamID string, entry *journal.Entry) error {
	args := m.Called(ctx, teamID, entry)
	return args.Error(0)
}

func (m *JournalRepository) List(ctx context.Context, teamID string, opts journal.ListOptions) ([]journal.Entry, error) {
	args := m.Called(ctx, teamID, opts)
	if list, ok := args.Get(0).([]journal.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// EdgeSource is a mock for session.EdgeSource.
type EdgeSource struct {
	mock.Mock
}

func (m *EdgeSource) ListSessions(ctx context.Context) ([]session.Summary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]session.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EdgeSource) GetSession(ctx context.Context, id string) (*session.RawSession, error) {
	args := m.Called(ctx, id)
	if raw, ok := args.Get(0).(*session.RawSession); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}
