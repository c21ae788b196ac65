package event

import "context"

// Repository persists event records.
type Repository interface {
	Create(ctx context.Context, teamID string, ev *Event) error
	Get(ctx context.Context, teamID, id string) (*Event, error)
	Merge(ctx context.Context, teamID, id string, patch Patch) error
	Delete(ctx context.Context, teamID, id string) error
}
