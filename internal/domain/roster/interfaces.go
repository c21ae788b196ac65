package roster

import "context"

// Repository provides persistence for roster players.
type Repository interface {
	List(ctx context.Context, teamID string) ([]Player, error)
	Upsert(ctx context.Context, teamID string, p *Player) error
}
