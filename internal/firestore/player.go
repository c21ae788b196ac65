package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"google.golang.org/api/iterator"
)

// PlayerRepository implements roster.Repository for Firestore
type PlayerRepository struct {
	store *Store
}

type playerDoc struct {
	Name      string    `firestore:"name"`
	Tag       string    `firestore:"tag"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func (r *PlayerRepository) collection(teamID string) *firestore.CollectionRef {
	return r.store.team(teamID).Collection("players")
}

// List returns the team roster ordered by name
func (r *PlayerRepository) List(ctx context.Context, teamID string) ([]roster.Player, error) {
	iter := r.collection(teamID).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var players []roster.Player
	for {
		snapshot, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}

		var d playerDoc
		if err := snapshot.DataTo(&d); err != nil {
			r.store.logger.Warn("skipping unreadable player", "player_id", snapshot.Ref.ID, "error", err)
			continue
		}
		players = append(players, roster.Player{
			ID:        snapshot.Ref.ID,
			TeamID:    teamID,
			Name:      d.Name,
			Tag:       d.Tag,
			CreatedAt: d.CreatedAt,
		})
	}
	return players, nil
}

// Upsert writes a player document
func (r *PlayerRepository) Upsert(ctx context.Context, teamID string, p *roster.Player) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	d := playerDoc{Name: p.Name, Tag: p.Tag, CreatedAt: p.CreatedAt}
	if _, err := r.collection(teamID).Doc(p.ID).Set(ctx, d); err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	p.TeamID = teamID
	return nil
}
