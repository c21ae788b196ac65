package roster

import "time"

// Player is a roster entry. Tag is the hardware tag stored on the player
// profile, empty when none has been assigned.
type Player struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TagSummary is the per-tag load summary of a raw recording.
type TagSummary struct {
	Load      float64 `json:"load"`
	Timestamp int64   `json:"timestamp"`
}

// Assignment maps one recording tag to a roster player.
type Assignment struct {
	PlayerID string `json:"playerId"`
	Included bool   `json:"included"`
}

// Inclusion is keyed by recording tag id.
type Inclusion map[string]Assignment
