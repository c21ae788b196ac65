package report

import (
	"strings"

	"github.com/rpggio/edgeline/internal/domain/event"
)

// Validate checks the event fields that must be present before a request is
// built. Matches need an opponent and both scores, trainings a category.
func Validate(ev *event.Event) error {
	if ev == nil {
		return ErrMissingCategory
	}
	switch ev.Kind {
	case event.KindMatch:
		if strings.TrimSpace(ev.Opponent) == "" {
			return ErrMissingOpponent
		}
		if strings.TrimSpace(ev.HomeScore) == "" || strings.TrimSpace(ev.AwayScore) == "" {
			return ErrMissingScore
		}
	default:
		if strings.TrimSpace(ev.TrainingCategory) == "" {
			return ErrMissingCategory
		}
	}
	return nil
}
