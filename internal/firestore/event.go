package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/repository"
)

// EventRepository implements event.Repository for Firestore
type EventRepository struct {
	store *Store
}

type segmentDoc struct {
	ID             int    `firestore:"id"`
	Kind           string `firestore:"kind"`
	Name           string `firestore:"name"`
	Label          string `firestore:"label,omitempty"`
	StartTimestamp *int64 `firestore:"startTimestamp"`
	EndTimestamp   *int64 `firestore:"endTimestamp"`
	Locked         bool   `firestore:"locked"`
	Deletable      bool   `firestore:"deletable"`
}

type eventDoc struct {
	Kind             string         `firestore:"type"`
	Sport            string         `firestore:"sport"`
	Opponent         string         `firestore:"opponent"`
	HomeScore        string         `firestore:"homeScore"`
	AwayScore        string         `firestore:"awayScore"`
	TrainingCategory string         `firestore:"trainingCategory"`
	Gender           string         `firestore:"gender"`
	Description      string         `firestore:"description"`
	UTCDate          string         `firestore:"utcDate"`
	StartTime        string         `firestore:"startTime"`
	EndTime          string         `firestore:"endTime"`
	Status           string         `firestore:"status"`
	IsFinal          bool           `firestore:"isFinal"`
	IsFullReport     bool           `firestore:"isFullReport"`
	GameID           string         `firestore:"gameId"`
	Report           map[string]any `firestore:"report,omitempty"`
	ReportTimestamp  int64          `firestore:"reportTimestamp"`
	Segments         []segmentDoc   `firestore:"segments,omitempty"`
	CreatedAt        time.Time      `firestore:"createdAt"`
	UpdatedAt        time.Time      `firestore:"updatedAt"`
}

func (r *EventRepository) doc(teamID, id string) *firestore.DocumentRef {
	return r.store.team(teamID).Collection("events").Doc(id)
}

// Create stores a new event document
func (r *EventRepository) Create(ctx context.Context, teamID string, ev *event.Event) error {
	now := time.Now()
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	ev.UpdatedAt = now
	ev.TeamID = teamID

	if _, err := r.doc(teamID, ev.ID).Create(ctx, toEventDoc(ev)); err != nil {
		if isAlreadyExists(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// Get retrieves an event document
func (r *EventRepository) Get(ctx context.Context, teamID, id string) (*event.Event, error) {
	snapshot, err := r.doc(teamID, id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return decodeEvent(snapshot, teamID)
}

// Merge applies a patch to the stored event inside a transaction
func (r *EventRepository) Merge(ctx context.Context, teamID, id string, patch event.Patch) error {
	ref := r.doc(teamID, id)
	err := r.store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snapshot, err := tx.Get(ref)
		if err != nil {
			return err
		}
		ev, err := decodeEvent(snapshot, teamID)
		if err != nil {
			return err
		}
		patch.Apply(ev)
		ev.UpdatedAt = time.Now()
		return tx.Set(ref, toEventDoc(ev))
	})
	if err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to merge event: %w", err)
	}
	return nil
}

// Delete removes an event document
func (r *EventRepository) Delete(ctx context.Context, teamID, id string) error {
	if _, err := r.doc(teamID, id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	r.store.logger.Debug("event deleted", "team_id", teamID, "event_id", id)
	return nil
}

func decodeEvent(snapshot *firestore.DocumentSnapshot, teamID string) (*event.Event, error) {
	var d eventDoc
	if err := snapshot.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode event %s: %w", snapshot.Ref.ID, err)
	}
	return fromEventDoc(snapshot.Ref.ID, teamID, d), nil
}

func toEventDoc(ev *event.Event) eventDoc {
	d := eventDoc{
		Kind:             string(ev.Kind),
		Sport:            string(ev.Sport),
		Opponent:         ev.Opponent,
		HomeScore:        ev.HomeScore,
		AwayScore:        ev.AwayScore,
		TrainingCategory: ev.TrainingCategory,
		Gender:           ev.Gender,
		Description:      ev.Description,
		UTCDate:          ev.UTCDate,
		StartTime:        ev.StartTime,
		EndTime:          ev.EndTime,
		Status:           string(ev.Status),
		IsFinal:          ev.IsFinal,
		IsFullReport:     ev.IsFullReport,
		GameID:           ev.GameID,
		Report:           ev.Report,
		ReportTimestamp:  ev.ReportTimestamp,
		CreatedAt:        ev.CreatedAt,
		UpdatedAt:        ev.UpdatedAt,
	}
	for _, seg := range ev.Segments {
		d.Segments = append(d.Segments, segmentDoc{
			ID:             seg.ID,
			Kind:           string(seg.Kind),
			Name:           seg.Name,
			Label:          seg.Label,
			StartTimestamp: seg.StartTimestamp,
			EndTimestamp:   seg.EndTimestamp,
			Locked:         seg.Locked,
			Deletable:      seg.Deletable,
		})
	}
	return d
}

func fromEventDoc(id, teamID string, d eventDoc) *event.Event {
	ev := &event.Event{
		ID:               id,
		TeamID:           teamID,
		Kind:             event.Kind(d.Kind),
		Sport:            event.Sport(d.Sport),
		Opponent:         d.Opponent,
		HomeScore:        d.HomeScore,
		AwayScore:        d.AwayScore,
		TrainingCategory: d.TrainingCategory,
		Gender:           d.Gender,
		Description:      d.Description,
		UTCDate:          d.UTCDate,
		StartTime:        d.StartTime,
		EndTime:          d.EndTime,
		Status:           event.Status(d.Status),
		IsFinal:          d.IsFinal,
		IsFullReport:     d.IsFullReport,
		GameID:           d.GameID,
		Report:           d.Report,
		ReportTimestamp:  d.ReportTimestamp,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for _, s := range d.Segments {
		ev.Segments = append(ev.Segments, segment.Segment{
			ID:             s.ID,
			Kind:           segment.Kind(s.Kind),
			Name:           s.Name,
			Label:          s.Label,
			StartTimestamp: s.StartTimestamp,
			EndTimestamp:   s.EndTimestamp,
			Locked:         s.Locked,
			Deletable:      s.Deletable,
		})
	}
	return ev
}
