// Package firestore stores events and the team roster in Cloud Firestore,
// the document store the mobile clients share. Documents live under
// teams/{teamID}/events and teams/{teamID}/players.
package firestore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store wraps a Firestore client
type Store struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewStore connects to the Firestore project. FIRESTORE_EMULATOR_HOST is
// honoured by the client library.
func NewStore(ctx context.Context, projectID string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	logger.Info("connected to firestore", "project_id", projectID)
	return &Store{client: client, logger: logger}, nil
}

// Close closes the Firestore client
func (s *Store) Close() error {
	return s.client.Close()
}

// Events returns the event repository backed by this store
func (s *Store) Events() *EventRepository {
	return &EventRepository{store: s}
}

// Players returns the roster repository backed by this store
func (s *Store) Players() *PlayerRepository {
	return &PlayerRepository{store: s}
}

func (s *Store) team(teamID string) *firestore.DocumentRef {
	return s.client.Collection("teams").Doc(teamID)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
