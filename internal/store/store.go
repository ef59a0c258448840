// Package store provides the persistence boundary for game sessions:
// durable storage of a session, its status and timestamps, and its
// ordered guess records, reconstructable by session id.
package store

import (
	"context"
	"errors"
	"time"

	"divenludo/internal/game"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found in store")

// Store is the durable persistence boundary consumed by the app. All
// implementations must return sessions with guess records in submission
// order.
type Store interface {
	// Save persists the session and its full ledger.
	Save(ctx context.Context, s *game.Session) error
	// Get reconstructs a session by id, or returns ErrNotFound.
	Get(ctx context.Context, id string) (*game.Session, error)
	// ListGuesses returns the ordered guess records for a session, or
	// ErrNotFound if the session does not exist.
	ListGuesses(ctx context.Context, id string) ([]game.GuessRecord, error)
	// Delete removes a session and its records. Deleting an unknown id
	// is not an error.
	Delete(ctx context.Context, id string) error
	// CleanupExpired removes sessions not updated within maxAge and
	// returns the number removed.
	CleanupExpired(ctx context.Context, maxAge time.Duration) (int, error)
}

// validSession rejects persisted state that violates the core invariants:
// target word and every guess must be exactly five letters, and tag rows
// must match the word length. Corrupt state is a defect, not user input,
// so loaders drop it instead of surfacing a rejection.
func validSession(sj game.SessionJSON) bool {
	if sj.ID == "" || !game.ValidShape(sj.TargetWord) {
		return false
	}
	for _, rec := range sj.Records {
		if !game.ValidShape(rec.Text) || len(rec.Tags) != game.WordLength {
			return false
		}
	}
	return true
}
