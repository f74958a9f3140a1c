// Package store provides session persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"quotebot/internal/domain"
)

// ErrCorruptStep is returned by GetSession when a persisted record holds a
// step value outside the dialogue enum. Callers are expected to treat the
// record as unusable and restart the conversation.
var ErrCorruptStep = errors.New("session record has unknown step")

// Repository defines the interface for persisting dialogue session records.
type Repository interface {
	// GetSession retrieves the session record for a conversation.
	// Returns (nil, nil) when no record exists yet.
	GetSession(ctx context.Context, conversationID string) (*domain.Session, error)

	// SaveSession creates or updates a session record.
	SaveSession(ctx context.Context, session *domain.Session) error

	// DeleteStaleSessions removes records not updated within ttl and
	// returns the number of rows deleted.
	DeleteStaleSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
