// Package store defines the conversation store interface and implementations.
package store

import (
	"context"

	"github.com/drcloud/assistant/internal/domain"
)

// Store is the conversation store: the only mutable shared resource in the
// core. Appends to a single session are serialized inside the store;
// callers never read-modify-write history from outside.
type Store interface {
	// CreateSession creates a new session. Blank ids are generated. Returns
	// domain.ErrSessionExists if the (user_id, session_id) pair already exists.
	CreateSession(ctx context.Context, userID, sessionID string) (*domain.Session, error)

	// GetSession returns domain.ErrSessionNotFound if the pair is absent.
	GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, error)

	// AppendTurn atomically extends history. The turn's Seq is assigned by the
	// store; a concurrent reader never observes a partially appended turn.
	// Returns domain.ErrSessionNotFound if the session is absent.
	AppendTurn(ctx context.Context, userID, sessionID string, turn *domain.Turn) error

	// GetHistory returns turns in insertion order. A session with no turns
	// yields an empty, non-nil slice; an absent session yields
	// domain.ErrSessionNotFound.
	GetHistory(ctx context.Context, userID, sessionID string) ([]domain.Turn, error)

	// DeleteSession removes a session and its turns. Absent sessions succeed
	// silently unless strict is set, in which case domain.ErrSessionNotFound
	// is returned.
	DeleteSession(ctx context.Context, userID, sessionID string, strict bool) error

	// Lifecycle
	Close() error
}
