package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore is the opaque server-side session collaborator (Redis).
// Sessions are keyed by a server-issued id; the core only needs create,
// resolve and destroy operations.
type SessionStore interface {
	// Create issues a new session id bound to the user and stores it with the
	// configured TTL.
	Create(ctx context.Context, userID uuid.UUID) (string, error)

	// Get resolves a session id to the owning user id.
	// Returns models.ErrSessionNotFound if the session does not exist or expired.
	Get(ctx context.Context, sessionID string) (uuid.UUID, error)

	// Destroy removes a single session. Destroying an absent session is not an error.
	Destroy(ctx context.Context, sessionID string) error

	// DestroyAllForUser removes every live session belonging to the user.
	// Returns the number of sessions destroyed.
	DestroyAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
