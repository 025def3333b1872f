package interfaces

import (
	"context"

	"forum-server/internal/models"
)

// LoginAttemptRepository is the append-only audit ledger of login attempts.
// Records are never updated or deleted.
type LoginAttemptRepository interface {
	// Record appends one attempt. Callers on the auth path must treat a failure
	// here as non-fatal: it is logged and swallowed, never surfaced.
	Record(ctx context.Context, attempt *models.LoginAttempt) error

	// CountRecentFailures returns the number of failed attempts for a username
	// within the lookback window (admin/diagnostic surface).
	CountRecentFailures(ctx context.Context, username string, withinMinutes int) (int64, error)
}
