package interfaces

import (
	"context"
	"time"
)

// Mailer is the external notification sink. Treated as fallible and slow;
// callers decide how a dispatch failure propagates.
type Mailer interface {
	// SendPasswordResetEmail delivers the reset token to the given address.
	SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error
}
