package service

import (
	"context"

	"forum-server/internal/models"
)

// ResetService defines the interface for the password reset token lifecycle.
type ResetService interface {
	// RequestReset issues a reset token for the account behind the email and
	// dispatches it through the notification sink. The caller must present the
	// same generic success response whether or not the email exists; only a
	// dispatch failure (*models.TransientError) is surfaced differently.
	RequestReset(ctx context.Context, email string) error

	// ValidateToken reports whether a token is valid, expired or unknown.
	ValidateToken(ctx context.Context, token string) (models.TokenStatus, error)

	// ConsumeToken redeems a valid token: stores the new password, deletes the
	// token (single-use) and invalidates every session of the user.
	ConsumeToken(ctx context.Context, token, newPassword, confirmPassword string) error
}
