package interfaces

import (
	"context"

	"forum-server/internal/models"

	"github.com/google/uuid"
)

// ResetTokenRepository persists password reset tokens, at most one active
// token per user (Upsert replaces any prior token).
type ResetTokenRepository interface {
	// Upsert stores the token, replacing an existing token for the same user.
	Upsert(ctx context.Context, token *models.PasswordResetToken) error

	// GetByToken retrieves a token record by its opaque value.
	// Returns models.ErrTokenNotFound if no such token exists.
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)

	// Delete removes a token (single-use consumption).
	// Returns models.ErrTokenNotFound if the token was already gone.
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes any token belonging to the user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
