package service

import (
	"context"

	"forum-server/internal/models"

	"github.com/google/uuid"
)

// AuthService defines the interface for authentication logic: registration,
// the login attempt state machine and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, username, email, displayName, password string) (*models.User, error)

	// Login evaluates one login attempt against the lockout policy and, on
	// success, establishes a session. Every attempt writes exactly one ledger
	// entry. Returns the user and the new session id.
	Login(ctx context.Context, username, password, ipAddress string) (*models.User, string, error)

	// Logout destroys the current session.
	Logout(ctx context.Context, sessionID string) error

	// LogoutAll destroys every session of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// CurrentUser resolves a session id to its user record. This is the single
	// session-to-user resolution path used by all handlers.
	CurrentUser(ctx context.Context, sessionID string) (*models.User, error)
}
