package interfaces

import (
	"context"
	"time"

	"forum-server/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data persistence (PostgreSQL).
// This is the Credential Store: it owns password hashes and lockout state.
type UserRepository interface {
	// CreateUser inserts a new user into the database.
	// Returns models.ErrUserAlreadyExists / models.ErrEmailAlreadyExists on conflicts.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user by their username.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail retrieves a user by their email address.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by their ID.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateLockState atomically rewrites the lockout fields of a single user row.
	// lockoutUntil may be nil when clearing the lock.
	UpdateLockState(ctx context.Context, userID uuid.UUID, failedAttempts int, isLocked bool, lockoutUntil *time.Time) error

	// UpdateLastLogin sets the last successful login timestamp.
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error

	// UpdatePasswordHash обновляет хеш пароля пользователя.
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, newPasswordHash string) error

	// UpdateProfile updates display fields. Nil pointers leave a field untouched.
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, profileColor, profileAvatar *string) error
}
