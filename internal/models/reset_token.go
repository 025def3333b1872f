package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a single-use, time-limited credential for password recovery.
// At most one active token exists per user (replace-on-conflict on issue).
type PasswordResetToken struct {
	UserID    uuid.UUID `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// TokenStatus is the result of validating a reset token.
type TokenStatus int

const (
	TokenNotFound TokenStatus = iota
	TokenExpired
	TokenValid
)

func (s TokenStatus) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	default:
		return "not_found"
	}
}
