package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a forum account together with its login security state.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Не отдаем хеш пароля

	ProfileColor  string `db:"profile_color" json:"profile_color"`
	ProfileAvatar string `db:"profile_avatar" json:"profile_avatar"`

	// Brute-force lockout state. IsLocked=true implies LockoutUntil is set;
	// once time passes LockoutUntil the record is lazily unlocked on next access.
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	IsLocked            bool       `db:"is_locked" json:"-"`
	LockoutUntil        *time.Time `db:"lockout_until" json:"-"`

	LastLogin *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}
