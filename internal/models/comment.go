package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a board comment. ParentID is nil for top-level comments and
// references another comment for replies (single-level threading).
type Comment struct {
	ID        int64      `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	ParentID  *int64     `db:"parent_id" json:"parent_id,omitempty"`
	Body      string     `db:"body" json:"body"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`

	// Joined display fields, populated by list queries.
	DisplayName   string `db:"display_name" json:"display_name"`
	ProfileColor  string `db:"profile_color" json:"profile_color"`
	ProfileAvatar string `db:"profile_avatar" json:"profile_avatar"`
}
