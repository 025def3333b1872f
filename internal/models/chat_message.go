package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a persisted chat room message. Display fields are joined in
// at broadcast time, not stored (denormalized snapshot).
type ChatMessage struct {
	ID        int64     `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
