package interfaces

import (
	"context"

	"forum-server/internal/models"
)

// ChatMessageRepository persists chat room messages (append-only).
type ChatMessageRepository interface {
	// Insert stores a message and fills in its ID and CreatedAt.
	Insert(ctx context.Context, msg *models.ChatMessage) error

	// ListRecent returns the newest messages in insertion order (oldest first).
	ListRecent(ctx context.Context, limit int) ([]models.ChatMessage, error)
}
