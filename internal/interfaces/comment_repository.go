package interfaces

import (
	"context"

	"forum-server/internal/models"

	"github.com/google/uuid"
)

// CommentRepository persists board comments.
type CommentRepository interface {
	// Insert stores a comment and fills in its ID and timestamps.
	Insert(ctx context.Context, comment *models.Comment) error

	// List returns all comments with joined display fields, oldest first.
	// Threading is reconstructed by the caller from ParentID.
	List(ctx context.Context) ([]models.Comment, error)

	// Delete removes a comment owned by the given user.
	// Returns models.ErrCommentNotFound when no row matches.
	Delete(ctx context.Context, commentID int64, ownerID uuid.UUID) error
}
