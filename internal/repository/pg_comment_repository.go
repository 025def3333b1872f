package repository

import (
	"context"
	"fmt"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgCommentRepository implements CommentRepository
var _ interfaces.CommentRepository = (*pgCommentRepository)(nil)

type pgCommentRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgCommentRepository creates a new PostgreSQL-backed CommentRepository.
func NewPgCommentRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CommentRepository {
	return &pgCommentRepository{
		db:     db,
		logger: logger.Named("PgCommentRepo"),
	}
}

// Insert stores a comment and fills in its ID and timestamps.
func (r *pgCommentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (user_id, parent_id, body) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", comment.UserID.String()))
	err := r.db.QueryRow(ctx, query, comment.UserID, comment.ParentID, comment.Body).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert comment in postgres", zap.Error(err), zap.String("userID", comment.UserID.String()))
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// List returns all comments with joined display fields, oldest first.
func (r *pgCommentRepository) List(ctx context.Context) ([]models.Comment, error) {
	query := `SELECT c.id, c.user_id, c.parent_id, c.body, c.created_at, c.updated_at,
		u.display_name, u.profile_color, u.profile_avatar
		FROM comments c JOIN users u ON u.id = c.user_id
		ORDER BY c.id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query comments from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.ParentID, &c.Body, &c.CreatedAt, &c.UpdatedAt,
			&c.DisplayName, &c.ProfileColor, &c.ProfileAvatar); err != nil {
			r.logger.Error("Failed to scan comment row", zap.Error(err))
			continue
		}
		comments = append(comments, c)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating comment rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}

// Delete removes a comment owned by the given user.
func (r *pgCommentRepository) Delete(ctx context.Context, commentID int64, ownerID uuid.UUID) error {
	query := `DELETE FROM comments WHERE id = $1 AND user_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, commentID, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete comment from postgres", zap.Error(err), zap.Int64("commentID", commentID))
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or foreign comment", zap.Int64("commentID", commentID), zap.String("ownerID", ownerID.String()))
		return models.ErrCommentNotFound
	}
	return nil
}
