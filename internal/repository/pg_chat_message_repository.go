package repository

import (
	"context"
	"fmt"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"go.uber.org/zap"
)

// Compile-time check to ensure pgChatMessageRepository implements ChatMessageRepository
var _ interfaces.ChatMessageRepository = (*pgChatMessageRepository)(nil)

type pgChatMessageRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgChatMessageRepository creates a new PostgreSQL-backed ChatMessageRepository.
func NewPgChatMessageRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ChatMessageRepository {
	return &pgChatMessageRepository{
		db:     db,
		logger: logger.Named("PgChatMessageRepo"),
	}
}

// Insert stores a message and fills in its ID and CreatedAt.
func (r *pgChatMessageRepository) Insert(ctx context.Context, msg *models.ChatMessage) error {
	query := `INSERT INTO chat_messages (user_id, message) VALUES ($1, $2) RETURNING id, created_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", msg.UserID.String()))
	err := r.db.QueryRow(ctx, query, msg.UserID, msg.Message).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert chat message in postgres", zap.Error(err), zap.String("userID", msg.UserID.String()))
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListRecent returns the newest `limit` messages in insertion order (oldest first).
func (r *pgChatMessageRepository) ListRecent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	query := `SELECT id, user_id, message, created_at FROM
		(SELECT id, user_id, message, created_at FROM chat_messages ORDER BY id DESC LIMIT $1) AS recent
		ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to query chat messages from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Message, &msg.CreatedAt); err != nil {
			r.logger.Error("Failed to scan chat message row", zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating chat message rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}

	return messages, nil
}
