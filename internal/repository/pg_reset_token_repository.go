package repository

import (
	"context"
	"errors"
	"fmt"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgResetTokenRepository implements ResetTokenRepository
var _ interfaces.ResetTokenRepository = (*pgResetTokenRepository)(nil)

type pgResetTokenRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgResetTokenRepository creates a new PostgreSQL-backed ResetTokenRepository.
func NewPgResetTokenRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ResetTokenRepository {
	return &pgResetTokenRepository{
		db:     db,
		logger: logger.Named("PgResetTokenRepo"),
	}
}

// Upsert stores the token, replacing any existing token for the same user.
// user_id carries a UNIQUE constraint, so the conflict target enforces
// "at most one active token per user".
func (r *pgResetTokenRepository) Upsert(ctx context.Context, token *models.PasswordResetToken) error {
	query := `INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = CURRENT_TIMESTAMP`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", token.UserID.String()))
	_, err := r.db.Exec(ctx, query, token.UserID, token.Token, token.ExpiresAt)
	if err != nil {
		r.logger.Error("Failed to upsert reset token in postgres", zap.Error(err), zap.String("userID", token.UserID.String()))
		return fmt.Errorf("failed to upsert reset token: %w", err)
	}
	r.logger.Info("Reset token stored", zap.String("userID", token.UserID.String()))
	return nil
}

// GetByToken retrieves a token record by its opaque value.
func (r *pgResetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `SELECT user_id, token, expires_at, created_at FROM password_reset_tokens WHERE token = $1`
	record := &models.PasswordResetToken{}
	err := r.db.QueryRow(ctx, query, token).Scan(&record.UserID, &record.Token, &record.ExpiresAt, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Reset token not found")
			return nil, models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get reset token from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return record, nil
}

// Delete removes a token (single-use consumption).
func (r *pgResetTokenRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM password_reset_tokens WHERE token = $1`
	cmdTag, err := r.db.Exec(ctx, query, token)
	if err != nil {
		r.logger.Error("Failed to delete reset token from postgres", zap.Error(err))
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent reset token")
		return models.ErrTokenNotFound
	}
	r.logger.Info("Reset token deleted")
	return nil
}

// DeleteByUserID removes any token belonging to the user.
func (r *pgResetTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM password_reset_tokens WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to delete reset tokens by user from postgres", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to delete reset tokens for user: %w", err)
	}
	return nil
}
