package repository

import (
	"context"
	"fmt"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"go.uber.org/zap"
)

// Compile-time check to ensure pgLoginAttemptRepository implements LoginAttemptRepository
var _ interfaces.LoginAttemptRepository = (*pgLoginAttemptRepository)(nil)

type pgLoginAttemptRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgLoginAttemptRepository creates a new PostgreSQL-backed LoginAttemptRepository.
func NewPgLoginAttemptRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.LoginAttemptRepository {
	return &pgLoginAttemptRepository{
		db:     db,
		logger: logger.Named("PgLoginAttemptRepo"),
	}
}

// Record appends one attempt to the ledger.
func (r *pgLoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `INSERT INTO login_attempts (username, ip_address, success, failure_reason)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	r.logger.Debug("Executing query",
		zap.String("query", query),
		zap.String("username", attempt.Username),
		zap.String("ip", attempt.IPAddress),
		zap.Bool("success", attempt.Success),
		zap.String("reason", string(attempt.Reason)),
	)
	err := r.db.QueryRow(ctx, query, attempt.Username, attempt.IPAddress, attempt.Success, attempt.Reason).
		Scan(&attempt.ID, &attempt.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to record login attempt in postgres", zap.Error(err), zap.String("username", attempt.Username))
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// CountRecentFailures returns the number of failed attempts for a username within the window.
func (r *pgLoginAttemptRepository) CountRecentFailures(ctx context.Context, username string, withinMinutes int) (int64, error) {
	query := `SELECT COUNT(*) FROM login_attempts
		WHERE username = $1 AND success = FALSE AND created_at > NOW() - make_interval(mins => $2)`
	var count int64
	err := r.db.QueryRow(ctx, query, username, withinMinutes).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count recent login failures", zap.Error(err), zap.String("username", username))
		return 0, fmt.Errorf("failed to count recent failures: %w", err)
	}
	return count, nil
}
