package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

const userColumns = `id, username, display_name, email, password_hash, profile_color, profile_avatar,
	failed_login_attempts, is_locked, lockout_until, last_login, created_at, updated_at`

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.DisplayName, &user.Email, &user.PasswordHash,
		&user.ProfileColor, &user.ProfileAvatar,
		&user.FailedLoginAttempts, &user.IsLocked, &user.LockoutUntil,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, display_name, profile_color, profile_avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("username", user.Username), zap.String("email", user.Email))
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName, user.ProfileColor, user.ProfileAvatar)

	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation (duplicate username or email)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			logFields := []zap.Field{zap.String("username", user.Username), zap.String("email", user.Email)}
			if pgErr.ConstraintName == "users_email_key" {
				r.logger.Warn("Attempted to create duplicate user by email", logFields...)
				return models.ErrEmailAlreadyExists
			}
			r.logger.Warn("Attempted to create duplicate user by username", logFields...)
			return models.ErrUserAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return nil
}

// GetUserByUsername retrieves a user by their username.
func (r *pgUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("username", username))
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by username", zap.String("username", username))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by username from postgres", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username from postgres: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", email))
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by email", zap.String("email", email))
			// Важно: возвращаем ErrUserNotFound, чтобы вызывающий код мог
			// унифицированно обрабатывать отсутствие пользователя.
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by email from postgres", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email from postgres: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by ID", zap.String("id", id.String()))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by id from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get user by id from postgres: %w", err)
	}
	return user, nil
}

// UpdateLockState atomically rewrites the lockout fields of a single user row.
func (r *pgUserRepository) UpdateLockState(ctx context.Context, userID uuid.UUID, failedAttempts int, isLocked bool, lockoutUntil *time.Time) error {
	query := `UPDATE users SET failed_login_attempts = $1, is_locked = $2, lockout_until = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`
	r.logger.Debug("Executing query",
		zap.String("query", query),
		zap.String("userID", userID.String()),
		zap.Int("failedAttempts", failedAttempts),
		zap.Bool("isLocked", isLocked),
	)

	cmdTag, err := r.db.Exec(ctx, query, failedAttempts, isLocked, lockoutUntil, userID)
	if err != nil {
		r.logger.Error("Failed to update user lock state in postgres", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to update lock state: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update lock state for non-existent user", zap.String("userID", userID.String()))
		return models.ErrUserNotFound
	}

	return nil
}

// UpdateLastLogin sets the last successful login timestamp.
func (r *pgUserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	cmdTag, err := r.db.Exec(ctx, query, at, userID)
	if err != nil {
		r.logger.Error("Failed to update last login in postgres", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash обновляет хеш пароля пользователя.
func (r *pgUserRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", userID.String()))

	cmdTag, err := r.db.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		r.logger.Error("Failed to update user password hash in postgres", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update password hash for non-existent user", zap.String("userID", userID.String()))
		return models.ErrUserNotFound
	}

	r.logger.Info("User password hash updated successfully", zap.String("userID", userID.String()))
	return nil
}

// UpdateProfile обновляет только указанные поля профиля пользователя.
// Поля со значением nil не обновляются.
func (r *pgUserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, profileColor, profileAvatar *string) error {
	queryBase := "UPDATE users SET updated_at = CURRENT_TIMESTAMP"
	args := []interface{}{}
	argID := 1

	if displayName != nil {
		queryBase += fmt.Sprintf(", display_name = $%d", argID)
		args = append(args, *displayName)
		argID++
	}
	if profileColor != nil {
		queryBase += fmt.Sprintf(", profile_color = $%d", argID)
		args = append(args, *profileColor)
		argID++
	}
	if profileAvatar != nil {
		queryBase += fmt.Sprintf(", profile_avatar = $%d", argID)
		args = append(args, *profileAvatar)
		argID++
	}

	if len(args) == 0 {
		r.logger.Info("UpdateProfile called with no fields to update", zap.String("userID", userID.String()))
		return nil
	}

	query := queryBase + fmt.Sprintf(" WHERE id = $%d", argID)
	args = append(args, userID)

	r.logger.Debug("Executing update profile query", zap.String("query", query), zap.String("userID", userID.String()))
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update user profile in postgres", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update profile of non-existent user", zap.String("userID", userID.String()))
		return models.ErrUserNotFound
	}

	r.logger.Info("User profile updated successfully", zap.String("userID", userID.String()))
	return nil
}
