package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"forum-server/internal/config"
	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"go.uber.org/zap"
)

// Compile-time check to ensure resetServiceImpl implements ResetService
var _ ResetService = (*resetServiceImpl)(nil)

// resetServiceImpl implements the ResetService interface.
type resetServiceImpl struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.ResetTokenRepository
	sessions  interfaces.SessionStore
	mailer    interfaces.Mailer
	cfg       *config.Config
	logger    *zap.Logger

	now func() time.Time
}

// NewResetService creates a new instance of resetServiceImpl.
func NewResetService(
	userRepo interfaces.UserRepository,
	tokenRepo interfaces.ResetTokenRepository,
	sessions interfaces.SessionStore,
	mailer interfaces.Mailer,
	cfg *config.Config,
	logger *zap.Logger,
) ResetService {
	return &resetServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		sessions:  sessions,
		mailer:    mailer,
		cfg:       cfg,
		logger:    logger.Named("ResetService"),
		now:       time.Now,
	}
}

// generateResetToken returns a 64-character hex token from 32 random bytes.
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RequestReset issues a reset token and dispatches it by email. When the email
// is unknown it returns nil so the HTTP layer shows the same generic response
// either way (no account enumeration).
func (s *resetServiceImpl) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.logger.With(zap.String("email", email))
	log.Info("Password reset requested")

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Намеренно молчим: ответ снаружи не должен отличаться
			log.Info("Password reset requested for unknown email")
			return nil
		}
		log.Error("Error fetching user for password reset", zap.Error(err))
		return fmt.Errorf("error fetching user for password reset: %w", err)
	}

	tokenValue, err := generateResetToken()
	if err != nil {
		log.Error("Failed to generate reset token", zap.Error(err))
		return err
	}

	now := s.now()
	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     tokenValue,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
		CreatedAt: now,
	}

	// Upsert заменяет предыдущий токен пользователя, если он был
	if err := s.tokenRepo.Upsert(ctx, token); err != nil {
		log.Error("Failed to store reset token", zap.Error(err))
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, tokenValue, token.ExpiresAt); err != nil {
		// Токен остается валидным: повторный запрос просто заменит его
		log.Error("Failed to dispatch password reset email", zap.Error(err))
		return &models.TransientError{Op: "email_dispatch", Err: err}
	}

	log.Info("Password reset token issued and dispatched", zap.Time("expiresAt", token.ExpiresAt))
	return nil
}

// ValidateToken reports whether a token is valid, expired or unknown.
func (s *resetServiceImpl) ValidateToken(ctx context.Context, tokenValue string) (models.TokenStatus, error) {
	token, err := s.tokenRepo.GetByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			return models.TokenNotFound, nil
		}
		s.logger.Error("Failed to look up reset token", zap.Error(err))
		return models.TokenNotFound, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if s.now().After(token.ExpiresAt) {
		return models.TokenExpired, nil
	}
	return models.TokenValid, nil
}

// ConsumeToken redeems a valid token: the token is deleted before the new
// password is stored, so a concurrent redeem of the same token fails. All
// sessions of the user are invalidated afterwards.
func (s *resetServiceImpl) ConsumeToken(ctx context.Context, tokenValue, newPassword, confirmPassword string) error {
	token, err := s.tokenRepo.GetByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Warn("Attempt to consume unknown reset token")
			return models.ErrTokenNotFound
		}
		s.logger.Error("Failed to look up reset token for consumption", zap.Error(err))
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	log := s.logger.With(zap.String("userID", token.UserID.String()))

	if s.now().After(token.ExpiresAt) {
		log.Warn("Attempt to consume expired reset token")
		return models.ErrTokenExpired
	}

	if newPassword != confirmPassword {
		return &models.ValidationError{Violations: []string{"passwords do not match"}}
	}
	if err := ValidatePasswordPolicy(newPassword); err != nil {
		return err
	}

	// Сначала удаляем токен: одноразовость важнее, чем неудачная смена пароля
	if err := s.tokenRepo.Delete(ctx, tokenValue); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			// Кто-то успел использовать токен раньше нас
			log.Warn("Reset token already consumed")
			return models.ErrTokenNotFound
		}
		log.Error("Failed to delete reset token during consumption", zap.Error(err))
		return fmt.Errorf("failed to delete reset token: %w", err)
	}

	hashedPassword, err := hashPassword(newPassword, s.cfg.PasswordPepper)
	if err != nil {
		log.Error("Failed to hash new password", zap.Error(err))
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, token.UserID, hashedPassword); err != nil {
		log.Error("Failed to update password hash", zap.Error(err))
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	// Обрываем все активные сессии пользователя; сбой здесь не откатывает смену пароля
	if destroyed, err := s.sessions.DestroyAllForUser(ctx, token.UserID); err != nil {
		log.Error("Failed to destroy sessions after password reset", zap.Error(err))
	} else {
		log.Info("Password reset completed", zap.Int64("sessionsDestroyed", destroyed))
	}

	return nil
}
