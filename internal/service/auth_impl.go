package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"forum-server/internal/config"
	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

// authServiceImpl implements the AuthService interface.
type authServiceImpl struct {
	userRepo    interfaces.UserRepository
	attemptRepo interfaces.LoginAttemptRepository
	sessions    interfaces.SessionStore
	cfg         *config.Config
	logger      *zap.Logger

	// now is a seam for tests, production code uses time.Now.
	now func() time.Time
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(
	userRepo interfaces.UserRepository,
	attemptRepo interfaces.LoginAttemptRepository,
	sessions interfaces.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
		sessions:    sessions,
		cfg:         cfg,
		logger:      logger.Named("AuthService"),
		now:         time.Now,
	}
}

// Register creates a new user account.
func (s *authServiceImpl) Register(ctx context.Context, username, email, displayName, password string) (*models.User, error) {
	// Приводим email к нижнему регистру и убираем пробелы
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}

	logFields := []zap.Field{zap.String("username", username), zap.String("email", email)}
	s.logger.Info("Registering new user", logFields...)

	if username == "" || password == "" {
		s.logger.Warn("Registration attempt with empty username or password", logFields...)
		return nil, models.ErrInvalidInput
	}

	// Валидация формата email (простая)
	if _, err := mail.ParseAddress(email); err != nil {
		s.logger.Warn("Registration attempt with invalid email format", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("invalid email format: %w", models.ErrInvalidInput)
	}

	if err := ValidatePasswordPolicy(password); err != nil {
		s.logger.Warn("Registration attempt with weak password", logFields...)
		return nil, err
	}

	// Проверка существования пользователя по username
	existingUser, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing username during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("error checking existing username: %w", err)
	}
	if existingUser != nil {
		s.logger.Warn("Registration attempt for existing username", logFields...)
		return nil, models.ErrUserAlreadyExists
	}

	// Проверка существования пользователя по email
	existingUser, err = s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing email during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}
	if existingUser != nil {
		s.logger.Warn("Registration attempt for existing email", logFields...)
		return nil, models.ErrEmailAlreadyExists
	}

	// Используем перец перед хешированием
	hashedPassword, err := hashPassword(password, s.cfg.PasswordPepper)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// Репозиторий уже маппит ошибки уникальности на ErrUserAlreadyExists / ErrEmailAlreadyExists
		if !errors.Is(err, models.ErrUserAlreadyExists) && !errors.Is(err, models.ErrEmailAlreadyExists) {
			s.logger.Error("Failed to create user via repository", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	s.logger.Info("User registered successfully", append(logFields, zap.String("userID", user.ID.String()))...)
	return user, nil
}

// Login evaluates one login attempt against the lockout policy. Every attempt,
// whatever its outcome, produces exactly one ledger record. Ledger write
// failures are logged and swallowed so the audit trail never blocks authentication.
func (s *authServiceImpl) Login(ctx context.Context, username, password, ipAddress string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	log := s.logger.With(zap.String("username", username), zap.String("ip", ipAddress))
	log.Info("Login attempt")

	now := s.now()

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("Login attempt for unknown username")
			s.recordAttempt(ctx, username, ipAddress, false, models.AttemptUserNotFound)
			// Наружу отдаем ту же ошибку, что и при неверном пароле
			return nil, "", models.ErrInvalidCredentials
		}
		log.Error("Error fetching user during login", zap.Error(err))
		return nil, "", fmt.Errorf("error fetching user for login: %w", err)
	}

	log = log.With(zap.String("userID", user.ID.String()))

	// Активная блокировка: отклоняем до проверки пароля, счетчик не трогаем
	if user.IsLocked && user.LockoutUntil != nil {
		if now.Before(*user.LockoutUntil) {
			remaining := user.LockoutUntil.Sub(now)
			log.Warn("Login attempt on locked account", zap.Duration("remaining", remaining))
			s.recordAttempt(ctx, username, ipAddress, false, models.AttemptAccountLocked)
			return nil, "", &models.AccountLockedError{Until: *user.LockoutUntil, Remaining: remaining}
		}

		// Блокировка истекла: ленивая разблокировка перед проверкой пароля
		log.Info("Lockout expired, unlocking account")
		if err := s.userRepo.UpdateLockState(ctx, user.ID, 0, false, nil); err != nil {
			log.Error("Failed to clear expired lockout", zap.Error(err))
			return nil, "", fmt.Errorf("failed to clear expired lockout: %w", err)
		}
		user.FailedLoginAttempts = 0
		user.IsLocked = false
		user.LockoutUntil = nil
	}

	if !checkPasswordHash(password, user.PasswordHash, s.cfg.PasswordPepper) {
		failed := user.FailedLoginAttempts + 1

		if failed >= s.cfg.MaxFailedLogins {
			until := now.Add(s.cfg.LockoutDuration)
			log.Warn("Failure threshold reached, locking account",
				zap.Int("failedAttempts", failed),
				zap.Time("lockoutUntil", until),
			)
			if err := s.userRepo.UpdateLockState(ctx, user.ID, failed, true, &until); err != nil {
				log.Error("Failed to lock account", zap.Error(err))
				return nil, "", fmt.Errorf("failed to lock account: %w", err)
			}
			s.recordAttempt(ctx, username, ipAddress, false, models.AttemptLockedAfterRetries)
			return nil, "", &models.AccountLockedError{Until: until, Remaining: s.cfg.LockoutDuration}
		}

		log.Warn("Invalid password", zap.Int("failedAttempts", failed))
		if err := s.userRepo.UpdateLockState(ctx, user.ID, failed, false, nil); err != nil {
			log.Error("Failed to increment failed attempts", zap.Error(err))
			return nil, "", fmt.Errorf("failed to increment failed attempts: %w", err)
		}
		s.recordAttempt(ctx, username, ipAddress, false, models.AttemptInvalidPassword)
		return nil, "", models.ErrInvalidCredentials
	}

	// Успех: сбрасываем счетчик, если были неудачные попытки
	if user.FailedLoginAttempts > 0 || user.IsLocked {
		if err := s.userRepo.UpdateLockState(ctx, user.ID, 0, false, nil); err != nil {
			log.Error("Failed to reset failed attempts after successful login", zap.Error(err))
			return nil, "", fmt.Errorf("failed to reset failed attempts: %w", err)
		}
		user.FailedLoginAttempts = 0
		user.IsLocked = false
		user.LockoutUntil = nil
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Не фатально для входа
		log.Error("Failed to update last login timestamp", zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	s.recordAttempt(ctx, username, ipAddress, true, models.AttemptSuccess)

	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		log.Error("Failed to create session", zap.Error(err))
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("Login successful", zap.String("sessionID", sessionID))
	return user, sessionID, nil
}

// Logout destroys the current session.
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	s.logger.Info("Logging out session", zap.String("sessionID", sessionID))
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		s.logger.Error("Failed to destroy session", zap.Error(err), zap.String("sessionID", sessionID))
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// LogoutAll destroys every session of the user.
func (s *authServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	log := s.logger.With(zap.String("userID", userID.String()))
	destroyed, err := s.sessions.DestroyAllForUser(ctx, userID)
	if err != nil {
		log.Error("Failed to destroy all sessions for user", zap.Error(err))
		return fmt.Errorf("failed to destroy all sessions: %w", err)
	}
	log.Info("All sessions destroyed for user", zap.Int64("count", destroyed))
	return nil
}

// CurrentUser resolves a session id to its user record.
func (s *authServiceImpl) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	userID, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("Failed to resolve session", zap.Error(err), zap.String("sessionID", sessionID))
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Сессия пережила пользователя, чистим её
			s.logger.Warn("Session references missing user, destroying it",
				zap.String("sessionID", sessionID),
				zap.String("userID", userID.String()),
			)
			_ = s.sessions.Destroy(ctx, sessionID)
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to fetch user for session: %w", err)
	}
	return user, nil
}

// recordAttempt appends one entry to the login attempt ledger. Failures here
// are logged and swallowed: the audit trail must never block authentication.
func (s *authServiceImpl) recordAttempt(ctx context.Context, username, ipAddress string, success bool, reason models.AttemptReason) {
	attempt := &models.LoginAttempt{
		Username:  username,
		IPAddress: ipAddress,
		Success:   success,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	if err := s.attemptRepo.Record(ctx, attempt); err != nil {
		s.logger.Error("Failed to record login attempt",
			zap.Error(err),
			zap.String("username", username),
			zap.String("reason", string(reason)),
		)
	}
}
