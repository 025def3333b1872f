package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"forum-server/internal/models"

	"github.com/google/uuid"
)

// In-memory фейки коллабораторов для unit-тестов сервисного слоя.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User

	createErr error
	getErr    error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return user
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return models.ErrUserAlreadyExists
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return models.ErrEmailAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) UpdateLockState(_ context.Context, userID uuid.UUID, failedAttempts int, isLocked bool, lockoutUntil *time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.FailedLoginAttempts = failedAttempts
	u.IsLocked = isLocked
	u.LockoutUntil = lockoutUntil
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, userID uuid.UUID, newPasswordHash string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.PasswordHash = newPasswordHash
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID uuid.UUID, displayName, profileColor, profileAvatar *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if profileColor != nil {
		u.ProfileColor = *profileColor
	}
	if profileAvatar != nil {
		u.ProfileAvatar = *profileAvatar
	}
	return nil
}

func (r *fakeUserRepo) get(userID uuid.UUID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userID]
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []models.LoginAttempt

	recordErr error
}

func (r *fakeAttemptRepo) Record(_ context.Context, attempt *models.LoginAttempt) error {
	if r.recordErr != nil {
		return r.recordErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt.ID = int64(len(r.attempts) + 1)
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAttemptRepo) CountRecentFailures(_ context.Context, username string, _ int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.attempts {
		if a.Username == username && !a.Success {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) last() *models.LoginAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.attempts) == 0 {
		return nil
	}
	a := r.attempts[len(r.attempts)-1]
	return &a
}

func (r *fakeAttemptRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID

	createErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]uuid.UUID)}
}

func (s *fakeSessionStore) Create(_ context.Context, userID uuid.UUID) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.sessions[id] = userID
	return id, nil
}

func (s *fakeSessionStore) Get(_ context.Context, sessionID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[sessionID]
	if !ok {
		return uuid.Nil, models.ErrSessionNotFound
	}
	return userID, nil
}

func (s *fakeSessionStore) Destroy(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *fakeSessionStore) DestroyAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var destroyed int64
	for id, owner := range s.sessions {
		if owner == userID {
			delete(s.sessions, id)
			destroyed++
		}
	}
	return destroyed, nil
}

func (s *fakeSessionStore) countFor(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, owner := range s.sessions {
		if owner == userID {
			count++
		}
	}
	return count
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]models.PasswordResetToken

	upsertErr error
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{byUser: make(map[uuid.UUID]models.PasswordResetToken)}
}

func (r *fakeResetTokenRepo) Upsert(_ context.Context, token *models.PasswordResetToken) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[token.UserID] = *token
	return nil
}

func (r *fakeResetTokenRepo) GetByToken(_ context.Context, token string) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byUser {
		if t.Token == token {
			copied := t
			return &copied, nil
		}
	}
	return nil, models.ErrTokenNotFound
}

func (r *fakeResetTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, t := range r.byUser {
		if t.Token == token {
			delete(r.byUser, userID)
			return nil
		}
	}
	return models.ErrTokenNotFound
}

func (r *fakeResetTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

func (r *fakeResetTokenRepo) tokenFor(userID uuid.UUID) (models.PasswordResetToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byUser[userID]
	return t, ok
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string // адреса, на которые ушли письма
	tokens  []string
	sendErr error
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, email, token string, _ time.Time) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
