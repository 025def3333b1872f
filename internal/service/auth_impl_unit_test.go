package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"forum-server/internal/config"
	"forum-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPepper   = "test-pepper-for-unit-tests"
	testPassword = "Correct-Horse1!"
)

type authFixture struct {
	svc      *authServiceImpl
	users    *fakeUserRepo
	attempts *fakeAttemptRepo
	sessions *fakeSessionStore
	clock    *fakeClock
}

// fakeClock позволяет двигать время в тестах состояния блокировки.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time               { return c.now }
func (c *fakeClock) Advance(d time.Duration)      { c.now = c.now.Add(d) }
func (c *fakeClock) Set(t time.Time)              { c.now = t }

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	cfg := &config.Config{
		PasswordPepper:  testPepper,
		MaxFailedLogins: 5,
		LockoutDuration: 15 * time.Minute,
		SessionTTL:      time.Hour,
	}

	users := newFakeUserRepo()
	attempts := &fakeAttemptRepo{}
	sessions := newFakeSessionStore()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	svc := NewAuthService(users, attempts, sessions, cfg, zap.NewNop()).(*authServiceImpl)
	svc.now = clock.Now

	return &authFixture{svc: svc, users: users, attempts: attempts, sessions: sessions, clock: clock}
}

func (f *authFixture) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := hashPassword(testPassword, testPepper)
	require.NoError(t, err)
	return f.users.add(&models.User{
		Username:     username,
		DisplayName:  username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	})
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	loggedIn, sessionID, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, user.ID, loggedIn.ID)
	require.NotNil(t, loggedIn.LastLogin)
	assert.Equal(t, f.clock.Now(), *loggedIn.LastLogin)

	// Сессия действительно создана
	resolved, err := f.sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved)

	// Ровно одна запись в журнале, успешная
	require.Equal(t, 1, f.attempts.count())
	attempt := f.attempts.last()
	assert.True(t, attempt.Success)
	assert.Equal(t, models.AttemptSuccess, attempt.Reason)
	assert.Equal(t, "10.0.0.1", attempt.IPAddress)
}

func TestLogin_UnknownUsername(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, "ghost", "whatever", "10.0.0.1")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	attempt := f.attempts.last()
	require.NotNil(t, attempt)
	assert.False(t, attempt.Success)
	assert.Equal(t, models.AttemptUserNotFound, attempt.Reason)
	assert.Equal(t, "ghost", attempt.Username)
}

func TestLogin_WrongPasswordIncrementsCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	stored := f.users.get(user.ID)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
	assert.False(t, stored.IsLocked)
	assert.Equal(t, models.AttemptInvalidPassword, f.attempts.last().Reason)
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _, err := f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
		require.ErrorIs(t, err, models.ErrInvalidCredentials)
	}

	// Пятая неудача включает блокировку
	_, _, err := f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
	var lockedErr *models.AccountLockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, f.clock.Now().Add(15*time.Minute), lockedErr.Until)

	stored := f.users.get(user.ID)
	assert.True(t, stored.IsLocked)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockoutUntil)
	assert.Equal(t, f.clock.Now().Add(15*time.Minute), *stored.LockoutUntil)
	assert.Equal(t, models.AttemptLockedAfterRetries, f.attempts.last().Reason)
}

func TestLogin_LockedAccountRejectedWithoutIncrement(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, _ = f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
	}
	require.True(t, f.users.get(user.ID).IsLocked)

	// Даже с верным паролем попытка на заблокированном аккаунте отклоняется
	// до проверки учетных данных и счетчик не растет
	_, _, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
	var lockedErr *models.AccountLockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Greater(t, lockedErr.RemainingMinutes(), 0)

	stored := f.users.get(user.ID)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	assert.Equal(t, models.AttemptAccountLocked, f.attempts.last().Reason)
}

func TestLogin_LazyUnlockAfterExpiry(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, _ = f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
	}
	require.True(t, f.users.get(user.ID).IsLocked)

	// По истечении блокировки вход с верным паролем проходит без
	// какого-либо фонового разблокировщика
	f.clock.Advance(15*time.Minute + time.Second)

	loggedIn, sessionID, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	assert.False(t, loggedIn.IsLocked)

	stored := f.users.get(user.ID)
	assert.False(t, stored.IsLocked)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockoutUntil)
	assert.Equal(t, models.AttemptSuccess, f.attempts.last().Reason)
}

func TestLogin_LazyUnlockThenWrongPasswordStartsFresh(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, _ = f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
	}
	f.clock.Advance(16 * time.Minute)

	// Счетчик после ленивой разблокировки начинается заново
	_, _, err := f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	stored := f.users.get(user.ID)
	assert.False(t, stored.IsLocked)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
}

func TestLogin_SuccessResetsFailureCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, _ = f.svc.Login(ctx, "steve", "wrong-password", "10.0.0.1")
	}
	require.Equal(t, 3, f.users.get(user.ID).FailedLoginAttempts)

	_, _, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.users.get(user.ID).FailedLoginAttempts)
}

func TestLogin_LedgerFailureDoesNotBlockAuth(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "steve")
	f.attempts.recordErr = errors.New("ledger is down")
	ctx := context.Background()

	// Сбой журнала логируется и проглатывается
	_, sessionID, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, 0, f.attempts.count())
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, "newuser", "NewUser@Example.com", "New User", testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, "", user.ID.String())
	// Email нормализуется к нижнему регистру
	assert.Equal(t, "newuser@example.com", user.Email)
	assert.Equal(t, "New User", user.DisplayName)
	// Хеш не совпадает с паролем и проверяется с перцем
	assert.NotEqual(t, testPassword, user.PasswordHash)
	assert.True(t, checkPasswordHash(testPassword, user.PasswordHash, testPepper))
}

func TestRegister_DefaultsDisplayNameToUsername(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Register(context.Background(), "plain", "plain@example.com", "", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "plain", user.DisplayName)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "steve")

	_, err := f.svc.Register(context.Background(), "steve", "other@example.com", "", testPassword)
	require.ErrorIs(t, err, models.ErrUserAlreadyExists)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "steve")

	_, err := f.svc.Register(context.Background(), "other", "steve@example.com", "", testPassword)
	require.ErrorIs(t, err, models.ErrEmailAlreadyExists)
}

func TestRegister_WeakPasswordListsAllViolations(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), "weakling", "weak@example.com", "", "abc")
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	// Короткий, без верхнего регистра, без цифры, без спецсимвола
	assert.Len(t, validationErr.Violations, 4)
}

func TestRegister_InvalidEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), "someone", "not-an-email", "", testPassword)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCurrentUser_ResolvesSession(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	_, sessionID, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
	require.NoError(t, err)

	resolved, err := f.svc.CurrentUser(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestCurrentUser_UnknownSession(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.CurrentUser(context.Background(), "no-such-session")
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestLogout_DestroysSession(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "steve")
	ctx := context.Background()

	_, sessionID, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, sessionID))
	_, err = f.svc.CurrentUser(ctx, sessionID)
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestLogoutAll_DestroysEverySession(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := f.svc.Login(ctx, "steve", testPassword, "10.0.0.1")
		require.NoError(t, err)
	}
	require.Equal(t, 3, f.sessions.countFor(user.ID))

	require.NoError(t, f.svc.LogoutAll(ctx, user.ID))
	assert.Equal(t, 0, f.sessions.countFor(user.ID))
}
