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

type resetFixture struct {
	svc      *resetServiceImpl
	users    *fakeUserRepo
	tokens   *fakeResetTokenRepo
	sessions *fakeSessionStore
	mailer   *fakeMailer
	clock    *fakeClock
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	cfg := &config.Config{
		PasswordPepper: testPepper,
		ResetTokenTTL:  time.Hour,
	}

	users := newFakeUserRepo()
	tokens := newFakeResetTokenRepo()
	sessions := newFakeSessionStore()
	mail := &fakeMailer{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	svc := NewResetService(users, tokens, sessions, mail, cfg, zap.NewNop()).(*resetServiceImpl)
	svc.now = clock.Now

	return &resetFixture{svc: svc, users: users, tokens: tokens, sessions: sessions, mailer: mail, clock: clock}
}

func (f *resetFixture) addUser(t *testing.T, username string) *models.User {
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

func TestRequestReset_IssuesTokenAndSendsEmail(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")

	err := f.svc.RequestReset(context.Background(), "Steve@Example.com")
	require.NoError(t, err)

	token, ok := f.tokens.tokenFor(user.ID)
	require.True(t, ok)
	// 32 случайных байта в hex
	assert.Len(t, token.Token, 64)
	assert.Equal(t, f.clock.Now().Add(time.Hour), token.ExpiresAt)
	assert.Equal(t, 1, f.mailer.sentCount())
	assert.Equal(t, "steve@example.com", f.mailer.sent[0])
}

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	f := newResetFixture(t)

	// Ответ для несуществующего адреса неотличим от успешного
	err := f.svc.RequestReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, f.mailer.sentCount())
}

func TestRequestReset_ReplacesPriorToken(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	first, _ := f.tokens.tokenFor(user.ID)

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	second, _ := f.tokens.tokenFor(user.ID)

	// На пользователя живет максимум один токен, старый перестает работать
	assert.NotEqual(t, first.Token, second.Token)
	status, err := f.svc.ValidateToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenNotFound, status)
}

func TestRequestReset_MailFailureIsTransientAndKeepsToken(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	f.mailer.sendErr = errors.New("smtp connection refused")

	err := f.svc.RequestReset(context.Background(), "steve@example.com")
	var transientErr *models.TransientError
	require.ErrorAs(t, err, &transientErr)
	assert.Equal(t, "email_dispatch", transientErr.Op)

	// Токен сохранен: повторный запрос просто заменит его
	_, ok := f.tokens.tokenFor(user.ID)
	assert.True(t, ok)
}

func TestValidateToken_States(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	token, _ := f.tokens.tokenFor(user.ID)

	status, err := f.svc.ValidateToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenValid, status)

	status, err = f.svc.ValidateToken(ctx, "unknown-token")
	require.NoError(t, err)
	assert.Equal(t, models.TokenNotFound, status)

	f.clock.Advance(time.Hour + time.Minute)
	status, err = f.svc.ValidateToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenExpired, status)
}

func TestConsumeToken_ChangesPasswordAndKillsSessions(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	// Живые сессии пользователя
	_, err := f.sessions.Create(ctx, user.ID)
	require.NoError(t, err)
	_, err = f.sessions.Create(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	token, _ := f.tokens.tokenFor(user.ID)

	newPassword := "Brand-New-Pass9!"
	require.NoError(t, f.svc.ConsumeToken(ctx, token.Token, newPassword, newPassword))

	stored := f.users.get(user.ID)
	assert.True(t, checkPasswordHash(newPassword, stored.PasswordHash, testPepper))
	assert.False(t, checkPasswordHash(testPassword, stored.PasswordHash, testPepper))

	// Все сессии пользователя уничтожены
	assert.Equal(t, 0, f.sessions.countFor(user.ID))
}

func TestConsumeToken_SingleUse(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	token, _ := f.tokens.tokenFor(user.ID)

	newPassword := "Brand-New-Pass9!"
	require.NoError(t, f.svc.ConsumeToken(ctx, token.Token, newPassword, newPassword))

	// Повторное погашение того же токена невозможно
	err := f.svc.ConsumeToken(ctx, token.Token, "Another-Pass7?", "Another-Pass7?")
	require.ErrorIs(t, err, models.ErrTokenNotFound)
}

func TestConsumeToken_Expired(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	token, _ := f.tokens.tokenFor(user.ID)

	f.clock.Advance(2 * time.Hour)
	err := f.svc.ConsumeToken(ctx, token.Token, "Brand-New-Pass9!", "Brand-New-Pass9!")
	require.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestConsumeToken_ConfirmationMismatch(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	token, _ := f.tokens.tokenFor(user.ID)

	err := f.svc.ConsumeToken(ctx, token.Token, "Brand-New-Pass9!", "Different-Pass9!")
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Токен не потрачен на неудачной валидации
	status, verr := f.svc.ValidateToken(ctx, token.Token)
	require.NoError(t, verr)
	assert.Equal(t, models.TokenValid, status)
}

func TestConsumeToken_WeakPasswordKeepsToken(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "steve")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "steve@example.com"))
	token, _ := f.tokens.tokenFor(user.ID)

	err := f.svc.ConsumeToken(ctx, token.Token, "weak", "weak")
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Violations)

	_, ok := f.tokens.tokenFor(user.ID)
	assert.True(t, ok)
}
