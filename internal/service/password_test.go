package service

import (
	"testing"

	"forum-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordPolicy(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		violations int
	}{
		{"valid", "Sup3r-Secret!", 0},
		{"too short but otherwise fine", "Ab1!", 1},
		{"no uppercase", "lowercase1!", 1},
		{"no digit", "NoDigitsHere!", 1},
		{"no special", "NoSpecial123", 1},
		{"everything wrong", "abc", 4},
		{"empty", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordPolicy(tt.password)
			if tt.violations == 0 {
				require.NoError(t, err)
				return
			}
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Len(t, validationErr.Violations, tt.violations)
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "mysecretpassword"
	pepper := "test-pepper"

	hashedPassword, err := hashPassword(password, pepper)
	require.NoError(t, err, "hashPassword should not return an error")
	require.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)

	assert.True(t, checkPasswordHash(password, hashedPassword, pepper))
	assert.False(t, checkPasswordHash("wrongpassword", hashedPassword, pepper))
	// Без правильного перца проверка не проходит
	assert.False(t, checkPasswordHash(password, hashedPassword, "another-pepper"))
	// Невалидный хеш не матчится
	assert.False(t, checkPasswordHash(password, "not-a-bcrypt-hash", pepper))
}
