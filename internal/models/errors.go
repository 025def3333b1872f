package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Application-wide standard errors
var (
	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")

	// Session Errors
	ErrSessionNotFound = errors.New("session not found in storage")

	// Board Errors
	ErrCommentNotFound = errors.New("comment not found")

	// Reset Token Errors
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenExpired  = errors.New("reset token has expired")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)

// AccountLockedError is returned when a login attempt hits a locked account.
// It carries the remaining lockout duration for user-facing messaging.
type AccountLockedError struct {
	Until     time.Time
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	minutes := int(e.Remaining.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("account is locked, try again in %d minute(s)", minutes)
}

// RemainingMinutes возвращает остаток блокировки в минутах, округляя вверх до 1.
func (e *AccountLockedError) RemainingMinutes() int {
	minutes := int(e.Remaining.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// ValidationError reports one or more policy violations for user input.
// Violations are surfaced to the caller verbatim, one entry per unmet rule.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Violations, "; ")
}

// TransientError wraps a failure of an external dependency (email dispatch,
// ledger write) that the caller may retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
