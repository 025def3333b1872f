package models

import "time"

// AttemptReason classifies the outcome of a single login attempt in the ledger.
type AttemptReason string

const (
	AttemptSuccess            AttemptReason = "success"
	AttemptInvalidPassword    AttemptReason = "invalid_password"
	AttemptUserNotFound       AttemptReason = "user_not_found"
	AttemptAccountLocked      AttemptReason = "account_locked"
	AttemptLockedAfterRetries AttemptReason = "account_locked_after_attempts"
)

// LoginAttempt is an immutable audit record of a login attempt.
// The username is stored as supplied, it does not have to reference an existing user.
type LoginAttempt struct {
	ID        int64         `db:"id"`
	Username  string        `db:"username"`
	IPAddress string        `db:"ip_address"`
	Success   bool          `db:"success"`
	Reason    AttemptReason `db:"failure_reason"`
	CreatedAt time.Time     `db:"created_at"`
}
