package models

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"error"`
}

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeWrongCredentials = "wrong_credentials"
	ErrCodeAccountLocked    = "account_locked"
	ErrCodeDuplicateUser    = "duplicate_username"
	ErrCodeDuplicateEmail   = "duplicate_email"
	ErrCodeUserNotFound     = "user_not_found"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeTokenInvalid     = "token_invalid"
	ErrCodeTokenExpired     = "token_expired"
	ErrCodeTransient        = "temporary_failure"
	ErrCodeInternal         = "internal_error"
)
