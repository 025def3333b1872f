package handler

import (
	"errors"
	"fmt"
	"net/http"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	var lockedErr *models.AccountLockedError
	var validationErr *models.ValidationError
	var transientErr *models.TransientError

	switch {
	case errors.As(err, &lockedErr):
		statusCode = http.StatusLocked
		errResp = models.ErrorResponse{
			Code:    models.ErrCodeAccountLocked,
			Message: fmt.Sprintf("Account is temporarily locked. Try again in %d minute(s).", lockedErr.RemainingMinutes()),
		}
	case errors.As(err, &validationErr):
		// Список нарушений отдаем по одному правилу на запись
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"code":       models.ErrCodeValidation,
			"error":      "Password does not meet the policy",
			"violations": validationErr.Violations,
		})
		return
	case errors.As(err, &transientErr):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Code: models.ErrCodeTransient, Message: "A temporary failure occurred, please try again later"}
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeWrongCredentials, Message: "Invalid username or password"}
	case errors.Is(err, models.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeDuplicateUser, Message: "Username already exists"}
	case errors.Is(err, models.ErrEmailAlreadyExists):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeDuplicateEmail, Message: "Email already exists"}
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeUserNotFound, Message: "User not found"}
	case errors.Is(err, models.ErrCommentNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Comment not found"}
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenExpired, Message: "Reset token has expired"}
	case errors.Is(err, models.ErrTokenNotFound):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Reset token is invalid or already used"}
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrSessionNotFound):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: "Authentication required"}
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: err.Error()}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
