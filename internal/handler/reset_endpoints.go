package handler

import (
	"net/http"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
)

// genericResetMessage намеренно одинаков для существующих и несуществующих
// адресов, чтобы по ответу нельзя было перечислять аккаунты.
const genericResetMessage = "If an account with that email exists, a reset link has been sent."

// forgotPassword запускает выдачу токена сброса пароля.
func (h *ForumHandler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		// Сбой доставки письма — единственный путь, который отличается снаружи
		handleServiceError(c, err)
		return
	}

	passwordResetRequestsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
}

// validateResetToken проверяет токен до показа формы нового пароля.
func (h *ForumHandler) validateResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Query parameter 'token' is required"})
		return
	}

	status, err := h.resetService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status.String(), "valid": status == models.TokenValid})
}

// resetPassword погашает токен и устанавливает новый пароль.
func (h *ForumHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.resetService.ConsumeToken(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		handleServiceError(c, err)
		return
	}

	passwordResetsCompletedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset. Please log in with your new password."})
}
