package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// register создает новый аккаунт пользователя.
func (h *ForumHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	if len(req.Username) < minUsernameLength || len(req.Username) > maxUsernameLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: fmt.Sprintf("Username length must be between %d and %d characters", minUsernameLength, maxUsernameLength)}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Username can only contain letters, numbers, underscores, and hyphens"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if len(req.Password) > maxPasswordLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: fmt.Sprintf("Password length must not exceed %d characters", maxPasswordLength)}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.DisplayName, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"id":           user.ID.String(),
		"username":     user.Username,
		"display_name": user.DisplayName,
		"email":        user.Email,
	})
}

// login аутентифицирует пользователя и выставляет сессионную куку.
func (h *ForumHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body: " + err.Error()})
		return
	}

	user, sessionID, err := h.authService.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		var lockedErr *models.AccountLockedError
		switch {
		case errors.As(err, &lockedErr):
			loginAttemptsTotal.WithLabelValues("locked").Inc()
			accountLockoutsTotal.Inc()
		case errors.Is(err, models.ErrInvalidCredentials):
			loginAttemptsTotal.WithLabelValues("failure").Inc()
		default:
			loginAttemptsTotal.WithLabelValues("error").Inc()
		}
		handleServiceError(c, err)
		return
	}

	loginAttemptsTotal.WithLabelValues("success").Inc()

	h.setSessionCookie(c, sessionID)
	c.JSON(http.StatusOK, toMeResponse(user))
}

// logout уничтожает текущую сессию.
func (h *ForumHandler) logout(c *gin.Context) {
	sessionID := c.GetString("session_id")
	if err := h.authService.Logout(c.Request.Context(), sessionID); err != nil {
		handleServiceError(c, err)
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// logoutAll уничтожает все сессии пользователя.
func (h *ForumHandler) logoutAll(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	if err := h.authService.LogoutAll(c.Request.Context(), user.ID); err != nil {
		handleServiceError(c, err)
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "All sessions terminated"})
}

// getMe возвращает профиль текущего пользователя.
func (h *ForumHandler) getMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, toMeResponse(user))
}

// getLoginFailures — диагностика: число неудачных попыток за окно.
func (h *ForumHandler) getLoginFailures(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Query parameter 'username' is required"})
		return
	}
	minutes := 60
	if raw := c.Query("minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Query parameter 'minutes' must be a positive integer"})
			return
		}
		minutes = parsed
	}

	count, err := h.attemptRepo.CountRecentFailures(c.Request.Context(), username, minutes)
	if err != nil {
		zap.L().Error("Failed to count recent login failures", zap.Error(err), zap.String("username", username))
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"minutes":  minutes,
		"failures": count,
	})
}

func (h *ForumHandler) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sessionID, int(h.cfg.SessionTTL.Seconds()), "/", "", h.cfg.Env == "production", true)
}

func (h *ForumHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.cfg.Env == "production", true)
}

func toMeResponse(user *models.User) meResponse {
	return meResponse{
		ID:            user.ID.String(),
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		Email:         user.Email,
		ProfileColor:  user.ProfileColor,
		ProfileAvatar: user.ProfileAvatar,
	}
}
