package handler

import (
	"net/http"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextUserKey = "current_user"

// SessionMiddleware resolves the session cookie to a user and stores it in the
// request context. Requests without a valid session are rejected.
func (h *ForumHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    models.ErrCodeUnauthorized,
				Message: "Authentication required",
			})
			return
		}

		user, err := h.authService.CurrentUser(c.Request.Context(), sessionID)
		if err != nil {
			zap.L().Debug("Session resolution failed", zap.Error(err))
			handleServiceError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Set("session_id", sessionID)
		c.Next()
	}
}

// currentUser extracts the authenticated user stored by SessionMiddleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
