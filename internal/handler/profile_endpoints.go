package handler

import (
	"net/http"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// updateProfile меняет отображаемые поля профиля. Смена аватара дополнительно
// анонсируется всей чат-комнате.
func (h *ForumHandler) updateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body: " + err.Error()})
		return
	}

	if req.DisplayName == nil && req.ProfileColor == nil && req.ProfileAvatar == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Nothing to update"})
		return
	}

	if req.DisplayName != nil && (*req.DisplayName == "" || len(*req.DisplayName) > maxUsernameLength) {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid display name"})
		return
	}
	if req.ProfileColor != nil && !profileColorRegex.MatchString(*req.ProfileColor) {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Profile color must be a #RRGGBB value"})
		return
	}
	if req.ProfileAvatar != nil && !allowedAvatars[*req.ProfileAvatar] {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Avatar is not in the allowed set"})
		return
	}

	if err := h.userRepo.UpdateProfile(c.Request.Context(), user.ID, req.DisplayName, req.ProfileColor, req.ProfileAvatar); err != nil {
		// Ошибки персистентности профиля наружу уходят общим сообщением
		zap.L().Error("Failed to update profile", zap.Error(err), zap.String("userID", user.ID.String()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Code: models.ErrCodeInternal, Message: "Could not update profile"})
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.ProfileColor != nil {
		user.ProfileColor = *req.ProfileColor
	}
	if req.ProfileAvatar != nil {
		user.ProfileAvatar = *req.ProfileAvatar
		// Хук для чата: avatar-updated рассылается всей комнате без исключений
		h.room.AnnounceAvatarChange(user.ID, user.Username, user.DisplayName, user.ProfileAvatar)
	}

	c.JSON(http.StatusOK, toMeResponse(user))
}
