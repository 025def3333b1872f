package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// listComments возвращает все комментарии доски, старые первыми.
func (h *ForumHandler) listComments(c *gin.Context) {
	comments, err := h.commentRepo.List(c.Request.Context())
	if err != nil {
		// Ошибки персистентности доски не должны ронять обработчик —
		// наружу уходит общий ответ
		zap.L().Error("Failed to list comments", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Code: models.ErrCodeInternal, Message: "Could not load comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// createComment добавляет комментарий (опционально как ответ на другой).
func (h *ForumHandler) createComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body: " + err.Error()})
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Comment body must not be empty"})
		return
	}
	if len(body) > maxCommentLength {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: fmt.Sprintf("Comment body must not exceed %d characters", maxCommentLength)})
		return
	}

	comment := &models.Comment{
		UserID:   user.ID,
		ParentID: req.ParentID,
		Body:     body,
	}
	if err := h.commentRepo.Insert(c.Request.Context(), comment); err != nil {
		zap.L().Error("Failed to create comment", zap.Error(err), zap.String("userID", user.ID.String()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Code: models.ErrCodeInternal, Message: "Could not save comment"})
		return
	}

	comment.DisplayName = user.DisplayName
	comment.ProfileColor = user.ProfileColor
	comment.ProfileAvatar = user.ProfileAvatar
	c.JSON(http.StatusCreated, comment)
}

// deleteComment удаляет собственный комментарий пользователя.
func (h *ForumHandler) deleteComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid comment id"})
		return
	}

	if err := h.commentRepo.Delete(c.Request.Context(), commentID, user.ID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
