package handler

import (
	"net/http"
	"strconv"

	"forum-server/internal/chat"
	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin проверяется CORS-слоем выше, сюда доходят только свои
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveChatWS поднимает WebSocket соединение для уже аутентифицированного
// пользователя (сессионная кука проверена в SessionMiddleware).
func (h *ForumHandler) serveChatWS(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader уже записал ответ об ошибке
		zap.L().Error("Failed to upgrade connection", zap.Error(err), zap.String("userID", user.ID.String()))
		return
	}

	chatConnectionsActive.Inc()

	client := chat.NewClient(h.room, conn, user, h.wsLogger)
	client.OnClose(func() { chatConnectionsActive.Dec() })
	client.Start()
}

// listChatMessages отдает хвост истории комнаты.
func (h *ForumHandler) listChatMessages(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxMessageLimit {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Query parameter 'limit' must be between 1 and 200"})
			return
		}
		limit = parsed
	}

	messages, err := h.messageRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		zap.L().Error("Failed to list chat messages", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Code: models.ErrCodeInternal, Message: "Could not load chat history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
