package handler

import (
	"forum-server/internal/chat"
	"forum-server/internal/config"
	"forum-server/internal/interfaces"
	"forum-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionCookieName is the http-only cookie carrying the opaque session id.
const SessionCookieName = "forum_session"

// ForumHandler handles all HTTP and WebSocket endpoints of the forum.
type ForumHandler struct {
	authService  service.AuthService
	resetService service.ResetService
	userRepo     interfaces.UserRepository
	attemptRepo  interfaces.LoginAttemptRepository
	commentRepo  interfaces.CommentRepository
	messageRepo  interfaces.ChatMessageRepository
	room         *chat.Room
	cfg          *config.Config
	wsLogger     zerolog.Logger
}

// NewForumHandler creates the handler with all its collaborators.
func NewForumHandler(
	authService service.AuthService,
	resetService service.ResetService,
	userRepo interfaces.UserRepository,
	attemptRepo interfaces.LoginAttemptRepository,
	commentRepo interfaces.CommentRepository,
	messageRepo interfaces.ChatMessageRepository,
	room *chat.Room,
	cfg *config.Config,
	wsLogger zerolog.Logger,
) *ForumHandler {
	return &ForumHandler{
		authService:  authService,
		resetService: resetService,
		userRepo:     userRepo,
		attemptRepo:  attemptRepo,
		commentRepo:  commentRepo,
		messageRepo:  messageRepo,
		room:         room,
		cfg:          cfg,
		wsLogger:     wsLogger,
	}
}

// RegisterRoutes wires all endpoints into the router.
func (h *ForumHandler) RegisterRoutes(router *gin.Engine) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.SessionMiddleware(), h.logout)
		authGroup.POST("/logout-all", h.SessionMiddleware(), h.logoutAll)
		authGroup.POST("/forgot-password", h.forgotPassword)
		authGroup.GET("/reset-password/validate", h.validateResetToken)
		authGroup.POST("/reset-password", h.resetPassword)
	}

	protected := router.Group("/api")
	protected.Use(h.SessionMiddleware())
	{
		protected.GET("/me", h.getMe)
		protected.PUT("/profile", h.updateProfile)

		protected.GET("/comments", h.listComments)
		protected.POST("/comments", h.createComment)
		protected.DELETE("/comments/:comment_id", h.deleteComment)

		protected.GET("/chat/messages", h.listChatMessages)
		protected.GET("/chat/ws", h.serveChatWS)

		protected.GET("/admin/login-failures", h.getLoginFailures)
	}
}
