package handler

import "regexp"

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type createCommentRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

type updateProfileRequest struct {
	DisplayName   *string `json:"display_name,omitempty"`
	ProfileColor  *string `json:"profile_color,omitempty"`
	ProfileAvatar *string `json:"profile_avatar,omitempty"`
}

type meResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	Email         string `json:"email"`
	ProfileColor  string `json:"profile_color"`
	ProfileAvatar string `json:"profile_avatar"`
}

// --- Константы для валидации ---
const (
	minUsernameLength = 3
	maxUsernameLength = 30
	maxPasswordLength = 100
	maxCommentLength  = 5000
	maxMessageLimit   = 200
)

// Регулярное выражение для проверки допустимых символов в имени пользователя
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Цвет профиля в формате #RRGGBB
var profileColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Аватар выбирается из фиксированного набора эмодзи.
var allowedAvatars = map[string]bool{
	"":   true, // пустой аватар допустим, при трансляции подставляется дефолтный глиф
	"👤": true,
	"😀": true,
	"😎": true,
	"🤖": true,
	"🦊": true,
	"🐱": true,
	"🐸": true,
	"🦉": true,
	"🐙": true,
	"🌟": true,
	"🔥": true,
	"🍀": true,
}
