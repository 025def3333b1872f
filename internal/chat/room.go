package chat

import (
	"context"
	"sync"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RoomName — единственная логическая комната чата.
const RoomName = "main-chat"

// Identity is the display identity of a room participant. It lives only in
// process memory for the lifetime of the connection.
type Identity struct {
	UserID        uuid.UUID
	Username      string
	DisplayName   string
	ProfileColor  string
	ProfileAvatar string
}

// member is one registered connection. identitySet flips on join; a connection
// that disconnects before joining emits no presence events.
type member struct {
	send        chan []byte
	identity    Identity
	identitySet bool
}

// Room is the broadcast engine for the single chat room. The participant map
// is shared mutable state; every access goes through the mutex so handlers on
// different connection goroutines never observe a mid-mutation map.
type Room struct {
	users    interfaces.UserRepository
	messages interfaces.ChatMessageRepository
	logger   zerolog.Logger

	mu      sync.RWMutex
	members map[uuid.UUID]*member // connection id -> member

	now func() time.Time
}

// NewRoom creates the chat room.
func NewRoom(users interfaces.UserRepository, messages interfaces.ChatMessageRepository, logger zerolog.Logger) *Room {
	return &Room{
		users:    users,
		messages: messages,
		logger:   logger.With().Str("component", "ChatRoom").Str("room", RoomName).Logger(),
		members:  make(map[uuid.UUID]*member),
		now:      time.Now,
	}
}

// Register adds a connection to the room without an identity. Presence events
// start only after Join.
func (r *Room) Register(connID uuid.UUID, send chan []byte) {
	r.mu.Lock()
	// Повторная регистрация того же соединения затирает старый канал
	r.members[connID] = &member{send: send}
	r.mu.Unlock()
	r.logger.Debug().Str("connID", connID.String()).Msg("Connection registered")
}

// Join attaches the identity to a registered connection and broadcasts
// user-joined to every other room member. Fire-and-forget, no acknowledgment.
func (r *Room) Join(connID uuid.UUID, identity Identity) {
	r.mu.Lock()
	m, ok := r.members[connID]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn().Str("connID", connID.String()).Msg("Join for unregistered connection ignored")
		return
	}
	m.identity = identity
	m.identitySet = true
	r.mu.Unlock()

	r.logger.Info().
		Str("connID", connID.String()).
		Str("username", identity.Username).
		Msg("Participant joined room")

	data, err := encodeEvent(EventUserJoined, PresencePayload{
		Username:  identity.Username,
		Timestamp: r.now(),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to encode user-joined event")
		return
	}
	r.broadcast(data, connID)
}

// SendMessage persists a message and fans it out: new-message to every member
// except the sender, message-sent with the identical payload to the sender only.
// Empty text or a missing user id silently drops the message.
func (r *Room) SendMessage(ctx context.Context, connID uuid.UUID, text string, userID uuid.UUID) {
	if text == "" || userID == uuid.Nil {
		r.logger.Debug().Str("connID", connID.String()).Msg("Dropping chat message with empty text or user id")
		return
	}

	log := r.logger.With().Str("connID", connID.String()).Str("userID", userID.String()).Logger()

	// Актуальные поля профиля берем из базы, а не из памяти комнаты
	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load sender for chat message")
		return
	}

	msg := &models.ChatMessage{UserID: userID, Message: text}
	if err := r.messages.Insert(ctx, msg); err != nil {
		log.Error().Err(err).Msg("Failed to persist chat message")
		return
	}

	payload := MessagePayload{
		ID:            msg.ID,
		Message:       msg.Message,
		UserID:        user.ID,
		DisplayName:   user.DisplayName,
		Username:      user.Username,
		ProfileColor:  user.ProfileColor,
		ProfileAvatar: avatarOrDefault(user.ProfileAvatar),
		CreatedAt:     msg.CreatedAt,
	}

	newMsg, err := encodeEvent(EventNewMessage, payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode new-message event")
		return
	}
	sent, err := encodeEvent(EventMessageSent, payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode message-sent event")
		return
	}

	r.broadcast(newMsg, connID)
	r.sendTo(connID, sent)
	log.Debug().Int64("messageID", msg.ID).Msg("Chat message broadcast")
}

// Leave removes a connection from the room and, if it had joined, broadcasts
// user-left with the last-known identity. Idempotent: a second Leave for the
// same connection id is a no-op and emits nothing.
func (r *Room) Leave(connID uuid.UUID) {
	r.mu.Lock()
	m, ok := r.members[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.members, connID)
	r.mu.Unlock()

	r.logger.Debug().Str("connID", connID.String()).Msg("Connection left room")

	if !m.identitySet {
		// Соединение закрылось до join, событий не шлем
		return
	}

	data, err := encodeEvent(EventUserLeft, PresencePayload{
		Username:  m.identity.Username,
		Timestamp: r.now(),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to encode user-left event")
		return
	}
	r.broadcast(data, connID)
}

// AnnounceAvatarChange fans out avatar-updated to the whole room, the changing
// user's own connections included. Called by the profile update path.
func (r *Room) AnnounceAvatarChange(userID uuid.UUID, username, displayName, newAvatar string) {
	data, err := encodeEvent(EventAvatarUpdated, AvatarUpdatedPayload{
		UserID:      userID,
		Username:    username,
		DisplayName: displayName,
		NewAvatar:   avatarOrDefault(newAvatar),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to encode avatar-updated event")
		return
	}
	r.broadcast(data, uuid.Nil)
	r.logger.Info().Str("userID", userID.String()).Msg("Avatar change announced to room")
}

// MemberCount returns the number of registered connections.
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// broadcast enqueues data for every member except the excluded connection.
// Delivery is best-effort: a full send queue drops the event for that member.
func (r *Room) broadcast(data []byte, exclude uuid.UUID) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for connID, m := range r.members {
		if connID == exclude {
			continue
		}
		select {
		case m.send <- data:
		default:
			r.logger.Warn().Str("connID", connID.String()).Msg("Send queue full, dropping event")
		}
	}
}

// sendTo enqueues data for a single connection, best-effort.
func (r *Room) sendTo(connID uuid.UUID, data []byte) {
	r.mu.RLock()
	m, ok := r.members[connID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case m.send <- data:
	default:
		r.logger.Warn().Str("connID", connID.String()).Msg("Send queue full, dropping event")
	}
}

// avatarOrDefault substitutes the default glyph for an empty stored avatar.
func avatarOrDefault(avatar string) string {
	if avatar == "" {
		return DefaultAvatar
	}
	return avatar
}
