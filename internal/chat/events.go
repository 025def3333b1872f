package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Wire event names. Inbound events come from the client, outbound events are
// fanned out by the room.
const (
	EventJoinChat      = "join-chat"
	EventChatMessage   = "chat-message"
	EventNewMessage    = "new-message"
	EventMessageSent   = "message-sent"
	EventUserJoined    = "user-joined"
	EventUserLeft      = "user-left"
	EventAvatarUpdated = "avatar-updated"
)

// DefaultAvatar is broadcast whenever a participant has no stored avatar.
const DefaultAvatar = "👤"

// Envelope frames every event on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// encodeEvent marshals an outbound event into a framed wire message.
func encodeEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// JoinPayload is the client-supplied identity on room join.
type JoinPayload struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"displayName"`
	ProfileColor  string    `json:"profileColor"`
	ProfileAvatar string    `json:"profileAvatar"`
}

// ChatMessagePayload is an inbound message submission.
type ChatMessagePayload struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"userId"`
}

// MessagePayload is the outbound shape of new-message and message-sent.
// Display fields are a denormalized snapshot joined in at send time; they are
// not stored with the message.
type MessagePayload struct {
	ID            int64     `json:"id"`
	Message       string    `json:"message"`
	UserID        uuid.UUID `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	Username      string    `json:"username"`
	ProfileColor  string    `json:"profile_color"`
	ProfileAvatar string    `json:"profile_avatar"`
	CreatedAt     time.Time `json:"created_at"`
}

// PresencePayload is the outbound shape of user-joined and user-left.
type PresencePayload struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// AvatarUpdatedPayload is the outbound shape of avatar-updated.
type AvatarUpdatedPayload struct {
	UserID      uuid.UUID `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	NewAvatar   string    `json:"newAvatar"`
}
