package chat

import (
	"context"
	"encoding/json"
	"time"

	"forum-server/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги клиенту с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Максимальный размер сообщения, разрешенный от клиента.
	maxMessageSize = 4096

	// Буфер исходящей очереди одного соединения.
	sendQueueSize = 256
)

// Client is one WebSocket connection of an authenticated user.
type Client struct {
	ID   uuid.UUID
	user *models.User
	conn *websocket.Conn
	send chan []byte
	room *Room

	onClose func()
	logger  zerolog.Logger
}

// OnClose registers a callback invoked once when the connection shuts down.
// Must be called before Start.
func (c *Client) OnClose(fn func()) {
	c.onClose = fn
}

// NewClient wraps an upgraded connection and registers it in the room.
func NewClient(room *Room, conn *websocket.Conn, user *models.User, logger zerolog.Logger) *Client {
	connID := uuid.New()
	c := &Client{
		ID:   connID,
		user: user,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		room: room,
		logger: logger.With().
			Str("component", "ChatClient").
			Str("connID", connID.String()).
			Str("userID", user.ID.String()).
			Logger(),
	}
	room.Register(c.ID, c.send)
	return c
}

// Start launches the read and write pumps. Returns immediately.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump откачивает сообщения от WebSocket соединения и диспатчит события.
func (c *Client) readPump() {
	defer func() {
		c.room.Leave(c.ID)
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
		c.logger.Info().Msg("readPump finished")
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket read error")
			} else {
				c.logger.Info().Msg("WebSocket connection closed (expected)")
			}
			break
		}
		c.dispatch(message)
	}
}

// dispatch parses one inbound envelope and routes it. Errors are logged and
// never terminate the connection.
func (c *Client) dispatch(message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.logger.Warn().Err(err).Msg("Malformed inbound event ignored")
		return
	}

	switch env.Event {
	case EventJoinChat:
		var payload JoinPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Malformed join-chat payload ignored")
			return
		}
		// Идентичность берем из аутентифицированного пользователя, клиентский
		// payload может быть устаревшим
		c.room.Join(c.ID, Identity{
			UserID:        c.user.ID,
			Username:      c.user.Username,
			DisplayName:   c.user.DisplayName,
			ProfileColor:  c.user.ProfileColor,
			ProfileAvatar: c.user.ProfileAvatar,
		})

	case EventChatMessage:
		var payload ChatMessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Malformed chat-message payload ignored")
			return
		}
		c.room.SendMessage(context.Background(), c.ID, payload.Message, payload.UserID)

	default:
		c.logger.Debug().Str("event", env.Event).Msg("Unknown inbound event ignored")
	}
}

// writePump откачивает сообщения из канала send в WebSocket соединение.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.logger.Info().Msg("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Каждое событие — отдельный текстовый фрейм, чтобы клиент
			// разбирал JSON без разделителей
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error().Err(err).Msg("Failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to send ping")
				return
			}
		}
	}
}
