package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisSessionStore implements SessionStore
var _ interfaces.SessionStore = (*redisSessionStore)(nil)

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionStore creates a new Redis-backed SessionStore.
// We store two structures per session:
//  1. session:{sessionID} -> UserID (with TTL)
//  2. user_sessions:{UserID} -> set of session IDs, so DestroyAllForUser does
//     not need a key scan.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.SessionStore {
	return &redisSessionStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionStore"),
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func userSessionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_sessions:%s", userID.String())
}

// Create issues a new session id bound to the user.
func (s *redisSessionStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	sessionID := uuid.NewString()
	userIDStr := userID.String()

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(sessionID), userIDStr, s.ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sessionID)

	s.logger.Debug("Creating session in Redis",
		zap.String("userID", userIDStr),
		zap.String("sessionID", sessionID),
		zap.Duration("ttl", s.ttl),
	)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("Failed to create session in redis", zap.Error(err), zap.String("userID", userIDStr))
		return "", fmt.Errorf("failed to create session in redis: %w", err)
	}
	return sessionID, nil
}

// Get resolves a session id to the owning user id.
func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (uuid.UUID, error) {
	userIDStr, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.Debug("Session not found in Redis", zap.String("sessionID", sessionID))
			return uuid.Nil, models.ErrSessionNotFound
		}
		s.logger.Error("Failed to get session from redis", zap.Error(err), zap.String("sessionID", sessionID))
		return uuid.Nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		// Данные в Redis повреждены
		s.logger.Error("Failed to parse userID (UUID) from redis session data",
			zap.Error(err),
			zap.String("sessionID", sessionID),
			zap.String("value", userIDStr),
		)
		return uuid.Nil, fmt.Errorf("corrupted userID data in redis for session %s: %w", sessionID, err)
	}
	return userID, nil
}

// Destroy removes a single session. Destroying an absent session is not an error.
func (s *redisSessionStore) Destroy(ctx context.Context, sessionID string) error {
	// Сначала узнаем владельца, чтобы убрать сессию из его набора
	userIDStr, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Error("Failed to look up session owner during destroy", zap.Error(err), zap.String("sessionID", sessionID))
		return fmt.Errorf("failed to look up session owner: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	if userIDStr != "" {
		pipe.SRem(ctx, fmt.Sprintf("user_sessions:%s", userIDStr), sessionID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("Failed to destroy session in redis", zap.Error(err), zap.String("sessionID", sessionID))
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	s.logger.Info("Session destroyed", zap.String("sessionID", sessionID))
	return nil
}

// DestroyAllForUser removes every live session belonging to the user using the
// per-user set.
func (s *redisSessionStore) DestroyAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := s.logger.With(zap.String("userID", userID.String()))
	setKey := userSessionsKey(userID)

	sessionIDs, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			log.Info("No session set found for user, nothing to destroy.")
			return 0, nil
		}
		log.Error("Failed to get session ids from user set", zap.Error(err))
		return 0, fmt.Errorf("failed to retrieve session ids for user %s: %w", userID, err)
	}

	if len(sessionIDs) == 0 {
		// Удаляем пустой набор на всякий случай
		s.client.Del(ctx, setKey)
		return 0, nil
	}

	keysToDelete := make([]string, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		keysToDelete = append(keysToDelete, sessionKey(id))
	}

	pipe := s.client.Pipeline()
	delCmd := pipe.Del(ctx, keysToDelete...)
	pipe.Del(ctx, setKey)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("Failed to execute pipeline for destroying user sessions", zap.Error(err))
		return 0, fmt.Errorf("failed to destroy sessions for user %s: %w", userID, err)
	}

	destroyed, _ := delCmd.Result()
	log.Info("Destroyed all sessions for user", zap.Int64("destroyed", destroyed))
	return destroyed, nil
}
