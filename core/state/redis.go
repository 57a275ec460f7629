package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/logger"
	"log/slog"
)

// sessionTTL bounds how long an abandoned conversation survives in Redis.
const sessionTTL = 24 * time.Hour

const keyPrefix = "session:"

type redisManager struct {
	client *redis.Client
}

// NewRedisManager constructs a Manager backed by Redis so sessions survive restarts.
func NewRedisManager(cfg coreconfig.RedisConfig) (Manager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redisManager{client: client}, nil
}

// NewRedisManagerWithClient wraps an existing client, used by tests.
func NewRedisManagerWithClient(client *redis.Client) Manager {
	return &redisManager{client: client}
}

func (m *redisManager) load(userID string) *Session {
	ctx := context.Background()
	raw, err := m.client.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "state", "session.load_failed",
				slog.String("status", "fail"),
				slog.String("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		return &Session{State: StateIdle, TempData: make(map[string]any)}
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		logger.Warn(ctx, "state", "session.decode_failed",
			slog.String("status", "fail"),
			slog.String("user_id", userID),
			slog.String("err", err.Error()),
		)
		return &Session{State: StateIdle, TempData: make(map[string]any)}
	}
	if sess.State == "" {
		sess.State = StateIdle
	}
	if sess.TempData == nil {
		sess.TempData = make(map[string]any)
	}
	return &sess
}

func (m *redisManager) save(userID string, sess *Session) {
	ctx := context.Background()
	raw, err := json.Marshal(sess)
	if err != nil {
		logger.Warn(ctx, "state", "session.encode_failed",
			slog.String("status", "fail"),
			slog.String("user_id", userID),
			slog.String("err", err.Error()),
		)
		return
	}
	if err := m.client.Set(ctx, keyPrefix+userID, raw, sessionTTL).Err(); err != nil {
		logger.Warn(ctx, "state", "session.save_failed",
			slog.String("status", "fail"),
			slog.String("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// Get returns the stored session for a user, or a default idle session.
func (m *redisManager) Get(userID string) *Session {
	return m.load(userID)
}

// SetState sets the FSM state for the given user.
func (m *redisManager) SetState(userID string, st State) {
	sess := m.load(userID)
	sess.State = st
	m.save(userID, sess)
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *redisManager) GetState(userID string) State {
	return m.load(userID).State
}

// HasState checks if a user has an active state other than idle.
func (m *redisManager) HasState(userID string) bool {
	return m.load(userID).State != StateIdle
}

// ClearState resets the FSM state to idle without removing session data.
func (m *redisManager) ClearState(userID string) {
	sess := m.load(userID)
	sess.State = StateIdle
	m.save(userID, sess)
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *redisManager) SetTemp(userID string, key string, value any) {
	sess := m.load(userID)
	sess.TempData[key] = value
	m.save(userID, sess)
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *redisManager) GetTemp(userID string, key string) (any, bool) {
	sess := m.load(userID)
	val, ok := sess.TempData[key]
	return val, ok
}

// GetTempString retrieves a temporary value by key and asserts it as string.
func (m *redisManager) GetTempString(userID string, key string) (string, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return "", false
	}
	v, ok := val.(string)
	if !ok {
		return "", false
	}
	return v, true
}

// GetTempInt64 retrieves a temporary value by key and asserts it as int64.
// JSON round-trips store numbers as float64, so both encodings are accepted.
func (m *redisManager) GetTempInt64(userID string, key string) (int64, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ClearTemp removes a temporary key/value pair for the given user session.
func (m *redisManager) ClearTemp(userID string, key string) {
	sess := m.load(userID)
	delete(sess.TempData, key)
	m.save(userID, sess)
}

// Clear removes the entire session for a user.
func (m *redisManager) Clear(userID string) {
	ctx := context.Background()
	if err := m.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		logger.Warn(ctx, "state", "session.clear_failed",
			slog.String("status", "fail"),
			slog.String("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// InProgress reports whether the user currently has an active FSM state.
func (m *redisManager) InProgress(userID string) bool {
	return m.HasState(userID)
}
