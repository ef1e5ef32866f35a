package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/DRadulovich/perazzi-site-sub003/internal/archetypes"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/envutil"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

// SessionStore persists the per-session archetype vector between turns. A
// missing session reads as a fresh neutral vector.
type SessionStore interface {
	Vector(ctx context.Context, sessionID string) (archetypes.Vector, error)
	SaveVector(ctx context.Context, sessionID string, v archetypes.Vector) error
	Close() error
}

type sessionStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(log *logger.Logger) (SessionStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttlHours := envutil.Int("PERAZZI_SESSION_TTL_HOURS", 24)
	if ttlHours <= 0 {
		ttlHours = 24
	}

	return &sessionStore{
		log: log.With("service", "RedisSessionStore"),
		rdb: rdb,
		ttl: time.Duration(ttlHours) * time.Hour,
	}, nil
}

func sessionKey(sessionID string) string {
	return "perazzi:archetypes:" + sessionID
}

func (s *sessionStore) Vector(ctx context.Context, sessionID string) (archetypes.Vector, error) {
	if strings.TrimSpace(sessionID) == "" {
		return archetypes.NewVector(), nil
	}
	raw, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return archetypes.NewVector(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session vector get: %w", err)
	}
	var v archetypes.Vector
	if err := json.Unmarshal(raw, &v); err != nil || !v.Valid() {
		// Corrupt state resets rather than poisoning every later turn.
		s.log.Warn("discarding unreadable session vector", "session_id", sessionID)
		return archetypes.NewVector(), nil
	}
	return v, nil
}

func (s *sessionStore) SaveVector(ctx context.Context, sessionID string, v archetypes.Vector) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session vector encode: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session vector set: %w", err)
	}
	return nil
}

func (s *sessionStore) Close() error {
	return s.rdb.Close()
}
