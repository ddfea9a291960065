package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisSessionKey = "hrportal:sessions"

// RedisSessionStore keeps every session as one field of a single hash so a
// Save replaces the table atomically.
type RedisSessionStore struct {
	client  redis.UniversalClient
	key     string
	timeout time.Duration
}

func NewRedisSessionStore(client redis.UniversalClient, key string) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if key == "" {
		key = defaultRedisSessionKey
	}
	return &RedisSessionStore{client: client, key: key, timeout: 5 * time.Second}, nil
}

func (s *RedisSessionStore) Load() (map[string]Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall sessions: %w", err)
	}
	return decodeSessionFields(fields)
}

func (s *RedisSessionStore) Save(sessions map[string]Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	fields, err := encodeSessionFields(sessions)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save sessions: %w", err)
	}
	return nil
}

func encodeSessionFields(sessions map[string]Session) (map[string]any, error) {
	fields := make(map[string]any, len(sessions))
	for token, sess := range sessions {
		b, err := json.Marshal(sess)
		if err != nil {
			return nil, fmt.Errorf("encode session: %w", err)
		}
		fields[token] = string(b)
	}
	return fields, nil
}

func decodeSessionFields(fields map[string]string) (map[string]Session, error) {
	out := make(map[string]Session, len(fields))
	for token, raw := range fields {
		var sess Session
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			return nil, fmt.Errorf("decode session %q: %w", token, err)
		}
		out[token] = sess
	}
	return out, nil
}
