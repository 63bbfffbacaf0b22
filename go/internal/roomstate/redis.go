package roomstate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	playbackKeyFmt = "room:%s:playback"
	dataKeyFmt     = "room:%s:data:%s"
	dataScanFmt    = "room:%s:data:*"
)

// RedisStore implements Store on top of Redis. Every entry expires after
// the configured TTL; the TTL is refreshed on each write so an active room
// never loses state mid-show.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection settings for the room state store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DefaultRedisConfig returns settings suitable for local development.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr: "localhost:6379",
		TTL:  24 * time.Hour,
	}
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) GetPlaybackStatus(ctx context.Context, roomID uuid.UUID) (*models.PlaybackStatus, bool, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(playbackKeyFmt, roomID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get playback status: %v", ErrStoreUnavailable, err)
	}

	var status models.PlaybackStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, false, fmt.Errorf("unmarshal playback status: %w", err)
	}
	return &status, true, nil
}

func (s *RedisStore) SetPlaybackStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal playback status: %w", err)
	}
	if err := s.client.Set(ctx, fmt.Sprintf(playbackKeyFmt, roomID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set playback status: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) DeletePlaybackStatus(ctx context.Context, roomID uuid.UUID) error {
	if err := s.client.Del(ctx, fmt.Sprintf(playbackKeyFmt, roomID)).Err(); err != nil {
		return fmt.Errorf("%w: delete playback status: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) GetRoomData(ctx context.Context, roomID uuid.UUID, key string) (json.RawMessage, bool, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(dataKeyFmt, roomID, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get room data %q: %v", ErrStoreUnavailable, key, err)
	}
	return json.RawMessage(data), true, nil
}

func (s *RedisStore) SetRoomData(ctx context.Context, roomID uuid.UUID, key string, value json.RawMessage) error {
	if err := s.client.Set(ctx, fmt.Sprintf(dataKeyFmt, roomID, key), []byte(value), s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set room data %q: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *RedisStore) ListRoomKeys(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	pattern := fmt.Sprintf(dataScanFmt, roomID)
	prefix := fmt.Sprintf(dataKeyFmt, roomID, "")

	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: scan room keys: %v", ErrStoreUnavailable, err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
