package prefs

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultRating is used until the user stores a value of their own.
const DefaultRating = 1500

// ErrInvalidRating is returned for non-positive ratings; the stored value
// is left untouched.
var ErrInvalidRating = errors.New("rating must be a positive number")

// Store holds the two process-wide persisted preferences: the rating sent
// with recommendation requests and the pause flag the session controller
// consults before going active.
type Store interface {
	Rating(ctx context.Context) (int, error)
	SetRating(ctx context.Context, elo int) error
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, v bool) error
	Close() error
}

const (
	keyRating = "bw:pref:rating"
	keyPaused = "bw:pref:paused"
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Rating(ctx context.Context) (int, error) {
	v, err := s.rdb.Get(ctx, keyRating).Int()
	if err == redis.Nil {
		return DefaultRating, nil
	}
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return DefaultRating, nil
	}
	return v, nil
}

func (s *RedisStore) SetRating(ctx context.Context, elo int) error {
	if elo <= 0 {
		return ErrInvalidRating
	}
	return s.rdb.Set(ctx, keyRating, strconv.Itoa(elo), 0).Err()
}

func (s *RedisStore) Paused(ctx context.Context) (bool, error) {
	v, err := s.rdb.Get(ctx, keyPaused).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (s *RedisStore) SetPaused(ctx context.Context, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	return s.rdb.Set(ctx, keyPaused, val, 0).Err()
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// MemoryStore backs the same interface without Redis, for runs without a
// REDIS_URL and for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	rating int
	paused bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rating: DefaultRating}
}

func (s *MemoryStore) Rating(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rating, nil
}

func (s *MemoryStore) SetRating(_ context.Context, elo int) error {
	if elo <= 0 {
		return ErrInvalidRating
	}
	s.mu.Lock()
	s.rating = elo
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Paused(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused, nil
}

func (s *MemoryStore) SetPaused(_ context.Context, v bool) error {
	s.mu.Lock()
	s.paused = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
