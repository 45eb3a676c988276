package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"Ubermelon/internal/cart"
)

const (
	keyNamespace = "ubermelon"
	cartPrefix   = "cart"
	flashPrefix  = "flash"
)

type cmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RedisStore keeps each cart in a hash keyed by melon id. Every write and its
// EXPIRE run in one MULTI/EXEC, so a key never outlives its session and
// multiple storefront processes can share the store.
type RedisStore struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{store: raw, raw: raw, ttl: ttl}, nil
}

func (s *RedisStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}

func (s *RedisStore) Cart(ctx context.Context, sessionID string) (cart.Cart, error) {
	raw, err := s.store.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return cart.Cart{}, err
	}

	q := make(map[string]int, len(raw))
	for id, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cart.Cart{}, fmt.Errorf("cart %s: quantity for %s: %w", sessionID, id, err)
		}
		q[id] = n
	}
	return cart.FromQuantities(q)
}

func (s *RedisStore) AddItem(ctx context.Context, sessionID, melonID string) (int, error) {
	key := cartKey(sessionID)

	var incr *redis.IntCmd
	_, err := s.store.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, key, melonID, 1)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Reset(ctx context.Context, sessionID string) error {
	return s.store.Del(ctx, cartKey(sessionID)).Err()
}

func (s *RedisStore) AddFlash(ctx context.Context, sessionID, msg string) error {
	key := flashKey(sessionID)

	_, err := s.store.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, msg)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

// PopFlashes reads and deletes in one transaction so a flash pushed
// concurrently is either returned now or kept for the next read.
func (s *RedisStore) PopFlashes(ctx context.Context, sessionID string) ([]string, error) {
	key := flashKey(sessionID)

	var msgs *redis.StringSliceCmd
	_, err := s.store.TxPipelined(ctx, func(p redis.Pipeliner) error {
		msgs = p.LRange(ctx, key, 0, -1)
		p.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(msgs.Val()) == 0 {
		return nil, nil
	}
	return msgs.Val(), nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", keyNamespace, cartPrefix, sessionID)
}

func flashKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", keyNamespace, flashPrefix, sessionID)
}
