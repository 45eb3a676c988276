package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements the commands RedisStore uses. Transactions hold the
// lock for their whole body, which gives them MULTI/EXEC isolation.
type fakeRedis struct {
	mu     sync.Mutex
	hashes map[string]map[string]int64
	lists  map[string][]string
	ttls   map[string]time.Duration

	txs    int
	failTx error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes: make(map[string]map[string]int64),
		lists:  make(map[string][]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeRedis) ttl(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

func (f *fakeRedis) txCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txs
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeRedis) HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hincrby(ctx, key, field, incr)
}

func (f *fakeRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = strconv.FormatInt(v, 10)
	}

	cmd := redis.NewMapStringStringCmd(ctx)
	cmd.SetVal(out)
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.del(ctx, keys...)
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expire(ctx, key, expiration)
}

func (f *fakeRedis) RPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rpush(ctx, key, values...)
}

func (f *fakeRedis) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lrange(ctx, key, start, stop)
}

// TxPipelined applies the queued commands only when the transaction
// succeeds. failTx aborts before anything is applied, like a failed EXEC.
func (f *fakeRedis) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failTx != nil {
		return nil, f.failTx
	}

	p := &fakeTx{f: f}
	if err := fn(p); err != nil {
		return nil, err
	}
	f.txs++
	return p.cmds, nil
}

// fakeTx runs commands against the locked fake as they are queued. Only the
// methods RedisStore calls are implemented; anything else panics on the nil
// embedded interface.
type fakeTx struct {
	redis.Pipeliner
	f    *fakeRedis
	cmds []redis.Cmder
}

func (p *fakeTx) HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd {
	cmd := p.f.hincrby(ctx, key, field, incr)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakeTx) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	cmd := p.f.expire(ctx, key, expiration)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakeTx) RPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	cmd := p.f.rpush(ctx, key, values...)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakeTx) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	cmd := p.f.lrange(ctx, key, start, stop)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakeTx) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := p.f.del(ctx, keys...)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

// The helpers below expect f.mu to be held.

func (f *fakeRedis) hincrby(ctx context.Context, key, field string, incr int64) *redis.IntCmd {
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]int64)
		f.hashes[key] = h
	}
	h[field] += incr

	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(h[field])
	return cmd
}

func (f *fakeRedis) del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.hashes[k]; ok {
			delete(f.hashes, k)
			n++
		}
		if _, ok := f.lists[k]; ok {
			delete(f.lists, k)
			n++
		}
		delete(f.ttls, k)
	}

	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.ttls[key] = expiration

	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) rpush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		f.lists[key] = append(f.lists[key], fmt.Sprint(v))
	}

	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *fakeRedis) lrange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	l := f.lists[key]
	n := int64(len(l))
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}

	var out []string
	if start <= stop {
		out = append(out, l[start:stop+1]...)
	}

	cmd := redis.NewStringSliceCmd(ctx)
	cmd.SetVal(out)
	return cmd
}
