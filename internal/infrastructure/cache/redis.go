package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
	"github.com/oksasatya/go-ddd-event-hub/pkg/helpers"
)

const (
	redisKeyPrefix = "identity:cap:"
	redisGenPrefix = "identity:gen:"
)

// Redis shares identities across instances. Read and write errors degrade
// to a direct lookup and are only logged. Every Invalidate bumps a per-id
// generation key and a fill is only stored if that generation has not moved
// since the source was asked. An id whose invalidation did not reach Redis
// bypasses the shared entry in this process until a later delete succeeds.
type Redis struct {
	next     Resolver
	rdb      *redis.Client
	ttl      time.Duration
	logger   *logrus.Logger
	recorder metrics.Recorder

	mu    sync.Mutex
	stale map[string]struct{}
}

func NewRedis(next Resolver, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger, recorder metrics.Recorder) *Redis {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Redis{next: next, rdb: rdb, ttl: ttl, logger: logger, recorder: recorder, stale: map[string]struct{}{}}
}

func (c *Redis) ResolveIdentity(ctx context.Context, id string) (capability.Identity, bool, error) {
	if c.isStale(id) {
		if err := c.drop(ctx, id); err != nil {
			c.recorder.RecordCacheLookup(false)
			return c.next.ResolveIdentity(ctx, id)
		}
		c.setStale(id, false)
	}

	var ident capability.Identity
	hit, err := helpers.RedisGetJSON(ctx, c.rdb, redisKeyPrefix+id, &ident)
	if err != nil {
		c.warn(err, "identity cache read failed", id)
	}
	if hit && ident.SubjectID == id {
		c.recorder.RecordCacheLookup(true)
		return ident, true, nil
	}
	c.recorder.RecordCacheLookup(false)

	gen, err := c.rdb.Get(ctx, redisGenPrefix+id).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.warn(err, "identity cache generation read failed", id)
		return c.next.ResolveIdentity(ctx, id)
	}

	ident, found, err := c.next.ResolveIdentity(ctx, id)
	if err != nil || !found {
		return ident, found, err
	}
	c.fill(ctx, id, gen, ident)
	return ident, true, nil
}

// fill stores ident unless the id was invalidated after gen was read.
func (c *Redis) fill(ctx context.Context, id string, gen int64, ident capability.Identity) {
	genKey := redisGenPrefix + id
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			return helpers.RedisSetJSON(ctx, p, redisKeyPrefix+id, ident, c.ttl)
		})
		return err
	}, genKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		c.warn(err, "identity cache write failed", id)
	}
}

func (c *Redis) Invalidate(ctx context.Context, id string) {
	if err := c.drop(ctx, id); err != nil {
		c.warn(err, "identity cache invalidate failed", id)
		c.setStale(id, true)
	}
}

func (c *Redis) drop(ctx context.Context, id string) error {
	genKey := redisGenPrefix + id
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, c.genTTL())
		p.Del(ctx, redisKeyPrefix+id)
		return nil
	})
	return err
}

// genTTL outlives any entry and any lookup in flight.
func (c *Redis) genTTL() time.Duration {
	if d := 2 * c.ttl; d > time.Hour {
		return d
	}
	return time.Hour
}

func (c *Redis) isStale(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.stale[id]
	return ok
}

func (c *Redis) setStale(id string, stale bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stale {
		c.stale[id] = struct{}{}
	} else {
		delete(c.stale, id)
	}
}

func (c *Redis) warn(err error, msg, id string) {
	if c.logger != nil {
		c.logger.WithError(err).WithField("account_id", id).Warn(msg)
	}
}
