// Package cache provides a Redis read-through cache for public profiles.
//
// Reads go through a circuit breaker so an unhealthy Redis degrades to
// direct store reads instead of failing requests. Concurrent misses for the
// same username collapse into a single load.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/forgo/huddle/api/internal/model"
)

// Cache outcomes reported to the observer
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeBypass   = "bypass"
	OutcomeWriteErr = "write_error"
)

const keyPrefix = "huddle:profile:"

// LoadFunc reads a profile from the backing store
type LoadFunc func(ctx context.Context, username string) (*model.Profile, error)

// ProfileCache caches profiles by username
type ProfileCache struct {
	rdb      *redis.Client
	cb       *gobreaker.CircuitBreaker
	sf       singleflight.Group
	ttl      time.Duration
	logger   *slog.Logger
	observer func(outcome string)
}

// Option configures a ProfileCache
type Option func(*ProfileCache)

// WithObserver receives one outcome per Get and failed write
func WithObserver(fn func(outcome string)) Option {
	return func(c *ProfileCache) { c.observer = fn }
}

// NewProfileCache creates a cache over rdb
func NewProfileCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger, opts ...Option) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &ProfileCache{
		rdb:      rdb,
		ttl:      ttl,
		logger:   logger,
		observer: func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "profile-cache",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c
}

func key(username string) string {
	return keyPrefix + username
}

// Get returns the cached profile for username, loading and caching it on a
// miss. Load errors are returned unchanged and never cached.
func (c *ProfileCache) Get(ctx context.Context, username string, load LoadFunc) (*model.Profile, error) {
	k := key(username)

	val, err := c.cb.Execute(func() (any, error) {
		res, err := c.rdb.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		c.logger.Warn("profile cache unavailable, reading through",
			"username", username,
			"error", err,
		)
		c.observer(OutcomeBypass)
		return load(ctx, username)
	}

	if raw, ok := val.([]byte); ok {
		var profile model.Profile
		if err := json.Unmarshal(raw, &profile); err == nil {
			c.observer(OutcomeHit)
			return &profile, nil
		}
		c.logger.Warn("discarding undecodable cached profile", "key", k)
	}

	c.observer(OutcomeMiss)
	result, err, _ := c.sf.Do(k, func() (any, error) {
		profile, err := load(ctx, username)
		if err != nil {
			return nil, err
		}
		c.store(ctx, k, profile)
		return profile, nil
	})
	if err != nil {
		return nil, err
	}

	// Each caller gets its own copy; shared results must not alias.
	shared := *result.(*model.Profile)
	return &shared, nil
}

func (c *ProfileCache) store(ctx context.Context, k string, profile *model.Profile) {
	data, err := json.Marshal(profile)
	if err != nil {
		c.logger.Error("failed to encode profile for cache", "key", k, "error", err)
		return
	}

	ttl := c.ttl + time.Duration(rand.Int64N(int64(c.ttl/10)+1))
	_, err = c.cb.Execute(func() (any, error) {
		return nil, c.rdb.Set(ctx, k, data, ttl).Err()
	})
	if err != nil {
		c.observer(OutcomeWriteErr)
		c.logger.Warn("failed to write profile cache", "key", k, "error", err)
	}
}

// Invalidate drops the cached profile for username
func (c *ProfileCache) Invalidate(ctx context.Context, username string) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.rdb.Del(ctx, key(username)).Err()
	})
	if err != nil {
		return fmt.Errorf("invalidate profile %q: %w", username, err)
	}
	return nil
}
