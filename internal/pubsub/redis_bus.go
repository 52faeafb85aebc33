// Package pubsub relays chat messages between API instances over Redis
// pub/sub. Delivery is at-most-once: messages published while an instance
// is not subscribed are never seen by it.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/forgo/huddle/api/internal/model"
)

// Envelope is the wire format on the channel. Origin identifies the
// publishing instance so it can skip its own messages.
type Envelope struct {
	Origin  string            `json:"origin"`
	Message model.ChatMessage `json:"message"`
}

// RedisBus publishes and receives chat envelopes on one channel
type RedisBus struct {
	rdb     *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisBus creates a bus on channel
func NewRedisBus(rdb *redis.Client, channel string, logger *slog.Logger) (*RedisBus, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	if channel == "" {
		channel = "huddle:chat"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBus{
		rdb:     rdb,
		channel: channel,
		logger:  logger.With("component", "chat-bus"),
	}, nil
}

// Publish sends env to every subscribed instance
func (b *RedisBus) Publish(ctx context.Context, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes and calls onMsg for every envelope until ctx is
// cancelled. It returns once the subscription is confirmed.
func (b *RedisBus) StartForwarder(ctx context.Context, onMsg func(Envelope)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					b.logger.Warn("bad chat payload", "error", err)
					continue
				}
				onMsg(env)
			}
		}
	}()

	return nil
}
