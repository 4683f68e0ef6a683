// Package redis exposes a Redis Pub/Sub channel as an observable event source.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/observable"
	backend "github.com/redis/go-redis/v9"
)

// Channel is a Pub/Sub channel. Every Subscribe opens its own Redis
// subscription, released when the handle is cancelled.
type Channel struct {
	client  *backend.Client
	name    string
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger configures a logger for subscription errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSubscribeTimeout bounds how long a subscription waits for Redis to
// confirm it before falling back to background retries.
func WithSubscribeTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a channel on a new client for address.
func New(address, password string, db int, name string, opts ...Option) *Channel {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, name, opts...)
}

// NewFromClient creates a channel from an existing client.
func NewFromClient(client *backend.Client, name string, opts ...Option) *Channel {
	c := &Channel{
		client:  client,
		name:    name,
		logger:  logging.NewNop(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// Publish sends payload to every subscriber of the channel.
func (c *Channel) Publish(ctx context.Context, payload string) error {
	if err := c.client.Publish(ctx, c.name, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", c.name, err)
	}
	return nil
}

// Subscribe delivers message payloads to o. It returns at once: the
// subscription is set up in the background and re-established by the client
// after connection failures, so messages published before Redis confirms it
// may be missed.
func (c *Channel) Subscribe(o observable.Observer[string]) observable.Cancellable {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ps := c.client.Subscribe(ctx, c.name)
		defer func() {
			if err := ps.Close(); err != nil {
				c.logger.Debug("redis unsubscribe", "channel", c.name, "err", err)
			}
		}()

		confirm, stop := context.WithTimeout(ctx, c.timeout)
		_, err := ps.Receive(confirm)
		stop()
		if err != nil && ctx.Err() == nil {
			c.logger.Warn("redis subscribe not confirmed, retrying in background", "channel", c.name, "err", err)
		}

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				o.Observe(msg.Payload)
			}
		}
	}()

	return observable.Cancel(cancel)
}

// Close releases the underlying client.
func (c *Channel) Close() error {
	return c.client.Close()
}
