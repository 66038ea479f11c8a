package redispubsub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trickstertwo/xlog"

	"github.com/trickstertwo/xtrace"
)

const queueKeyPrefix = "xtrace:queue:"

// Client owns the Redis connection and the tracer every producer/consumer
// created from it reports to.
type Client struct {
	cfg    Config
	rdb    *redis.Client
	tracer *xtrace.Tracer
	logger *xlog.Logger
	url    string

	closed atomic.Bool
}

// Option configures the Client.
type Option func(*Client)

// WithTracer injects the xtrace tracer (default: xtrace.Default()).
func WithTracer(t *xtrace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger injects a custom xlog logger.
func WithLogger(l *xlog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New connects to Redis and verifies the connection.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: 3,
	})
	if err := ping(rdb); err != nil {
		return nil, err
	}

	c := &Client{
		cfg: cfg,
		rdb: rdb,
		url: "redis://" + cfg.Addr,
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	if c.tracer == nil {
		c.tracer = xtrace.Default()
	}
	if c.logger == nil {
		c.logger = xlog.Default()
	}
	return c, nil
}

// URL returns the resolved broker endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// Close releases the connection.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.rdb.Close()
}

func queueKey(topic string) string {
	return queueKeyPrefix + topic
}

func ping(rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := rdb.Ping(ctx).Result()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("redis ping timeout: %w", err)
		}
		return err
	}
	if strings.ToUpper(res) != "PONG" {
		return fmt.Errorf("unexpected redis ping result: %s", res)
	}
	return nil
}
