package redispubsub

import (
	"fmt"
	"time"
)

// Config for the Redis queue client.
type Config struct {
	// Connection
	Addr     string
	Username string
	Password string
	DB       int

	// ListenBlock is how long the listener loop blocks per poll.
	ListenBlock time.Duration
}

// Defaults returns a Config with safe defaults.
func Defaults() Config {
	return Config{
		Addr:        "127.0.0.1:6379",
		DB:          0,
		ListenBlock: 5 * time.Second,
	}
}

// Validate checks Config for usable values.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr required")
	}
	if c.ListenBlock <= 0 {
		return fmt.Errorf("config: listen_block must be > 0, got %v", c.ListenBlock)
	}
	return nil
}
