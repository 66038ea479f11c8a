package xtrace

import (
	"fmt"
	"strings"
)

// Config is the tracing surface configuration. Nothing else changes core
// behavior.
type Config struct {
	// System tags spans with the messaging system identifier
	// (e.g. "redis", "pulsar"). Default "messaging".
	System string
	// CapturedHeaders is the allow-list of message header names recorded as
	// span attributes under "messaging.header.<name>".
	CapturedHeaders []string
	// ExperimentalProducerAttributes enables payload-size and ordering-key
	// attributes on send spans.
	ExperimentalProducerAttributes bool
}

// Defaults returns a Config with safe defaults.
func Defaults() Config {
	return Config{
		System: "messaging",
	}
}

// Validate checks the Config for usable values.
func (c Config) Validate() error {
	if c.System == "" {
		return fmt.Errorf("config: system required")
	}
	for _, h := range c.CapturedHeaders {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("config: captured header name must not be blank")
		}
	}
	return nil
}

// ConfigFromMap safely converts a generic map to Config with defaults.
func ConfigFromMap(m map[string]any) Config {
	c := Defaults()

	if v, ok := m["system"].(string); ok && v != "" {
		c.System = v
	}
	switch v := m["captured_headers"].(type) {
	case []string:
		c.CapturedHeaders = v
	case []any:
		for _, h := range v {
			if s, ok := h.(string); ok && s != "" {
				c.CapturedHeaders = append(c.CapturedHeaders, s)
			}
		}
	}
	if v, ok := m["experimental_producer_attributes"].(bool); ok {
		c.ExperimentalProducerAttributes = v
	}

	return c
}
