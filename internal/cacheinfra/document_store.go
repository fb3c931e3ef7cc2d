// Package cacheinfra provides the sturdyc-backed implementation of the
// cache.Store contract.
package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viccon/sturdyc"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnavailable marks transport and codec failures. The public cache
// package re-exports it; defining it here keeps this package free of imports
// from the public cache package.
var ErrUnavailable = errors.New("cache unavailable")

// Config holds the configuration for the sturdyc document store.
type Config struct {
	// Capacity defines the maximum number of entries the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0.
	NumShards int

	// TTL is the time-to-live for cached documents. Invalidation is
	// event-driven, so the TTL is a safety net against leaked entries, not a
	// consistency mechanism. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict when
	// the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// MissingRecordStorage enables negative caching of keys that returned no
	// results.
	MissingRecordStorage bool

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for document caching.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the Config to a sturdyc.Option slice. Capacity,
// NumShards, TTL, and EvictionPercentage are passed directly to sturdyc.New
// and are not included in the options.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// DocumentStore implements cache.Store over a sharded in-process sturdyc
// client. Documents are msgpack-encoded before they enter the cache, so a
// stored value is always a complete encoding: readers see either nothing or
// the whole document.
type DocumentStore struct {
	client *sturdyc.Client[[]byte]
}

// NewDocumentStore validates the configuration and initializes a sturdyc
// client with the provided settings.
func NewDocumentStore(cfg Config) (*DocumentStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &DocumentStore{client: client}, nil
}

// Exists implements cache.Store.Exists.
func (s *DocumentStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.client.Get(key)
	return ok, nil
}

// SetDocument implements cache.Store.SetDocument. The value is encoded before
// the cache entry is replaced, so a failed encode leaves the prior document
// untouched.
func (s *DocumentStore) SetDocument(_ context.Context, key string, value any) error {
	buf, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %q: %w: %w", key, err, ErrUnavailable)
	}
	s.client.Set(key, buf)
	return nil
}

// GetDocument implements cache.Store.GetDocument.
func (s *DocumentStore) GetDocument(_ context.Context, key string, dest any) (bool, error) {
	buf, ok := s.client.Get(key)
	if !ok {
		return false, nil
	}
	if err := msgpack.Unmarshal(buf, dest); err != nil {
		return false, fmt.Errorf("decode document %q: %w: %w", key, err, ErrUnavailable)
	}
	return true, nil
}

// Delete implements cache.Store.Delete. Deleting a missing key is a no-op.
func (s *DocumentStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Size reports the number of documents currently cached.
func (s *DocumentStore) Size() int {
	return s.client.Size()
}
