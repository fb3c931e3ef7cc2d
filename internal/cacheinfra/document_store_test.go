package cacheinfra

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type testDoc struct {
	ID    string `msgpack:"id"`
	Name  string `msgpack:"name"`
	Count int    `msgpack:"count"`
}

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	store, err := NewDocumentStore(DefaultConfig())
	if err != nil {
		t.Fatalf("NewDocumentStore() error = %v", err)
	}
	return store
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("Capacity = %d, want 10000", cfg.Capacity)
	}
	if cfg.NumShards != 64 {
		t.Errorf("NumShards = %d, want 64", cfg.NumShards)
	}
	if cfg.TTL != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", cfg.TTL)
	}
	if cfg.EvictionPercentage != 10 {
		t.Errorf("EvictionPercentage = %d, want 10", cfg.EvictionPercentage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity"},
		{"negative capacity", func(c *Config) { c.Capacity = -1 }, "Capacity"},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, "NumShards"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"eviction percentage too low", func(c *Config) { c.EvictionPercentage = 0 }, "EvictionPercentage"},
		{"eviction percentage too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want ConfigError")
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() error type = %T, want *ConfigError", err)
			}
			if cerr.Field != tt.wantErr {
				t.Errorf("ConfigError.Field = %q, want %q", cerr.Field, tt.wantErr)
			}
		})
	}
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := testDoc{ID: "p1", Name: "espresso", Count: 7}
	if err := store.SetDocument(ctx, "doc::p1", in); err != nil {
		t.Fatalf("SetDocument() error = %v", err)
	}

	var out testDoc
	found, err := store.GetDocument(ctx, "doc::p1", &out)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if !found {
		t.Fatal("GetDocument() found = false, want true")
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("GetDocument() = %+v, want %+v", out, in)
	}
}

func TestDocumentStore_MissingKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var out testDoc
	found, err := store.GetDocument(ctx, "doc::absent", &out)
	if err != nil {
		t.Fatalf("GetDocument() error = %v, want nil for a miss", err)
	}
	if found {
		t.Error("GetDocument() found = true for an absent key")
	}

	exists, err := store.Exists(ctx, "doc::absent")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true for an absent key")
	}
}

func TestDocumentStore_NilDocumentIsPresent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetDocument(ctx, "doc::nil", nil); err != nil {
		t.Fatalf("SetDocument(nil) error = %v", err)
	}

	exists, err := store.Exists(ctx, "doc::nil")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false, want true for a stored nil document")
	}

	var out []testDoc
	found, err := store.GetDocument(ctx, "doc::nil", &out)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if !found {
		t.Error("GetDocument() found = false, want true for a stored nil document")
	}
	if out != nil {
		t.Errorf("GetDocument() dest = %v, want zero value", out)
	}
}

func TestDocumentStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetDocument(ctx, "doc::del", testDoc{ID: "x"}); err != nil {
		t.Fatalf("SetDocument() error = %v", err)
	}
	if err := store.Delete(ctx, "doc::del"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err := store.Exists(ctx, "doc::del")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true after Delete()")
	}

	// Deleting a missing key is a no-op.
	if err := store.Delete(ctx, "doc::never-stored"); err != nil {
		t.Errorf("Delete(absent) error = %v, want nil", err)
	}
}

func TestDocumentStore_DecodeFailureIsUnavailable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetDocument(ctx, "doc::shape", []string{"a", "b"}); err != nil {
		t.Fatalf("SetDocument() error = %v", err)
	}

	var out int
	if _, err := store.GetDocument(ctx, "doc::shape", &out); !errors.Is(err, ErrUnavailable) {
		t.Errorf("GetDocument() error = %v, want ErrUnavailable", err)
	}
}

func TestDocumentStore_SetReplacesPriorValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetDocument(ctx, "doc::swap", testDoc{ID: "old"}); err != nil {
		t.Fatalf("SetDocument() error = %v", err)
	}
	if err := store.SetDocument(ctx, "doc::swap", testDoc{ID: "new"}); err != nil {
		t.Fatalf("SetDocument() error = %v", err)
	}

	var out testDoc
	if _, err := store.GetDocument(ctx, "doc::swap", &out); err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if out.ID != "new" {
		t.Errorf("GetDocument() ID = %q, want %q", out.ID, "new")
	}
}
