package cache

import (
	"context"
	"strings"

	"github.com/marktide/go-catalog-engine/internal/cacheinfra"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// Key joins segments into a cache key using KeySeparator.
func Key(segments ...string) string {
	return strings.Join(segments, KeySeparator)
}

// ErrUnavailable distinguishes transport-level cache failures (broken
// connection, backend down) from ordinary misses. Callers decide whether to
// treat it as fatal or fall through to the source of truth.
var ErrUnavailable = cacheinfra.ErrUnavailable

var _ Store = (*cacheinfra.DocumentStore)(nil)

// Store is the minimal key/value + document interface the engine caches
// through. Implementations must guarantee that a reader observes either no
// document under a key or a complete one, never a partial write.
type Store interface {
	// Exists reports whether a value is currently stored under key. A
	// missing key is not an error; only transport failures are.
	Exists(ctx context.Context, key string) (bool, error)

	// SetDocument stores a structured document under key, replacing any
	// prior value atomically from the caller's perspective.
	SetDocument(ctx context.Context, key string, value any) error

	// GetDocument decodes the document stored under key into dest and
	// reports whether one was found. A stored nil document returns
	// found=true with dest left at its zero value, which is how "cache says
	// empty" stays distinguishable from a miss.
	GetDocument(ctx context.Context, key string, dest any) (found bool, err error)

	// Delete removes any value under key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
