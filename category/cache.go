package category

import (
	"context"

	"github.com/marktide/go-catalog-engine/cache"
)

// AllKey is the single well-known cache key holding the full category list.
var AllKey = cache.Key("category", "all")

// Cache wraps a cache.Store with the category listing's key and shape. It
// performs no read-path orchestration itself; that is Service's job.
type Cache struct {
	store cache.Store
}

// NewCache builds a Cache over the given store.
func NewCache(store cache.Store) *Cache {
	return &Cache{store: store}
}

// CheckExist reports whether a listing document is currently cached.
func (c *Cache) CheckExist(ctx context.Context) (bool, error) {
	return c.store.Exists(ctx, AllKey)
}

// GetAll returns the cached listing. A nil result means either "no document"
// or "cached null"; callers that need to tell these apart call CheckExist
// first, or treat nil as a fall-through to storage.
func (c *Cache) GetAll(ctx context.Context) ([]Category, error) {
	var list []Category
	if _, err := c.store.GetDocument(ctx, AllKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// StoreAll replaces the cached listing with list. A nil list is stored as an
// empty one: a stored nil reads back indistinguishable from a miss, which
// would make an empty listing unservable from cache.
func (c *Cache) StoreAll(ctx context.Context, list []Category) error {
	if list == nil {
		list = []Category{}
	}
	return c.store.SetDocument(ctx, AllKey, list)
}

// DeleteAll invalidates the cached listing.
func (c *Cache) DeleteAll(ctx context.Context) error {
	return c.store.Delete(ctx, AllKey)
}
