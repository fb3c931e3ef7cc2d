// Package category owns the category entity, its denormalized listing cache,
// and the cache-aside coordinator that keeps the two consistent.
package category

import (
	"time"

	"github.com/uptrace/bun"
)

// Category is a product grouping. The full list is small and always read and
// cached in full; there is no per-category cache granularity.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:category" msgpack:"-"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt"`

	// ProductCount is populated by the listing projection's aggregate count;
	// it is never written.
	ProductCount int `bun:"products_count,scanonly" json:"productCount"`
}
