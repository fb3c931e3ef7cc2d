// Package product owns the product entity and the lifecycle coordinator
// that keeps its stored status consistent with wall-clock expiry.
package product

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/marktide/go-catalog-engine/category"
)

// Status is the lifecycle state of a product.
type Status string

const (
	// StatusInStock is the ordinary sellable state.
	StatusInStock Status = "in-stock"

	// StatusLowStock is derived when the remaining count reaches the
	// low-stock threshold.
	StatusLowStock Status = "low-stock"

	// StatusExpired is reached when the product's expiry instant passes,
	// either through a scheduled transition or directly at write time.
	StatusExpired Status = "expired"

	// StatusDisabled marks a product withdrawn by an operator.
	StatusDisabled Status = "disabled"
)

// Product is a sellable item. Prices are integer cents.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:product" msgpack:"-"`

	ID            string     `bun:"id,pk" json:"id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Count         int        `bun:"count" json:"count"`
	Price         int64      `bun:"price" json:"price"`
	OriginalPrice int64      `bun:"original_price" json:"originalPrice"`
	Status        Status     `bun:"status" json:"status"`
	ExpiredTime   *time.Time `bun:"expired_time,nullzero" json:"expiredTime"`
	CategoryID    string     `bun:"category_id" json:"categoryId"`
	CreatedAt     time.Time  `bun:"created_at,nullzero" json:"createdAt"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero" json:"updatedAt"`

	Category    *category.Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	Ingredients []*Ingredient      `bun:"rel:has-many,join:id=product_id" json:"ingredients,omitempty"`

	// OrderItemCount is populated by the aggregate-count projection backing
	// the derived "disabled" selection; it is never written.
	OrderItemCount int `bun:"order_items_count,scanonly" json:"orderItemCount"`
}

// Ingredient is a recipe line of a product.
type Ingredient struct {
	bun.BaseModel `bun:"table:ingredients,alias:ingredient" msgpack:"-"`

	ID        string `bun:"id,pk" json:"id"`
	ProductID string `bun:"product_id,notnull" json:"productId"`
	Name      string `bun:"name,notnull" json:"name"`
	Amount    string `bun:"amount" json:"amount"`
}
