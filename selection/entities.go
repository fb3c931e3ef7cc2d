package selection

// Entity schemas for the back-office catalog. These mirror the selection
// surface the request layer exposes: which fields a caller may toggle, which
// are derived, and which never leave the storage layer.

// Product declares the product selection surface. The "disabled" flag is a
// derived field: requesting it pulls the aggregate count of order lines that
// reference the product, which is what decides whether it may be disabled.
var Product = MustNew("product",
	[]Field{
		{Name: "id", Identifier: true},
		{Name: "name"},
		{Name: "count"},
		{Name: "price"},
		{Name: "originalPrice"},
		{Name: "status"},
		{Name: "expiredTime"},
		{Name: "categoryId"},
		{Name: "category", Kind: KindRelation, Children: []string{"id", "name"}},
		{Name: "ingredients", Kind: KindRelation, Children: []string{"id", "name", "amount"}},
		{Name: "disabled", Kind: KindRelationCount, CountOf: "order_items"},
	},
	"name", "count", "price", "originalPrice", "status", "expiredTime",
	"category", "categoryId", "disabled",
)

// Category declares the category selection surface. The products count backs
// the denormalized listing the cache holds.
var Category = MustNew("category",
	[]Field{
		{Name: "id", Identifier: true},
		{Name: "name"},
		{Name: "createdAt"},
		{Name: "updatedAt"},
		{Name: "productCount", Kind: KindRelationCount, CountOf: "products"},
	},
	"name", "createdAt", "updatedAt", "productCount",
)

// User declares the user selection surface. The password hash is write-only:
// it is not caller-toggleable and can never appear in a projection.
var User = MustNew("user",
	[]Field{
		{Name: "id", Identifier: true},
		{Name: "username"},
		{Name: "nickname"},
		{Name: "role"},
		{Name: "password", WriteOnly: true},
	},
	"username", "nickname", "role",
)
