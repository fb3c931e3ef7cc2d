package bunstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/marktide/go-catalog-engine/category"
	"github.com/marktide/go-catalog-engine/product"
	"github.com/marktide/go-catalog-engine/selection"
	"github.com/marktide/go-catalog-engine/storage"
)

// orderItem exists only to back the order-line count projection in tests;
// the order surface itself lives in another service.
type orderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:order_item"`

	ID        string `bun:"id,pk"`
	ProductID string `bun:"product_id"`
}

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := OpenSQLite("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	models := []any{
		(*category.Category)(nil),
		(*product.Product)(nil),
		(*product.Ingredient)(nil),
		(*orderItem)(nil),
	}
	if err := db.ResetModel(ctx, models...); err != nil {
		t.Fatalf("ResetModel() error = %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *bun.DB, id, name string) {
	t.Helper()
	repo := New[category.Category](db, "category")
	if err := repo.Create(context.Background(), &category.Category{ID: id, Name: name}); err != nil {
		t.Fatalf("seeding category: %v", err)
	}
}

func TestRepository_CreateAndFindOne(t *testing.T) {
	db := setupDB(t)
	repo := New[product.Product](db, "product")
	ctx := context.Background()

	seedCategory(t, db, "cat-1", "Drinks")
	in := &product.Product{
		ID:         "p1",
		Name:       "espresso",
		Count:      12,
		Price:      350,
		Status:     product.StatusInStock,
		CategoryID: "cat-1",
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.FindOne(ctx, "p1", selection.Product.Project(nil))
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if got.Name != "espresso" || got.Count != 12 || got.Price != 350 {
		t.Errorf("FindOne() = %+v, want seeded values", got)
	}
	if got.Category == nil || got.Category.Name != "Drinks" {
		t.Errorf("FindOne() Category = %+v, want the joined category", got.Category)
	}
}

func TestRepository_FindOne_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := New[product.Product](db, "product")

	if _, err := repo.FindOne(context.Background(), "absent", selection.Projection{"id": true, "name": true}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindOne() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Find_ProjectionLimitsColumns(t *testing.T) {
	db := setupDB(t)
	repo := New[product.Product](db, "product")
	ctx := context.Background()

	in := &product.Product{ID: "p1", Name: "espresso", Count: 12, Price: 350}
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := repo.Find(ctx, selection.Product.Project(selection.Request{"name": true}))
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Find() returned %d products, want 1", len(list))
	}
	got := list[0]
	if got.ID != "p1" || got.Name != "espresso" {
		t.Errorf("Find() = %+v, want id and name populated", got)
	}
	if got.Count != 0 || got.Price != 0 {
		t.Errorf("Find() = %+v, want unselected columns left at zero", got)
	}
}

func TestRepository_Find_RelationProjection(t *testing.T) {
	db := setupDB(t)
	products := New[product.Product](db, "product")
	ingredients := New[product.Ingredient](db, "ingredient")
	ctx := context.Background()

	if err := products.Create(ctx, &product.Product{ID: "p1", Name: "latte"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, ing := range []product.Ingredient{
		{ID: "i1", ProductID: "p1", Name: "milk", Amount: "200ml"},
		{ID: "i2", ProductID: "p1", Name: "espresso", Amount: "30ml"},
	} {
		ing := ing
		if err := ingredients.Create(ctx, &ing); err != nil {
			t.Fatalf("seeding ingredient: %v", err)
		}
	}

	list, err := products.Find(ctx, selection.Product.Project(selection.Request{"ingredients": true}))
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Find() returned %d products, want 1", len(list))
	}
	if len(list[0].Ingredients) != 2 {
		t.Errorf("Find() loaded %d ingredients, want 2", len(list[0].Ingredients))
	}
}

func TestRepository_Find_CountProjection(t *testing.T) {
	db := setupDB(t)
	categories := New[category.Category](db, "category")
	products := New[product.Product](db, "product")
	ctx := context.Background()

	seedCategory(t, db, "cat-1", "Drinks")
	seedCategory(t, db, "cat-2", "Snacks")
	for _, p := range []product.Product{
		{ID: "p1", Name: "espresso", CategoryID: "cat-1"},
		{ID: "p2", Name: "latte", CategoryID: "cat-1"},
	} {
		p := p
		if err := products.Create(ctx, &p); err != nil {
			t.Fatalf("seeding product: %v", err)
		}
	}

	list, err := categories.Find(ctx, selection.Category.Project(nil))
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	counts := map[string]int{}
	for _, c := range list {
		counts[c.ID] = c.ProductCount
	}
	if counts["cat-1"] != 2 {
		t.Errorf("cat-1 product count = %d, want 2", counts["cat-1"])
	}
	if counts["cat-2"] != 0 {
		t.Errorf("cat-2 product count = %d, want 0", counts["cat-2"])
	}
}

func TestRepository_Find_Filters(t *testing.T) {
	db := setupDB(t)
	repo := New[product.Product](db, "product")
	ctx := context.Background()

	future := time.Now().Add(time.Hour).UTC()
	seed := []product.Product{
		{ID: "p1", Name: "a", Status: product.StatusInStock, ExpiredTime: &future},
		{ID: "p2", Name: "b", Status: product.StatusExpired, ExpiredTime: &future},
		{ID: "p3", Name: "c", Status: product.StatusInStock},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("seeding product: %v", err)
		}
	}

	list, err := repo.Find(ctx,
		selection.Projection{"id": true, "status": true, "expired_time": true},
		storage.NotNull("expired_time"),
		storage.Ne("status", string(product.StatusExpired)),
	)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != "p1" {
		t.Errorf("Find() = %+v, want only p1", list)
	}
}

func TestRepository_Patch(t *testing.T) {
	db := setupDB(t)
	repo := New[product.Product](db, "product")
	ctx := context.Background()

	if err := repo.Create(ctx, &product.Product{ID: "p1", Name: "a", Status: product.StatusInStock, Count: 5}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Patch(ctx, "p1", map[string]any{"status": string(product.StatusExpired)}); err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	got, err := repo.FindOne(ctx, "p1", selection.Projection{"id": true, "status": true, "count": true})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if got.Status != product.StatusExpired {
		t.Errorf("Status = %q after patch, want %q", got.Status, product.StatusExpired)
	}
	if got.Count != 5 {
		t.Errorf("Count = %d, want untouched value 5", got.Count)
	}

	if err := repo.Patch(ctx, "absent", map[string]any{"status": "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Patch(absent) error = %v, want ErrNotFound", err)
	}
	if err := repo.Patch(ctx, "p1", nil); err != nil {
		t.Errorf("Patch() with no fields error = %v, want nil no-op", err)
	}
}

func TestRepository_Update_PreservesCreationTimestamp(t *testing.T) {
	db := setupDB(t)
	repo := New[category.Category](db, "category")
	ctx := context.Background()

	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, &category.Category{ID: "c1", Name: "Drinks", CreatedAt: created, UpdatedAt: created}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A rename carrying a zero CreatedAt must not null the stored value.
	if err := repo.Update(ctx, &category.Category{ID: "c1", Name: "Beverages", UpdatedAt: created.Add(time.Hour)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.FindOne(ctx, "c1", selection.Projection{"id": true, "name": true, "created_at": true})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if got.Name != "Beverages" {
		t.Errorf("Name = %q after update, want %q", got.Name, "Beverages")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was wiped by an update carrying a zero value")
	}
}

func TestRepository_UpdateAndDelete_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := New[product.Product](db, "product")
	ctx := context.Background()

	if err := repo.Update(ctx, &product.Product{ID: "absent", Name: "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update(absent) error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "absent"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete(absent) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Transactional_RollsBackOnError(t *testing.T) {
	db := setupDB(t)
	repo := New[category.Category](db, "category")
	ctx := context.Background()

	boom := errors.New("abort")
	err := repo.Transactional(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, &category.Category{ID: "c1", Name: "Drinks"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transactional() error = %v, want %v", err, boom)
	}

	if _, err := repo.FindOne(ctx, "c1", selection.Projection{"id": true}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindOne() error = %v, want rollback to have removed the row", err)
	}
}

func TestRepository_Transactional_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)
	repo := New[category.Category](db, "category")
	ctx := context.Background()

	err := repo.Transactional(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, &category.Category{ID: "c1", Name: "Drinks"}); err != nil {
			return err
		}
		return repo.Create(ctx, &category.Category{ID: "c2", Name: "Snacks"})
	})
	if err != nil {
		t.Fatalf("Transactional() error = %v", err)
	}

	list, err := repo.Find(ctx, selection.Projection{"id": true})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Find() returned %d categories after commit, want 2", len(list))
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows becomes not found", fmt.Errorf("scan: %w", sql.ErrNoRows), storage.ErrNotFound},
		{"bad connection becomes connection lost", driver.ErrBadConn, storage.ErrConnectionLost},
		{"eof becomes connection lost", io.EOF, storage.ErrConnectionLost},
		{"unknown error passes through", errors.New("syntax error"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.want != nil {
				if !errors.Is(got, tt.want) {
					t.Errorf("translate() = %v, want %v", got, tt.want)
				}
				return
			}
			if tt.in == nil {
				if got != nil {
					t.Errorf("translate(nil) = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.in) {
				t.Errorf("translate() = %v, want the original error preserved", got)
			}
		})
	}
}
