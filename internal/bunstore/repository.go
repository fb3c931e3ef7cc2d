// Package bunstore implements the storage.Repository contract on top of the
// bun SQL client. Driver errors are translated into the storage failure
// taxonomy at this boundary; nothing above it sees sql or driver errors.
package bunstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"

	"github.com/uptrace/bun"

	"github.com/marktide/go-catalog-engine/selection"
	"github.com/marktide/go-catalog-engine/storage"
)

// Repository is a generic bun-backed storage.Repository. The entity name is
// the singular storage name used for relation-count foreign keys
// (e.g. "product" -> product_id).
type Repository[T any] struct {
	db     *bun.DB
	entity string
}

var _ storage.Repository[struct{}] = (*Repository[struct{}])(nil)

// New constructs a Repository for one entity type.
func New[T any](db *bun.DB, entity string) *Repository[T] {
	return &Repository[T]{db: db, entity: entity}
}

type txKey struct{}

// conn returns the transaction bound to ctx by Transactional, or the root DB.
func (r *Repository[T]) conn(ctx context.Context) bun.IDB {
	if tx, ok := ctx.Value(txKey{}).(bun.IDB); ok {
		return tx
	}
	return r.db
}

// Find implements storage.Repository.Find.
func (r *Repository[T]) Find(ctx context.Context, p selection.Projection, filters ...storage.Filter) ([]T, error) {
	var recs []T
	q := r.conn(ctx).NewSelect().Model(&recs)
	q = ApplyProjection(q, p, r.entity)
	for _, f := range filters {
		q = applyFilter(q, f)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, translate(err)
	}
	return recs, nil
}

// FindOne implements storage.Repository.FindOne.
func (r *Repository[T]) FindOne(ctx context.Context, id string, p selection.Projection) (*T, error) {
	var rec T
	q := r.conn(ctx).NewSelect().Model(&rec)
	q = ApplyProjection(q, p, r.entity)
	q = q.Where("?TableAlias.id = ?", id)
	if err := q.Scan(ctx); err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// Create implements storage.Repository.Create.
func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	if _, err := r.conn(ctx).NewInsert().Model(record).Exec(ctx); err != nil {
		return translate(err)
	}
	return nil
}

// Update implements storage.Repository.Update. The creation timestamp is
// excluded from the write: it is set once at insert, and the replace-all
// semantics would otherwise null it for callers passing a partially
// populated record.
func (r *Repository[T]) Update(ctx context.Context, record *T) error {
	res, err := r.conn(ctx).NewUpdate().Model(record).ExcludeColumn("created_at").WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRows(res)
}

// Patch implements storage.Repository.Patch. Columns are applied in sorted
// order so the generated SQL is deterministic.
func (r *Repository[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	q := r.conn(ctx).NewUpdate().Model((*T)(nil))
	for _, col := range cols {
		q = q.Set("? = ?", bun.Ident(col), fields[col])
	}
	res, err := q.Where("?TableAlias.id = ?", id).Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRows(res)
}

// Delete implements storage.Repository.Delete.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	res, err := r.conn(ctx).NewDelete().Model((*T)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRows(res)
}

// Transactional implements storage.Repository.Transactional. The transaction
// is carried in the context, so repository calls made inside fn join the
// same batch.
func (r *Repository[T]) Transactional(ctx context.Context, fn func(ctx context.Context) error) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return translate(err)
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// translate maps driver-level failures into the storage taxonomy. Unknown
// errors pass through wrapped so callers still see the original message.
func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", storage.ErrConnectionLost, err)
	}

	return err
}

func applyFilter(q *bun.SelectQuery, f storage.Filter) *bun.SelectQuery {
	col := bun.Ident(f.Column)
	switch f.Op {
	case storage.OpEq:
		return q.Where("?TableAlias.? = ?", col, f.Value)
	case storage.OpNe:
		return q.Where("?TableAlias.? != ?", col, f.Value)
	case storage.OpLt:
		return q.Where("?TableAlias.? < ?", col, f.Value)
	case storage.OpLte:
		return q.Where("?TableAlias.? <= ?", col, f.Value)
	case storage.OpGt:
		return q.Where("?TableAlias.? > ?", col, f.Value)
	case storage.OpGte:
		return q.Where("?TableAlias.? >= ?", col, f.Value)
	case storage.OpNotNull:
		return q.Where("?TableAlias.? IS NOT NULL", col)
	case storage.OpIsNull:
		return q.Where("?TableAlias.? IS NULL", col)
	}
	return q
}
