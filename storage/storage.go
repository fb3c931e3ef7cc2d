// Package storage defines the contract the engine uses to reach the
// persistent relational store. The engine only ever talks to this interface;
// the bun-backed implementation lives in internal/bunstore and any other
// store can be substituted (the test suite uses in-memory fakes).
package storage

import (
	"context"
	"errors"

	"github.com/marktide/go-catalog-engine/selection"
)

// Failure taxonomy. Implementations translate driver errors into these
// sentinels at the adapter boundary; the engine passes them through to the
// request layer unchanged, except where it must decide whether a write
// succeeded before touching a cache.
var (
	// ErrNotFound reports that the addressed record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConnectionLost reports a transport-level failure talking to the
	// store.
	ErrConnectionLost = errors.New("storage connection lost")
)

// Op enumerates the comparison operators a Filter may carry.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
	OpNotNull
	OpIsNull
)

// Filter is a single storage-level predicate on a column.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows whose column equals v.
func Eq(column string, v any) Filter { return Filter{Column: column, Op: OpEq, Value: v} }

// Ne matches rows whose column differs from v.
func Ne(column string, v any) Filter { return Filter{Column: column, Op: OpNe, Value: v} }

// Lte matches rows whose column is at or below v.
func Lte(column string, v any) Filter { return Filter{Column: column, Op: OpLte, Value: v} }

// Gt matches rows whose column is above v.
func Gt(column string, v any) Filter { return Filter{Column: column, Op: OpGt, Value: v} }

// NotNull matches rows whose column is set.
func NotNull(column string) Filter { return Filter{Column: column, Op: OpNotNull} }

// IsNull matches rows whose column is unset.
func IsNull(column string) Filter { return Filter{Column: column, Op: OpIsNull} }

// Repository is the per-entity storage collaborator. Field selection is
// expressed as a selection.Projection; a nil projection means "all columns".
type Repository[T any] interface {
	// Find returns the records matching every filter, with the projected
	// field set.
	Find(ctx context.Context, p selection.Projection, filters ...Filter) ([]T, error)

	// FindOne returns the record with the given identifier, or ErrNotFound.
	FindOne(ctx context.Context, id string, p selection.Projection) (*T, error)

	// Create inserts a new record.
	Create(ctx context.Context, record *T) error

	// Update replaces every column of the record identified by its primary
	// key, except the creation timestamp, or returns ErrNotFound. Use Patch
	// for partial writes.
	Update(ctx context.Context, record *T) error

	// Patch updates only the given storage columns of the identified record,
	// or returns ErrNotFound.
	Patch(ctx context.Context, id string, fields map[string]any) error

	// Delete removes the identified record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Transactional runs fn inside a single storage transaction; the batch
	// commits only if fn returns nil.
	Transactional(ctx context.Context, fn func(ctx context.Context) error) error
}
