package testsupport

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/marktide/go-catalog-engine/cache"
	"github.com/marktide/go-catalog-engine/selection"
	"github.com/marktide/go-catalog-engine/storage"
)

// MemoryRepository is an in-memory storage.Repository used by the service
// and coordinator tests. It records method calls, evaluates filters against
// struct fields by their snake_case names, and can be forced to fail.
// Projections are accepted but not applied; fakes return whole records.
type MemoryRepository[T any] struct {
	mu      sync.Mutex
	records map[string]T
	order   []string
	calls   []string

	// Fail, when non-nil, is returned by every operation until cleared.
	Fail error
}

// NewMemoryRepository builds an empty repository.
func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{records: make(map[string]T)}
}

// Calls returns the method names recorded so far.
func (m *MemoryRepository[T]) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// SetFail makes every subsequent operation return err (nil restores normal
// behaviour).
func (m *MemoryRepository[T]) SetFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fail = err
}

// Len reports the number of stored records.
func (m *MemoryRepository[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *MemoryRepository[T]) record(call string) error {
	m.calls = append(m.calls, call)
	return m.Fail
}

// Find implements storage.Repository.Find.
func (m *MemoryRepository[T]) Find(_ context.Context, _ selection.Projection, filters ...storage.Filter) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Find"); err != nil {
		return nil, err
	}

	var out []T
	for _, id := range m.order {
		rec := m.records[id]
		if matches(rec, filters) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindOne implements storage.Repository.FindOne.
func (m *MemoryRepository[T]) FindOne(_ context.Context, id string, _ selection.Projection) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindOne"); err != nil {
		return nil, err
	}

	rec, ok := m.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &rec, nil
}

// Create implements storage.Repository.Create.
func (m *MemoryRepository[T]) Create(_ context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Create"); err != nil {
		return err
	}

	id := recordID(*record)
	if _, exists := m.records[id]; !exists {
		m.order = append(m.order, id)
	}
	m.records[id] = *record
	return nil
}

// Update implements storage.Repository.Update.
func (m *MemoryRepository[T]) Update(_ context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Update"); err != nil {
		return err
	}

	id := recordID(*record)
	if _, ok := m.records[id]; !ok {
		return storage.ErrNotFound
	}
	m.records[id] = *record
	return nil
}

// Patch implements storage.Repository.Patch by setting struct fields whose
// snake_case name matches the given storage columns.
func (m *MemoryRepository[T]) Patch(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Patch"); err != nil {
		return err
	}

	rec, ok := m.records[id]
	if !ok {
		return storage.ErrNotFound
	}

	v := reflect.ValueOf(&rec).Elem()
	rt := v.Type()
	for col, raw := range fields {
		for i := 0; i < rt.NumField(); i++ {
			if selection.SnakeCase(rt.Field(i).Name) != col {
				continue
			}
			fv := v.Field(i)
			nv := reflect.ValueOf(raw)
			if nv.Type().ConvertibleTo(fv.Type()) {
				fv.Set(nv.Convert(fv.Type()))
			}
		}
	}
	m.records[id] = rec
	return nil
}

// Delete implements storage.Repository.Delete.
func (m *MemoryRepository[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Delete"); err != nil {
		return err
	}

	if _, ok := m.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.records, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Transactional implements storage.Repository.Transactional; the fake has no
// real transactions, fn just runs.
func (m *MemoryRepository[T]) Transactional(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	err := m.record("Transactional")
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}

// Get returns the stored record for id, if any. Test inspection helper.
func (m *MemoryRepository[T]) Get(id string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok
}

// recordID extracts the ID field from a record using reflection, looking for
// the common identifier field names.
func recordID[T any](record T) string {
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for _, name := range []string{"ID", "Id"} {
		field := v.FieldByName(name)
		if field.IsValid() && field.Kind() == reflect.String {
			return field.String()
		}
	}
	return fmt.Sprintf("%v", record)
}

// matches evaluates filters against a record's fields by snake_case name.
// Only the operators the engine's fakes need are supported.
func matches[T any](record T, filters []storage.Filter) bool {
	v := reflect.ValueOf(record)
	rt := v.Type()

	for _, f := range filters {
		var field reflect.Value
		for i := 0; i < rt.NumField(); i++ {
			if selection.SnakeCase(rt.Field(i).Name) == f.Column {
				field = v.Field(i)
				break
			}
		}
		if !field.IsValid() {
			return false
		}

		switch f.Op {
		case storage.OpNotNull:
			if field.Kind() == reflect.Ptr && field.IsNil() {
				return false
			}
		case storage.OpIsNull:
			if field.Kind() != reflect.Ptr || !field.IsNil() {
				return false
			}
		case storage.OpEq:
			if fmt.Sprint(field.Interface()) != fmt.Sprint(f.Value) {
				return false
			}
		case storage.OpNe:
			if fmt.Sprint(field.Interface()) == fmt.Sprint(f.Value) {
				return false
			}
		}
	}
	return true
}

// FlakyStore wraps a cache.Store and fails operations on demand, for
// exercising the cache-unavailable fallbacks.
type FlakyStore struct {
	Inner cache.Store

	mu   sync.Mutex
	fail error
}

// NewFlakyStore wraps inner.
func NewFlakyStore(inner cache.Store) *FlakyStore {
	return &FlakyStore{Inner: inner}
}

// SetFail makes every subsequent operation return err (nil restores normal
// behaviour).
func (f *FlakyStore) SetFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *FlakyStore) failing() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

// Exists implements cache.Store.
func (f *FlakyStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := f.failing(); err != nil {
		return false, err
	}
	return f.Inner.Exists(ctx, key)
}

// SetDocument implements cache.Store.
func (f *FlakyStore) SetDocument(ctx context.Context, key string, value any) error {
	if err := f.failing(); err != nil {
		return err
	}
	return f.Inner.SetDocument(ctx, key, value)
}

// GetDocument implements cache.Store.
func (f *FlakyStore) GetDocument(ctx context.Context, key string, dest any) (bool, error) {
	if err := f.failing(); err != nil {
		return false, err
	}
	return f.Inner.GetDocument(ctx, key, dest)
}

// Delete implements cache.Store.
func (f *FlakyStore) Delete(ctx context.Context, key string) error {
	if err := f.failing(); err != nil {
		return err
	}
	return f.Inner.Delete(ctx, key)
}

// RecorderLogger captures log output for assertions.
type RecorderLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []any
}

// Info implements logging.Logger.
func (r *RecorderLogger) Info(msg string, fields ...any) { r.append("info", msg, fields) }

// Warn implements logging.Logger.
func (r *RecorderLogger) Warn(msg string, fields ...any) { r.append("warn", msg, fields) }

// Error implements logging.Logger.
func (r *RecorderLogger) Error(msg string, fields ...any) { r.append("error", msg, fields) }

func (r *RecorderLogger) append(level, msg string, fields []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Entries returns the captured log calls.
func (r *RecorderLogger) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), r.entries...)
}

// Has reports whether a log call at the given level contains msg.
func (r *RecorderLogger) Has(level, msg string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// RecorderNotifier captures notifications for assertions.
type RecorderNotifier struct {
	mu     sync.Mutex
	events []string
}

// Notify implements notify.Notifier.
func (r *RecorderNotifier) Notify(userID, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, userID+" "+event)
}

// Events returns the captured notifications as "userID event" strings.
func (r *RecorderNotifier) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
