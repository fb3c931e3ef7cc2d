package category

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marktide/go-catalog-engine/logging"
	"github.com/marktide/go-catalog-engine/notify"
	"github.com/marktide/go-catalog-engine/selection"
	"github.com/marktide/go-catalog-engine/storage"
)

// Service coordinates the category read and write paths.
//
// Reads are cache-aside: serve from cache when present, populate on miss.
// Writes invalidate only after the storage write succeeded; a failed mutation
// never touches the cache (stale-but-valid beats wiped-by-failed-write).
// Creates repopulate instead of invalidating so the new category is visible
// without a second cache-miss round trip.
type Service struct {
	repo     storage.Repository[Category]
	cache    *Cache
	log      logging.Logger
	notifier notify.Notifier
	now      func() time.Time
}

// NewService wires the category coordinator. Logger and notifier may be nil.
func NewService(repo storage.Repository[Category], c *Cache, log logging.Logger, n notify.Notifier) *Service {
	if log == nil {
		log = logging.Nop()
	}
	if n == nil {
		n = notify.Nop{}
	}
	return &Service{repo: repo, cache: c, log: log, notifier: n, now: time.Now}
}

// List returns the full category listing, from cache when possible.
//
// There is deliberately no locking around the check-then-act sequence:
// concurrent readers under a miss may both populate, and the last writer
// wins with equivalent data. A cache transport failure degrades to a plain
// storage read; a populate failure is logged and never fails the read that
// triggered it.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	exists, err := s.cache.CheckExist(ctx)
	switch {
	case err != nil:
		s.log.Warn("category cache unavailable, reading from storage", "error", err)
	case exists:
		list, err := s.cache.GetAll(ctx)
		if err != nil {
			s.log.Warn("category cache read failed, reading from storage", "error", err)
		} else if list != nil {
			return list, nil
		}
		// A nil cached listing is indistinguishable from a concurrent
		// invalidation; fall through to storage either way.
	}

	list, err := s.repo.Find(ctx, selection.Category.Project(nil))
	if err != nil {
		return nil, err
	}

	if err := s.cache.StoreAll(ctx, list); err != nil {
		s.log.Warn("category cache populate failed", "error", err)
	}
	return list, nil
}

// Create inserts a new category and repopulates the cache with a full
// re-read, so the new item is immediately visible to cached readers.
func (s *Service) Create(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	s.repopulate(ctx)
	s.notifier.Notify(notify.AllClients, notify.EventRefreshCategories)
	return nil
}

// Update renames a category and invalidates the cached listing; the next
// read repopulates lazily.
func (s *Service) Update(ctx context.Context, c *Category) error {
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.notifier.Notify(notify.AllClients, notify.EventRefreshCategories)
	return nil
}

// Delete removes a category and invalidates the cached listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.notifier.Notify(notify.AllClients, notify.EventRefreshCategories)
	return nil
}

// repopulate re-reads the full list and replaces the cached document. It is
// a full re-read by design: appending in place would require the cache to
// already hold a valid list, which is not guaranteed. Failures degrade to a
// lazy repopulation on the next read.
func (s *Service) repopulate(ctx context.Context) {
	list, err := s.repo.Find(ctx, selection.Category.Project(nil))
	if err != nil {
		s.log.Warn("category cache repopulate read failed, invalidating instead", "error", err)
		s.invalidate(ctx)
		return
	}
	if err := s.cache.StoreAll(ctx, list); err != nil {
		s.log.Warn("category cache repopulate failed", "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DeleteAll(ctx); err != nil {
		s.log.Warn("category cache invalidation failed", "error", err)
	}
}
