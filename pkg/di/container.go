// Package di wires the engine's components into a single process-wide
// container: the cache store, the category cache-aside service, the
// transition scheduler, and the product lifecycle coordinator. The container
// is the explicit singleton; nothing in the engine reaches for ambient
// global state.
package di

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/marktide/go-catalog-engine/cache"
	"github.com/marktide/go-catalog-engine/category"
	"github.com/marktide/go-catalog-engine/logging"
	"github.com/marktide/go-catalog-engine/notify"
	"github.com/marktide/go-catalog-engine/product"
	"github.com/marktide/go-catalog-engine/scheduler"
	"github.com/marktide/go-catalog-engine/storage"
)

// Config aggregates the engine's component configuration.
type Config struct {
	Cache   cache.Config
	Product product.Config
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Cache:   cache.DefaultConfig(),
		Product: product.DefaultConfig(),
	}
}

// Deps carries the collaborators the host must (repositories) or may
// (logger, clock, notifier) provide.
type Deps struct {
	Categories storage.Repository[category.Category]
	Products   storage.Repository[product.Product]

	Logger   logging.Logger   // defaults to logging.Nop()
	Clock    clockwork.Clock  // defaults to the real clock
	Notifier notify.Notifier  // defaults to notify.Nop{}
}

// Container holds the engine's singleton instances.
type Container struct {
	config     Config
	store      cache.Store
	scheduler  *scheduler.Scheduler
	categories *category.Service
	products   *product.Coordinator
}

// NewContainer validates the configuration and constructs the engine.
func NewContainer(cfg Config, deps Deps) (*Container, error) {
	if deps.Categories == nil || deps.Products == nil {
		return nil, errors.New("di: category and product repositories are required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(deps.Clock, deps.Logger)

	categories := category.NewService(
		deps.Categories,
		category.NewCache(store),
		deps.Logger,
		deps.Notifier,
	)

	products := product.NewCoordinator(
		deps.Products,
		sched,
		deps.Clock,
		deps.Logger,
		deps.Notifier,
		cfg.Product,
	)

	return &Container{
		config:     cfg,
		store:      store,
		scheduler:  sched,
		categories: categories,
		products:   products,
	}, nil
}

// NewContainerWithDefaults constructs the engine with default configuration.
func NewContainerWithDefaults(deps Deps) (*Container, error) {
	return NewContainer(DefaultConfig(), deps)
}

// CacheStore returns the singleton cache store instance.
func (c *Container) CacheStore() cache.Store {
	return c.store
}

// Scheduler returns the singleton transition scheduler.
func (c *Container) Scheduler() *scheduler.Scheduler {
	return c.scheduler
}

// Categories returns the category cache-aside service.
func (c *Container) Categories() *category.Service {
	return c.categories
}

// Products returns the product lifecycle coordinator.
func (c *Container) Products() *product.Coordinator {
	return c.products
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

// Warm performs startup reconciliation: pending expiry transitions are
// re-derived from storage (the scheduler registry does not survive a
// restart) and the category cache is primed with a first read.
func (c *Container) Warm(ctx context.Context) error {
	if _, err := c.products.Rebuild(ctx); err != nil {
		return err
	}
	_, err := c.categories.List(ctx)
	return err
}
