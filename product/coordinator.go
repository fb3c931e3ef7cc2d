package product

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/marktide/go-catalog-engine/cache"
	"github.com/marktide/go-catalog-engine/logging"
	"github.com/marktide/go-catalog-engine/notify"
	"github.com/marktide/go-catalog-engine/scheduler"
	"github.com/marktide/go-catalog-engine/selection"
	"github.com/marktide/go-catalog-engine/storage"
)

// actionLabel identifies this coordinator in scheduler diagnostics.
const actionLabel = "ProductLifecycle"

// colStatus is the storage column the expiry transition writes.
const colStatus = "status"

// Config carries the lifecycle tuning knobs.
type Config struct {
	// LowStockThreshold is the count at or below which an unspecified status
	// derives to low-stock.
	LowStockThreshold int
}

// DefaultConfig returns the lifecycle defaults.
func DefaultConfig() Config {
	return Config{LowStockThreshold: 10}
}

// JobName derives the scheduler job name for a product's expiry transition.
// It is deterministic so repeated schedule calls for the same product always
// collide on the same slot instead of accumulating orphaned timers.
func JobName(id string) string {
	return cache.Key("product-expiry", id)
}

// DeriveStatus computes the stored status for a write that does not decide
// it explicitly. A pure function: past-or-present expiry wins over
// everything (the write path handles already-due transitions itself, the
// scheduler refuses them); then an explicitly set status is kept; then the
// low-stock threshold applies.
func DeriveStatus(p *Product, now time.Time, threshold int) Status {
	if p.ExpiredTime != nil && !p.ExpiredTime.After(now) {
		return StatusExpired
	}
	if p.Status != "" {
		return p.Status
	}
	if p.Count <= threshold {
		return StatusLowStock
	}
	return StatusInStock
}

// Coordinator is the only component that schedules product expiry
// transitions, and the only one responsible for keeping the stored status
// consistent with wall-clock expiry.
type Coordinator struct {
	repo     storage.Repository[Product]
	sched    *scheduler.Scheduler
	clock    clockwork.Clock
	log      logging.Logger
	notifier notify.Notifier
	cfg      Config
}

// NewCoordinator wires the lifecycle coordinator. Clock, logger, and
// notifier may be nil.
func NewCoordinator(repo storage.Repository[Product], sched *scheduler.Scheduler, clock clockwork.Clock, log logging.Logger, n notify.Notifier, cfg Config) *Coordinator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logging.Nop()
	}
	if n == nil {
		n = notify.Nop{}
	}
	if cfg.LowStockThreshold == 0 {
		cfg.LowStockThreshold = DefaultConfig().LowStockThreshold
	}
	return &Coordinator{repo: repo, sched: sched, clock: clock, log: log, notifier: n, cfg: cfg}
}

// Create inserts a product and arms its expiry transition when the write
// carries a future expiry instant.
func (c *Coordinator) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := c.clock.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Status = DeriveStatus(p, now, c.cfg.LowStockThreshold)

	if err := c.repo.Create(ctx, p); err != nil {
		return err
	}

	c.armExpiry(p)
	c.notifier.Notify(notify.AllClients, notify.EventRefreshProducts)
	return nil
}

// Update rewrites a product and re-arms its expiry transition. Because the
// job name is derived from the product identifier, a changed expiry simply
// moves the existing timer; it never creates a second one.
func (c *Coordinator) Update(ctx context.Context, p *Product) error {
	now := c.clock.Now()
	p.UpdatedAt = now
	p.Status = DeriveStatus(p, now, c.cfg.LowStockThreshold)

	if err := c.repo.Update(ctx, p); err != nil {
		return err
	}

	c.armExpiry(p)
	c.notifier.Notify(notify.AllClients, notify.EventRefreshProducts)
	return nil
}

// Delete removes a product and cancels any pending expiry transition, so no
// timer fires against a deleted identifier.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}

	if _, pending := c.sched.Pending(JobName(id)); pending {
		c.sched.Cancel(JobName(id), actionLabel)
	}
	c.notifier.Notify(notify.AllClients, notify.EventRefreshProducts)
	return nil
}

// Get reads one product with the projection compiled from the caller's
// field selection.
func (c *Coordinator) Get(ctx context.Context, id string, req selection.Request) (*Product, error) {
	return c.repo.FindOne(ctx, id, selection.Product.Project(req))
}

// ListAll reads every product with the given field selection.
func (c *Coordinator) ListAll(ctx context.Context, req selection.Request) ([]Product, error) {
	return c.repo.Find(ctx, selection.Product.Project(req))
}

// Rebuild re-derives expiry transitions after a process restart: the
// scheduler registry is in-memory only, so every non-expired product with an
// expiry instant is reconciled at startup. Past-due products are transitioned
// immediately; future ones are rescheduled. Returns the number of re-armed
// transitions.
func (c *Coordinator) Rebuild(ctx context.Context) (int, error) {
	proj := selection.Product.Project(selection.Request{"status": true, "expiredTime": true})
	list, err := c.repo.Find(ctx, proj,
		storage.NotNull("expired_time"),
		storage.Ne(colStatus, string(StatusExpired)),
	)
	if err != nil {
		return 0, err
	}

	now := c.clock.Now()
	armed, expired := 0, 0
	for i := range list {
		p := &list[i]
		if p.ExpiredTime == nil {
			continue
		}
		if !p.ExpiredTime.After(now) {
			if err := c.expire(ctx, p.ID); err != nil {
				c.log.Error("overdue expiry reconciliation failed", "product", p.ID, "error", err)
				continue
			}
			expired++
			continue
		}
		c.sched.Schedule(*p.ExpiredTime, c.expireAction(p.ID), JobName(p.ID), actionLabel)
		armed++
	}

	c.log.Info("expiry transitions rebuilt", "scheduled", armed, "expired", expired)
	return armed, nil
}

// armExpiry (re)schedules the product's expiry transition. A product without
// an expiry instant, or with one already due, drops any pending timer: the
// already-due case was handled by status derivation at write time, and a
// timer left from an earlier expiry would fire a redundant transition.
func (c *Coordinator) armExpiry(p *Product) {
	name := JobName(p.ID)

	if p.ExpiredTime == nil || !p.ExpiredTime.After(c.clock.Now()) {
		if _, pending := c.sched.Pending(name); pending {
			c.sched.Cancel(name, actionLabel)
		}
		return
	}

	c.sched.Schedule(*p.ExpiredTime, c.expireAction(p.ID), name, actionLabel)
}

// expireAction builds the one-shot transition for a product: a storage write
// flipping status to expired. The scheduler logs completion or failure.
func (c *Coordinator) expireAction(id string) scheduler.Action {
	return func(ctx context.Context) error {
		if err := c.expire(ctx, id); err != nil {
			return err
		}
		c.notifier.Notify(notify.AllClients, notify.EventRefreshProducts)
		return nil
	}
}

func (c *Coordinator) expire(ctx context.Context, id string) error {
	return c.repo.Patch(ctx, id, map[string]any{colStatus: string(StatusExpired)})
}
