package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"
)

// Reconciler is the background sweep that returns expired reservation stock
// to the shelves and discards abandoned carts. One failed sweep is logged
// and retried on the next tick; the loop itself never stops on error.
type Reconciler struct {
	ledger commands.InventoryLedger
	carts  commands.CartCommands
	cfg    config.ReconcileConfig

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewReconciler(ledger commands.InventoryLedger, carts commands.CartCommands, cfg config.ReconcileConfig) *Reconciler {
	return &Reconciler{
		ledger: ledger,
		carts:  carts,
		cfg:    cfg,
		stop:   make(chan struct{}),
	}
}

func (r *Reconciler) Start() {
	r.wg.Add(1)
	go r.run()
}

func (r *Reconciler) Stop() {
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()
}

func (r *Reconciler) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.Info("reconciler started", "interval", r.cfg.Interval, "cart_ttl", r.cfg.CartTTL)

	for {
		select {
		case <-r.stop:
			slog.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(context.Background())
		}
	}
}

// Sweep runs one reconciliation pass. Exported so tests and operational
// tooling can trigger it outside the ticker.
func (r *Reconciler) Sweep(ctx context.Context) {
	released, err := r.ledger.SweepExpired(ctx)
	if err != nil {
		slog.Error("reservation sweep failed", "error", err)
	} else if released > 0 {
		slog.Info("released expired reservations", "count", released)
	}

	removed, err := r.carts.SweepStale(ctx, r.cfg.CartTTL)
	if err != nil {
		slog.Error("cart sweep failed", "error", err)
	} else if removed > 0 {
		slog.Info("discarded stale carts", "count", removed)
	}
}
