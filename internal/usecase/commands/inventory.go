package commands

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/domain/inventory"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

const sweepBatchSize = 100

// InventoryLedger owns every stock movement. Counts only ever move between
// available and reserved inside a transaction, so their sum is stable except
// at the consume step, which deducts reserved for good.
type InventoryLedger interface {
	Reserve(ctx context.Context, cartID uuid.UUID, lines []inventory.ReservationLine) (*inventory.Reservation, error)
	ConsumeInTx(ctx context.Context, tx shared.Tx, reservationID uuid.UUID) (*inventory.Reservation, error)
	Release(ctx context.Context, reservationID uuid.UUID) error
	SweepExpired(ctx context.Context) (int, error)
}

type inventoryLedgerImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	ttl   time.Duration
}

func NewInventoryLedger(uow shared.UnitOfWork, clk clock.Clock, reservationTTL time.Duration) InventoryLedger {
	return &inventoryLedgerImpl{uow: uow, clock: clk, ttl: reservationTTL}
}

// Reserve moves stock aside for every line or for none of them. Variant rows
// are locked in ascending id order; on the first shortage the transaction
// rolls back and a StockError identifies the variant.
func (l *inventoryLedgerImpl) Reserve(ctx context.Context, cartID uuid.UUID, lines []inventory.ReservationLine) (*inventory.Reservation, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	merged := mergeLines(lines)
	ids := make([]uuid.UUID, 0, len(merged))
	for _, ln := range merged {
		ids = append(ids, ln.VariantID)
	}

	var reservation *inventory.Reservation
	err := l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		stocks, err := tx.Inventory().VariantsForUpdate(ctx, ids)
		if err != nil {
			return errs.Wrap(err, "locking variants for reservation")
		}
		byID := make(map[uuid.UUID]shared.VariantStock, len(stocks))
		for _, s := range stocks {
			byID[s.ID] = s
		}

		for _, ln := range merged {
			stock, ok := byID[ln.VariantID]
			if !ok {
				return errs.Mark(errs.New("variant missing during reservation"), ErrVariantNotFound)
			}
			if stock.AvailableStock < ln.Quantity {
				return &StockError{Shortage: inventory.StockShortage{
					VariantID: ln.VariantID,
					Requested: ln.Quantity,
					Available: stock.AvailableStock,
				}}
			}
		}

		for _, ln := range merged {
			if err := tx.Inventory().MoveAvailableToReserved(ctx, ln.VariantID, ln.Quantity); err != nil {
				return errs.Wrap(err, "moving stock to reserved")
			}
		}

		r, err := inventory.NewReservation(cartID, merged, l.ttl, l.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Inventory().CreateReservation(ctx, r); err != nil {
			return errs.Wrap(err, "persisting reservation")
		}
		reservation = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// ConsumeInTx finalizes a held reservation inside the caller's commit
// transaction: reserved stock is deducted and the reservation closed.
// Consuming an already consumed reservation is a no-op success so a retried
// commit cannot deduct twice; a released one fails the commit.
func (l *inventoryLedgerImpl) ConsumeInTx(ctx context.Context, tx shared.Tx, reservationID uuid.UUID) (*inventory.Reservation, error) {
	r, err := tx.Inventory().ReservationForUpdate(ctx, reservationID)
	if err != nil {
		return nil, errs.Wrap(err, "locking reservation for consume")
	}
	if r.Status() == inventory.StatusConsumed {
		return r, nil
	}
	if !r.IsHeld() {
		return nil, errs.Mark(inventory.ErrNotHeld, ErrCommitFailed)
	}
	if r.HasExpired(l.clock.Now()) {
		return nil, ErrReservationExpired
	}
	for _, ln := range r.Lines() {
		if err := tx.Inventory().DeductReserved(ctx, ln.VariantID, ln.Quantity); err != nil {
			return nil, errs.Wrap(err, "deducting reserved stock")
		}
	}
	if err := tx.Inventory().SetReservationStatus(ctx, reservationID, inventory.StatusConsumed); err != nil {
		return nil, errs.Wrap(err, "closing reservation")
	}
	return r, nil
}

// Release returns a held reservation's stock to available. Releasing a
// reservation that is already terminal is a no-op, so compensation paths can
// call it without checking state first.
func (l *inventoryLedgerImpl) Release(ctx context.Context, reservationID uuid.UUID) error {
	return l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return l.releaseInTx(ctx, tx, reservationID)
	})
}

func (l *inventoryLedgerImpl) releaseInTx(ctx context.Context, tx shared.Tx, reservationID uuid.UUID) error {
	r, err := tx.Inventory().ReservationForUpdate(ctx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return errs.Wrap(err, "locking reservation for release")
	}
	if !r.IsHeld() {
		return nil
	}
	for _, ln := range r.Lines() {
		if err := tx.Inventory().MoveReservedToAvailable(ctx, ln.VariantID, ln.Quantity); err != nil {
			return errs.Wrap(err, "returning reserved stock")
		}
	}
	return tx.Inventory().SetReservationStatus(ctx, reservationID, inventory.StatusReleased)
}

// SweepExpired releases held reservations past their TTL, one transaction
// per reservation so a single failure cannot poison the whole batch.
func (l *inventoryLedgerImpl) SweepExpired(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	err := l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Inventory().ExpiredHeld(ctx, l.clock.Now(), sweepBatchSize)
		return err
	})
	if err != nil {
		return 0, errs.Wrap(err, "listing expired reservations")
	}

	released := 0
	for _, id := range ids {
		if err := l.Release(ctx, id); err != nil {
			slog.WarnContext(ctx, "failed to release expired reservation",
				"reservation_id", id, "error", err)
			continue
		}
		released++
	}
	return released, nil
}

func mergeLines(lines []inventory.ReservationLine) []inventory.ReservationLine {
	byID := make(map[uuid.UUID]int32, len(lines))
	for _, ln := range lines {
		byID[ln.VariantID] += ln.Quantity
	}
	merged := make([]inventory.ReservationLine, 0, len(byID))
	for id, qty := range byID {
		merged = append(merged, inventory.ReservationLine{VariantID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].VariantID.String() < merged[j].VariantID.String()
	})
	return merged
}
