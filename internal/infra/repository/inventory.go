package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/inventory"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
	"storefront-core/internal/usecase/shared"
)

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(dbtx db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: dbtx}
}

// VariantsForUpdate locks rows in ascending id order regardless of input
// order; every multi-variant caller goes through here, which is what keeps
// concurrent reservations deadlock-free.
func (r *InventoryRepository) VariantsForUpdate(ctx context.Context, ids []uuid.UUID) ([]shared.VariantStock, error) {
	const query = `
		SELECT id, available_stock, reserved_stock
		FROM product_variants
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock variants", err)
	}
	defer rows.Close()

	var stocks []shared.VariantStock
	for rows.Next() {
		var s shared.VariantStock
		if err := rows.Scan(&s.ID, &s.AvailableStock, &s.ReservedStock); err != nil {
			return nil, infra.WrapRepoErr("failed to scan variant stock", err)
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read variant stocks", err)
	}
	return stocks, nil
}

func (r *InventoryRepository) MoveAvailableToReserved(ctx context.Context, variantID uuid.UUID, qty int32) error {
	const query = `
		UPDATE product_variants
		SET available_stock = available_stock - $2,
		    reserved_stock = reserved_stock + $2,
		    updated_at = now()
		WHERE id = $1 AND available_stock >= $2`

	tag, err := r.db.Exec(ctx, query, variantID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("stock changed under lock", errors.New("no rows updated"), infra.KindConflict)
	}
	return nil
}

func (r *InventoryRepository) MoveReservedToAvailable(ctx context.Context, variantID uuid.UUID, qty int32) error {
	const query = `
		UPDATE product_variants
		SET available_stock = available_stock + $2,
		    reserved_stock = reserved_stock - $2,
		    updated_at = now()
		WHERE id = $1 AND reserved_stock >= $2`

	tag, err := r.db.Exec(ctx, query, variantID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to release stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reserved count out of sync", errors.New("no rows updated"), infra.KindConflict)
	}
	return nil
}

func (r *InventoryRepository) DeductReserved(ctx context.Context, variantID uuid.UUID, qty int32) error {
	const query = `
		UPDATE product_variants
		SET reserved_stock = reserved_stock - $2,
		    updated_at = now()
		WHERE id = $1 AND reserved_stock >= $2`

	tag, err := r.db.Exec(ctx, query, variantID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to deduct reserved stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reserved count out of sync", errors.New("no rows updated"), infra.KindConflict)
	}
	return nil
}

func (r *InventoryRepository) CreateReservation(ctx context.Context, res *inventory.Reservation) error {
	const insertReservation = `
		INSERT INTO stock_reservations (id, cart_id, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, insertReservation,
		res.ID(), res.CartID(), string(res.Status()), res.ExpiresAt(), res.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to insert reservation", err)
	}

	const insertLine = `
		INSERT INTO stock_reservation_lines (reservation_id, variant_id, quantity)
		VALUES ($1, $2, $3)`

	for _, ln := range res.Lines() {
		if _, err := r.db.Exec(ctx, insertLine, res.ID(), ln.VariantID, ln.Quantity); err != nil {
			return infra.WrapRepoErr("failed to insert reservation line", err)
		}
	}
	return nil
}

func (r *InventoryRepository) ReservationForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	const query = `
		SELECT id, cart_id, status, expires_at, created_at
		FROM stock_reservations
		WHERE id = $1
		FOR UPDATE`

	var (
		resID     uuid.UUID
		cartID    uuid.UUID
		status    string
		expiresAt time.Time
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&resID, &cartID, &status, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock reservation", err)
	}

	const lineQuery = `
		SELECT variant_id, quantity
		FROM stock_reservation_lines
		WHERE reservation_id = $1
		ORDER BY variant_id`

	rows, err := r.db.Query(ctx, lineQuery, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load reservation lines", err)
	}
	defer rows.Close()

	var lines []inventory.ReservationLine
	for rows.Next() {
		var ln inventory.ReservationLine
		if err := rows.Scan(&ln.VariantID, &ln.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation line", err)
		}
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read reservation lines", err)
	}

	return inventory.ReconstructReservation(
		resID, cartID, lines, inventory.ReservationStatus(status), expiresAt, createdAt), nil
}

func (r *InventoryRepository) SetReservationStatus(ctx context.Context, id uuid.UUID, status inventory.ReservationStatus) error {
	const query = `UPDATE stock_reservations SET status = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, string(status)); err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	return nil
}

func (r *InventoryRepository) ExpiredHeld(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	const query = `
		SELECT id
		FROM stock_reservations
		WHERE status = 'held' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired reservations", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired reservations", err)
	}
	return ids, nil
}
