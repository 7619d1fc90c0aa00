package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(dbtx db.DBTX) *CartRepository {
	return &CartRepository{db: dbtx}
}

func (r *CartRepository) FindByPrincipalForUpdate(ctx context.Context, principalID uuid.UUID) (*cart.Cart, error) {
	const query = `
		SELECT id, principal_id, updated_at
		FROM carts
		WHERE principal_id = $1
		FOR UPDATE`

	var (
		id        uuid.UUID
		pid       uuid.UUID
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, principalID).Scan(&id, &pid, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock cart", err)
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return cart.ReconstructCart(id, pid, lines, updatedAt), nil
}

func (r *CartRepository) loadLines(ctx context.Context, cartID uuid.UUID) ([]*cart.Line, error) {
	const query = `
		SELECT id, variant_id, quantity, unit_price_cents, customization, customization_signature
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var lines []*cart.Line
	for rows.Next() {
		var (
			id        uuid.UUID
			variantID uuid.UUID
			quantity  int32
			unitPrice int64
			raw       []byte
			signature string
		)
		if err := rows.Scan(&id, &variantID, &quantity, &unitPrice, &raw, &signature); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		customization := cart.ReconstructCustomization(raw, signature)
		lines = append(lines, cart.ReconstructLine(id, variantID, quantity, unitPrice, customization))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}
	return lines, nil
}

func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	const query = `
		INSERT INTO carts (id, principal_id, created_at, updated_at)
		VALUES ($1, $2, now(), now())`

	if _, err := r.db.Exec(ctx, query, c.ID(), c.PrincipalID()); err != nil {
		return infra.WrapRepoErr("failed to create cart", err)
	}
	return nil
}

// SaveLines replaces the line set wholesale. Lines are few per cart, so a
// delete-and-reinsert stays simpler than diffing.
func (r *CartRepository) SaveLines(ctx context.Context, c *cart.Cart) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, c.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear cart lines", err)
	}

	const insert = `
		INSERT INTO cart_lines (id, cart_id, variant_id, quantity, unit_price_cents, customization, customization_signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

	for _, ln := range c.Lines() {
		_, err := r.db.Exec(ctx, insert,
			ln.ID(), c.ID(), ln.VariantID(), ln.Quantity(), ln.UnitPriceCents(),
			ln.Customization().Raw(), ln.Customization().Signature())
		if err != nil {
			return infra.WrapRepoErr("failed to insert cart line", err)
		}
	}

	if _, err := r.db.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, c.ID()); err != nil {
		return infra.WrapRepoErr("failed to touch cart", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return infra.WrapRepoErr("failed to delete cart lines", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return infra.WrapRepoErr("failed to delete cart", err)
	}
	return nil
}

// DeleteUntouchedSince relies on cart_lines ON DELETE CASCADE; the returned
// count reflects carts, not lines.
func (r *CartRepository) DeleteUntouchedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete stale carts", err)
	}
	return tag.RowsAffected(), nil
}
