package readstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
	"storefront-core/internal/usecase/queries"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(dbtx db.DBTX) *CartReadStore {
	return &CartReadStore{db: dbtx}
}

// AggregateByPrincipal rebuilds the cart aggregate without taking locks; the
// write side uses it for validation reads before entering a transaction.
func (s *CartReadStore) AggregateByPrincipal(ctx context.Context, principalID uuid.UUID) (*cart.Cart, error) {
	const query = `SELECT id, principal_id, updated_at FROM carts WHERE principal_id = $1`

	var (
		id        uuid.UUID
		pid       uuid.UUID
		updatedAt time.Time
	)
	err := s.db.QueryRow(ctx, query, principalID).Scan(&id, &pid, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load cart", err)
	}

	const lineQuery = `
		SELECT id, variant_id, quantity, unit_price_cents, customization, customization_signature
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, lineQuery, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var lines []*cart.Line
	for rows.Next() {
		var (
			lineID    uuid.UUID
			variantID uuid.UUID
			quantity  int32
			unitPrice int64
			raw       []byte
			signature string
		)
		if err := rows.Scan(&lineID, &variantID, &quantity, &unitPrice, &raw, &signature); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		customization := cart.ReconstructCustomization(raw, signature)
		lines = append(lines, cart.ReconstructLine(lineID, variantID, quantity, unitPrice, customization))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}
	return cart.ReconstructCart(id, pid, lines, updatedAt), nil
}

// ViewByPrincipal joins in product names for the API response shape.
func (s *CartReadStore) ViewByPrincipal(ctx context.Context, principalID uuid.UUID) (*queries.CartView, error) {
	const query = `SELECT id, principal_id, updated_at FROM carts WHERE principal_id = $1`

	view := &queries.CartView{Lines: []queries.CartLineView{}}
	err := s.db.QueryRow(ctx, query, principalID).Scan(&view.ID, &view.PrincipalID, &view.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load cart", err)
	}

	const lineQuery = `
		SELECT l.id, l.variant_id, p.name, v.sku, l.quantity, l.unit_price_cents, l.customization
		FROM cart_lines l
		JOIN product_variants v ON v.id = l.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE l.cart_id = $1
		ORDER BY l.created_at`

	rows, err := s.db.Query(ctx, lineQuery, view.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart line views", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			lv  queries.CartLineView
			raw []byte
		)
		if err := rows.Scan(&lv.LineID, &lv.VariantID, &lv.ProductName, &lv.SKU,
			&lv.Quantity, &lv.UnitPriceCents, &raw); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line view", err)
		}
		lv.Customization = json.RawMessage(raw)
		lv.TotalCents = lv.UnitPriceCents * int64(lv.Quantity)
		view.SubtotalCents += lv.TotalCents
		view.Lines = append(view.Lines, lv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart line views", err)
	}
	return view, nil
}
