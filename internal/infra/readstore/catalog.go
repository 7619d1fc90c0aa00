package readstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
	"storefront-core/internal/usecase/shared"
)

// CatalogReadStore exposes the slice of the product catalog the write side
// needs: identity, current price, and stock counts.
type CatalogReadStore struct {
	db db.DBTX
}

func NewCatalogReadStore(dbtx db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: dbtx}
}

const variantQuery = `
	SELECT v.id, p.name, v.sku, v.price_cents, v.available_stock, v.reserved_stock
	FROM product_variants v
	JOIN products p ON p.id = v.product_id
	WHERE v.is_active = true AND p.is_active = true`

func (s *CatalogReadStore) VariantByID(ctx context.Context, id uuid.UUID) (*shared.VariantSnapshot, error) {
	var snap shared.VariantSnapshot
	err := s.db.QueryRow(ctx, variantQuery+` AND v.id = $1`, id).Scan(
		&snap.ID, &snap.ProductName, &snap.SKU, &snap.PriceCents, &snap.AvailableStock, &snap.ReservedStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("variant not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load variant", err)
	}
	return &snap, nil
}

func (s *CatalogReadStore) VariantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]shared.VariantSnapshot, error) {
	rows, err := s.db.Query(ctx, variantQuery+` AND v.id = ANY($1)`, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load variants", err)
	}
	defer rows.Close()

	snaps := make(map[uuid.UUID]shared.VariantSnapshot, len(ids))
	for rows.Next() {
		var snap shared.VariantSnapshot
		if err := rows.Scan(&snap.ID, &snap.ProductName, &snap.SKU, &snap.PriceCents,
			&snap.AvailableStock, &snap.ReservedStock); err != nil {
			return nil, infra.WrapRepoErr("failed to scan variant", err)
		}
		snaps[snap.ID] = snap
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read variants", err)
	}
	return snaps, nil
}
