package readstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/discount"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
)

type DiscountReadStore struct {
	db db.DBTX
}

func NewDiscountReadStore(dbtx db.DBTX) *DiscountReadStore {
	return &DiscountReadStore{db: dbtx}
}

func (s *DiscountReadStore) FindByCode(ctx context.Context, code string) (*discount.Code, error) {
	const query = `
		SELECT id, code, kind, value,
		       min_subtotal_cents, max_discount_cents,
		       valid_from, valid_until, max_uses, use_count, is_active
		FROM discount_codes
		WHERE upper(code) = upper($1)`

	var (
		id               uuid.UUID
		rawCode          string
		kind             string
		value            int64
		minSubtotalCents *int64
		maxDiscountCents *int64
		validFrom        *time.Time
		validUntil       *time.Time
		maxUses          *int32
		useCount         int32
		isActive         bool
	)
	err := s.db.QueryRow(ctx, query, code).Scan(&id, &rawCode, &kind, &value,
		&minSubtotalCents, &maxDiscountCents, &validFrom, &validUntil, &maxUses, &useCount, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("discount code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load discount code", err)
	}

	dc, err := discount.NewCode(id, rawCode, discount.Kind(kind), value,
		minSubtotalCents, maxDiscountCents, validFrom, validUntil, maxUses, useCount, isActive)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to reconstruct discount code", err)
	}
	return dc, nil
}
