package repository

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

type DiscountRepository struct {
	db db.DBTX
}

func NewDiscountRepository(dbtx db.DBTX) *DiscountRepository {
	return &DiscountRepository{db: dbtx}
}

func (r *DiscountRepository) ByCodeForUpdate(ctx context.Context, code string) (*discount.Code, error) {
	const query = `
		SELECT id, code, kind, value,
		       min_subtotal_cents, max_discount_cents,
		       valid_from, valid_until, max_uses, use_count, is_active
		FROM discount_codes
		WHERE upper(code) = upper($1)
		FOR UPDATE`

	return scanDiscount(r.db.QueryRow(ctx, query, code))
}

// IncrementUsage only succeeds while use_count is below max_uses, so two
// commits racing for the last use cannot both win.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE discount_codes
		SET use_count = use_count + 1
		WHERE id = $1 AND (max_uses IS NULL OR use_count < max_uses)`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return infra.WrapRepoErr("failed to increment discount usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("discount usage exhausted", errors.New("no rows updated"), infra.KindConflict)
	}
	return nil
}

func scanDiscount(row pgx.Row) (*discount.Code, error) {
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
	err := row.Scan(&id, &rawCode, &kind, &value,
		&minSubtotalCents, &maxDiscountCents,
		&validFrom, &validUntil, &maxUses, &useCount, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("discount code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan discount code", err)
	}

	code, err := discount.NewCode(id, rawCode, discount.Kind(kind), value,
		minSubtotalCents, maxDiscountCents, validFrom, validUntil, maxUses, useCount, isActive)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to reconstruct discount code", err)
	}
	return code, nil
}
