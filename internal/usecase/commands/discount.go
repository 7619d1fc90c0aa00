package commands

import (
	"context"

	"github.com/google/uuid"

	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

type DiscountPreview struct {
	Code          string
	DiscountCents int64
	SubtotalCents int64
}

// DiscountCommands validates codes without consuming a use; use_count only
// moves when checkout commits.
type DiscountCommands interface {
	// Preview validates rawCode against cartTotal when given, otherwise
	// against the principal's stored cart subtotal.
	Preview(ctx context.Context, principalID uuid.UUID, rawCode string, cartTotal *int64) (*DiscountPreview, error)
}

type discountCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewDiscountCommands(uow shared.UnitOfWork, clk clock.Clock) DiscountCommands {
	return &discountCommandsImpl{uow: uow, clock: clk}
}

// Preview runs the full validation chain and reports what the code would
// take off the given subtotal.
func (d *discountCommandsImpl) Preview(ctx context.Context, principalID uuid.UUID, rawCode string, cartTotal *int64) (*DiscountPreview, error) {
	reads := d.uow.CommandReads()

	var subtotal int64
	switch {
	case cartTotal != nil:
		if *cartTotal < 0 {
			return nil, ErrValidation
		}
		subtotal = *cartTotal
	default:
		crt, err := reads.CartByPrincipal(ctx, principalID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrEmptyCart
			}
			return nil, errs.Wrap(err, "loading cart")
		}
		if crt.IsEmpty() {
			return nil, ErrEmptyCart
		}
		subtotal = crt.SubtotalCents()
	}

	code, err := reads.DiscountByCode(ctx, rawCode)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, errs.Wrap(err, "loading discount code")
	}
	if err := code.Validate(d.clock.Now(), subtotal); err != nil {
		return nil, err
	}

	return &DiscountPreview{
		Code:          code.Code(),
		DiscountCents: code.AmountCents(subtotal),
		SubtotalCents: subtotal,
	}, nil
}
