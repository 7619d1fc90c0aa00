package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"storefront-core/internal/domain/authz"
	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/discount"
	"storefront-core/internal/domain/inventory"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

type CheckoutInput struct {
	ShippingAddressID uuid.UUID
	BillingAddressID  *uuid.UUID
	ShippingMethod    string
	PaymentMethod     string
	DiscountCode      *string
	CustomerNotes     string
}

type CheckoutResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Status      order.Status
	Totals      order.Totals
}

// CheckoutCommands turns a cart into an order. The flow deliberately runs in
// three phases: reserve stock in one transaction, call the payment provider
// with no locks held, then commit atomically. Every failure after the
// reservation releases it before the error surfaces.
type CheckoutCommands interface {
	Checkout(ctx context.Context, principal *user.Principal, in CheckoutInput) (*CheckoutResult, error)
}

type checkoutCommandsImpl struct {
	uow      shared.UnitOfWork
	ledger   InventoryLedger
	gateway  PaymentGateway
	notifier Notifier
	clock    clock.Clock
	cfg      config.CheckoutConfig
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	ledger InventoryLedger,
	gateway PaymentGateway,
	notifier Notifier,
	clk clock.Clock,
	cfg config.CheckoutConfig,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:      uow,
		ledger:   ledger,
		gateway:  gateway,
		notifier: notifier,
		clock:    clk,
		cfg:      cfg,
	}
}

func (cc *checkoutCommandsImpl) Checkout(ctx context.Context, principal *user.Principal, in CheckoutInput) (*CheckoutResult, error) {
	if !authz.Authorize(principal.Role(), authz.CapOrderCreate) {
		return nil, ErrAuthorization
	}

	reads := cc.uow.CommandReads()

	crt, err := reads.CartByPrincipal(ctx, principal.ID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, errs.Wrap(err, "loading cart")
	}
	if crt.IsEmpty() {
		return nil, ErrEmptyCart
	}

	shippingAddr, err := reads.AddressByID(ctx, principal.ID(), in.ShippingAddressID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, errs.Wrap(err, "loading shipping address")
	}
	billingAddr := shippingAddr
	if in.BillingAddressID != nil && *in.BillingAddressID != in.ShippingAddressID {
		billingAddr, err = reads.AddressByID(ctx, principal.ID(), *in.BillingAddressID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrAddressNotFound
			}
			return nil, errs.Wrap(err, "loading billing address")
		}
	}

	items, reserveLines, subtotal, err := cc.priceCart(ctx, reads, crt)
	if err != nil {
		return nil, err
	}

	reservation, err := cc.ledger.Reserve(ctx, crt.ID(), reserveLines)
	if err != nil {
		return nil, err
	}

	var code *discount.Code
	var discountCents int64
	if in.DiscountCode != nil && *in.DiscountCode != "" {
		code, discountCents, err = cc.applyDiscount(ctx, reads, *in.DiscountCode, subtotal)
		if err != nil {
			cc.compensate(ctx, reservation.ID())
			return nil, err
		}
	}

	totals := order.ComputeTotals(subtotal, discountCents, cc.cfg.TaxRateBps, cc.cfg.FlatShippingCts)

	payment, err := cc.gateway.Authorize(ctx, PaymentRequest{
		OrderNumber: reservation.ID().String(),
		PrincipalID: principal.ID(),
		AmountCents: totals.TotalCents,
		Currency:    cc.cfg.Currency,
		Method:      in.PaymentMethod,
	})
	if err != nil {
		// Exhausting the gateway retry budget counts as a decline.
		cc.compensate(ctx, reservation.ID())
		return nil, errs.Mark(err, ErrPaymentDeclined)
	}
	if !payment.Authorized {
		cc.compensate(ctx, reservation.ID())
		return nil, errs.Mark(errs.New(payment.DeclineReason), ErrPaymentDeclined)
	}

	result, err := cc.commit(ctx, principal.ID(), reservation.ID(), crt.ID(), items, totals,
		*shippingAddr, *billingAddr, in, payment, code)
	if err != nil {
		cc.compensate(ctx, reservation.ID())
		return nil, err
	}

	cc.notifier.OrderEvent(ctx, "order.placed", result.OrderID, map[string]any{
		"order_number": result.OrderNumber,
		"total_cents":  result.Totals.TotalCents,
	})
	return result, nil
}

func (cc *checkoutCommandsImpl) priceCart(ctx context.Context, reads shared.CommandReads, crt *cart.Cart) ([]*order.Item, []inventory.ReservationLine, int64, error) {
	ids := make([]uuid.UUID, 0, len(crt.Lines()))
	for _, ln := range crt.Lines() {
		ids = append(ids, ln.VariantID())
	}
	variants, err := reads.VariantsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, 0, errs.Wrap(err, "loading cart variants")
	}

	items := make([]*order.Item, 0, len(crt.Lines()))
	reserveLines := make([]inventory.ReservationLine, 0, len(crt.Lines()))
	var subtotal int64
	for _, ln := range crt.Lines() {
		v, ok := variants[ln.VariantID()]
		if !ok {
			return nil, nil, 0, ErrVariantNotFound
		}
		// Current catalog price wins over whatever the cart captured.
		items = append(items, order.NewItem(v.ID, v.ProductName, v.SKU, ln.Quantity(), v.PriceCents, ln.Customization().Raw()))
		reserveLines = append(reserveLines, inventory.ReservationLine{VariantID: v.ID, Quantity: ln.Quantity()})
		subtotal += v.PriceCents * int64(ln.Quantity())
	}
	return items, reserveLines, subtotal, nil
}

func (cc *checkoutCommandsImpl) applyDiscount(ctx context.Context, reads shared.CommandReads, rawCode string, subtotal int64) (*discount.Code, int64, error) {
	code, err := reads.DiscountByCode(ctx, rawCode)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, 0, ErrDiscountNotFound
		}
		return nil, 0, errs.Wrap(err, "loading discount code")
	}
	if err := code.Validate(cc.clock.Now(), subtotal); err != nil {
		return nil, 0, err
	}
	return code, code.AmountCents(subtotal), nil
}

func (cc *checkoutCommandsImpl) commit(
	ctx context.Context,
	principalID, reservationID, cartID uuid.UUID,
	items []*order.Item,
	totals order.Totals,
	shippingAddr, billingAddr order.Address,
	in CheckoutInput,
	payment *PaymentResult,
	code *discount.Code,
) (*CheckoutResult, error) {
	// Only an immediate capture lands the order in confirmed; a plain
	// authorization waits for the settlement webhook.
	status := order.StatusPendingPayment
	if payment.Settled {
		status = order.StatusConfirmed
	}
	var result *CheckoutResult
	err := cc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := cc.ledger.ConsumeInTx(ctx, tx, reservationID); err != nil {
			return err
		}

		var discountCodeID *uuid.UUID
		if code != nil {
			// Re-validate under the row lock: the code may have been
			// deactivated or exhausted since the pre-payment check.
			locked, err := tx.Discounts().ByCodeForUpdate(ctx, code.Code())
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrDiscountNotFound
				}
				return errs.Wrap(err, "locking discount code")
			}
			if err := locked.Validate(cc.clock.Now(), totals.SubtotalCents); err != nil {
				return err
			}
			if err := tx.Discounts().IncrementUsage(ctx, locked.ID()); err != nil {
				if infra.IsKind(err, infra.KindConflict) {
					return discount.ErrUsageExhausted
				}
				return errs.Wrap(err, "incrementing discount usage")
			}
			id := locked.ID()
			discountCodeID = &id
		}

		o, err := order.NewOrder(
			principalID,
			status,
			items,
			totals,
			shippingAddr, billingAddr,
			in.ShippingMethod, in.PaymentMethod, payment.ProviderRef,
			discountCodeID,
			in.CustomerNotes,
			cc.clock.Now(),
		)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return errs.Wrap(err, "persisting order")
		}
		if err := tx.Carts().Delete(ctx, cartID); err != nil {
			return errs.Wrap(err, "clearing cart")
		}

		result = &CheckoutResult{
			OrderID:     o.ID(),
			OrderNumber: o.Number(),
			Status:      o.Status(),
			Totals:      o.Totals(),
		}
		return nil
	})
	if err != nil {
		if isDomainCheckoutErr(err) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrCommitFailed)
	}
	return result, nil
}

func isDomainCheckoutErr(err error) bool {
	for _, sentinel := range []error{
		ErrReservationExpired,
		ErrDiscountNotFound,
		discount.ErrInactive,
		discount.ErrNotYetActive,
		discount.ErrExpired,
		discount.ErrUsageExhausted,
		discount.ErrBelowMinimum,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (cc *checkoutCommandsImpl) compensate(ctx context.Context, reservationID uuid.UUID) {
	if err := cc.ledger.Release(ctx, reservationID); err != nil {
		slog.ErrorContext(ctx, "failed to release reservation during compensation",
			"reservation_id", reservationID, "error", err)
	}
}
