package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"storefront-core/internal/domain/authz"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

type TransitionInput struct {
	OrderID        uuid.UUID
	NextStatus     order.Status
	TrackingNumber *string
}

type OrderCommands interface {
	Transition(ctx context.Context, principal *user.Principal, in TransitionInput) (*order.Order, error)
}

type orderCommandsImpl struct {
	uow      shared.UnitOfWork
	gateway  PaymentGateway
	notifier Notifier
	clock    clock.Clock
}

func NewOrderCommands(uow shared.UnitOfWork, gateway PaymentGateway, notifier Notifier, clk clock.Clock) OrderCommands {
	return &orderCommandsImpl{uow: uow, gateway: gateway, notifier: notifier, clock: clk}
}

// Transition moves an order along the status graph. Cancelling a captured
// payment refunds it between two transactions so no row lock is held across
// the gateway call and a retried transaction can never refund twice; a refund
// failure leaves the order untouched.
func (oc *orderCommandsImpl) Transition(ctx context.Context, principal *user.Principal, in TransitionInput) (*order.Order, error) {
	if !authz.Authorize(principal.Role(), authz.CapOrderUpdate) {
		return nil, ErrAuthorization
	}
	if in.NextStatus == order.StatusCancelled && !authz.Authorize(principal.Role(), authz.CapOrderCancel) {
		return nil, ErrAuthorization
	}
	if !in.NextStatus.IsValid() {
		return nil, ErrValidation
	}

	var (
		from        order.Status
		needsRefund bool
		paymentRef  string
		refundCents int64
	)
	err := oc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Orders().ForUpdate(ctx, in.OrderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Wrap(err, "locking order")
		}
		if !o.Status().CanTransitionTo(in.NextStatus) {
			return ErrInvalidTransition
		}
		from = o.Status()
		needsRefund = o.RequiresRefundFor(in.NextStatus)
		paymentRef = o.PaymentRef()
		refundCents = o.Totals().TotalCents
		return nil
	})
	if err != nil {
		return nil, err
	}

	if needsRefund {
		// The provider dedupes refunds by authorization ref, so a crash
		// between the refund and the status write cannot double-refund on
		// the retried cancellation either.
		if err := oc.gateway.Refund(ctx, paymentRef, refundCents); err != nil {
			return nil, errs.Mark(err, ErrRefundFailed)
		}
	}

	var updated *order.Order
	err = oc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Orders().ForUpdate(ctx, in.OrderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Wrap(err, "locking order")
		}
		// Someone else moved the order between the two transactions.
		if o.Status() != from {
			return ErrInvalidTransition
		}

		if err := o.TransitionTo(in.NextStatus, oc.clock.Now()); err != nil {
			if errors.Is(err, order.ErrInvalidTransition) {
				return ErrInvalidTransition
			}
			return err
		}
		if in.TrackingNumber != nil {
			o.SetTrackingNumber(*in.TrackingNumber)
		}

		if err := tx.Orders().SaveStatus(ctx, o); err != nil {
			return errs.Wrap(err, "saving order status")
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	oc.notifier.OrderEvent(ctx, "order."+updated.Status().String(), updated.ID(), map[string]any{
		"order_number": updated.Number(),
		"status":       updated.Status().String(),
	})
	return updated, nil
}
