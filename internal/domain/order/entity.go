package order

import (
	"strings"
	"time"

	"storefront-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errs.New("invalid order status transition")
	ErrNoItems           = errs.New("order must have at least one item")
)

// Order is immutable once created except for status, tracking metadata and
// the timestamps stamped on transitions.
type Order struct {
	id             uuid.UUID
	number         string
	principalID    uuid.UUID
	status         Status
	items          []*Item
	totals         Totals
	shippingAddr   Address
	billingAddr    Address
	shippingMethod string
	paymentMethod  string
	paymentRef     string
	discountCodeID *uuid.UUID
	customerNotes  string
	trackingNumber *string
	confirmedAt    *time.Time
	shippedAt      *time.Time
	deliveredAt    *time.Time
	cancelledAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewOrder(
	principalID uuid.UUID,
	status Status,
	items []*Item,
	totals Totals,
	shippingAddr, billingAddr Address,
	shippingMethod, paymentMethod, paymentRef string,
	discountCodeID *uuid.UUID,
	customerNotes string,
	now time.Time,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if status != StatusPendingPayment && status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	o := &Order{
		id:             uuid.New(),
		number:         newOrderNumber(),
		principalID:    principalID,
		status:         status,
		items:          items,
		totals:         totals,
		shippingAddr:   shippingAddr,
		billingAddr:    billingAddr,
		shippingMethod: shippingMethod,
		paymentMethod:  paymentMethod,
		paymentRef:     paymentRef,
		discountCodeID: discountCodeID,
		customerNotes:  customerNotes,
		createdAt:      now,
		updatedAt:      now,
	}
	if status == StatusConfirmed {
		o.confirmedAt = &now
	}
	return o, nil
}

func ReconstructOrder(
	id uuid.UUID,
	number string,
	principalID uuid.UUID,
	status Status,
	items []*Item,
	totals Totals,
	shippingAddr, billingAddr Address,
	shippingMethod, paymentMethod, paymentRef string,
	discountCodeID *uuid.UUID,
	customerNotes string,
	trackingNumber *string,
	confirmedAt, shippedAt, deliveredAt, cancelledAt *time.Time,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:             id,
		number:         number,
		principalID:    principalID,
		status:         status,
		items:          items,
		totals:         totals,
		shippingAddr:   shippingAddr,
		billingAddr:    billingAddr,
		shippingMethod: shippingMethod,
		paymentMethod:  paymentMethod,
		paymentRef:     paymentRef,
		discountCodeID: discountCodeID,
		customerNotes:  customerNotes,
		trackingNumber: trackingNumber,
		confirmedAt:    confirmedAt,
		shippedAt:      shippedAt,
		deliveredAt:    deliveredAt,
		cancelledAt:    cancelledAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// TransitionTo enforces the status graph and stamps the matching timestamp.
// The order is left untouched when the transition is illegal.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !next.IsValid() || !o.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.status = next
	o.updatedAt = now
	switch next {
	case StatusConfirmed:
		o.confirmedAt = &now
	case StatusShipped:
		o.shippedAt = &now
	case StatusDelivered:
		o.deliveredAt = &now
	case StatusCancelled:
		o.cancelledAt = &now
	}
	return nil
}

// RequiresRefundFor reports whether cancelling from the current status needs
// a gateway refund first (payment already captured).
func (o *Order) RequiresRefundFor(next Status) bool {
	return next == StatusCancelled && o.status == StatusConfirmed
}

func (o *Order) SetTrackingNumber(tn string) {
	o.trackingNumber = &tn
}

func (o *Order) ID() uuid.UUID              { return o.id }
func (o *Order) Number() string             { return o.number }
func (o *Order) PrincipalID() uuid.UUID     { return o.principalID }
func (o *Order) Status() Status             { return o.status }
func (o *Order) Items() []*Item             { return o.items }
func (o *Order) Totals() Totals             { return o.totals }
func (o *Order) ShippingAddress() Address   { return o.shippingAddr }
func (o *Order) BillingAddress() Address    { return o.billingAddr }
func (o *Order) ShippingMethod() string     { return o.shippingMethod }
func (o *Order) PaymentMethod() string      { return o.paymentMethod }
func (o *Order) PaymentRef() string         { return o.paymentRef }
func (o *Order) DiscountCodeID() *uuid.UUID { return o.discountCodeID }
func (o *Order) CustomerNotes() string      { return o.customerNotes }
func (o *Order) TrackingNumber() *string    { return o.trackingNumber }
func (o *Order) ConfirmedAt() *time.Time    { return o.confirmedAt }
func (o *Order) ShippedAt() *time.Time      { return o.shippedAt }
func (o *Order) DeliveredAt() *time.Time    { return o.deliveredAt }
func (o *Order) CancelledAt() *time.Time    { return o.cancelledAt }
func (o *Order) CreatedAt() time.Time       { return o.createdAt }
func (o *Order) UpdatedAt() time.Time       { return o.updatedAt }

// Human-readable order number, e.g. ORD-9F3K2A1B.
func newOrderNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + raw[:8]
}
