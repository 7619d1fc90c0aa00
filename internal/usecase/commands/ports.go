package commands

import (
	"context"

	"github.com/google/uuid"
)

type PaymentRequest struct {
	OrderNumber string
	PrincipalID uuid.UUID
	AmountCents int64
	Currency    string
	Method      string
}

type PaymentResult struct {
	ProviderRef string
	Authorized  bool
	// Settled reports immediate capture; an authorization without it leaves
	// the order awaiting settlement.
	Settled       bool
	DeclineReason string
}

// PaymentGateway fronts the external payment provider. Authorize returns a
// result with Authorized=false on a decline; transport failures and timeouts
// past the retry budget surface as errors and callers treat them as declines.
type PaymentGateway interface {
	Authorize(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	Refund(ctx context.Context, providerRef string, amountCents int64) error
}

// Notifier publishes order lifecycle events. Delivery is best effort: callers
// never fail a command because a notification could not be published.
type Notifier interface {
	OrderEvent(ctx context.Context, event string, orderID uuid.UUID, payload any)
}
