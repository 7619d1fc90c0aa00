package discount

import (
	"math"
	"time"

	"storefront-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInactive       = errs.New("discount code is not active")
	ErrNotYetActive   = errs.New("discount code is not yet valid")
	ErrExpired        = errs.New("discount code has expired")
	ErrUsageExhausted = errs.New("discount usage limit has been reached")
	ErrBelowMinimum   = errs.New("cart subtotal is below the discount minimum")
	ErrInvalidValue   = errs.New("invalid discount value")
)

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

func (k Kind) IsValid() bool {
	return k == KindPercentage || k == KindFixed
}

// Code is a validation snapshot: it never mutates its own usage count. The
// increment belongs to the order commit so abandoned checkouts are never
// charged a use.
type Code struct {
	id               uuid.UUID
	code             string
	kind             Kind
	value            int64 // percent for percentage kind, cents for fixed kind
	minSubtotalCents *int64
	maxDiscountCents *int64
	validFrom        *time.Time
	validUntil       *time.Time
	maxUses          *int32
	useCount         int32
	isActive         bool
}

func NewCode(
	id uuid.UUID,
	code string,
	kind Kind,
	value int64,
	minSubtotalCents, maxDiscountCents *int64,
	validFrom, validUntil *time.Time,
	maxUses *int32,
	useCount int32,
	isActive bool,
) (*Code, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidValue
	}
	if value <= 0 || (kind == KindPercentage && value > 100) {
		return nil, ErrInvalidValue
	}
	return &Code{
		id:               id,
		code:             code,
		kind:             kind,
		value:            value,
		minSubtotalCents: minSubtotalCents,
		maxDiscountCents: maxDiscountCents,
		validFrom:        validFrom,
		validUntil:       validUntil,
		maxUses:          maxUses,
		useCount:         useCount,
		isActive:         isActive,
	}, nil
}

func (c *Code) ID() uuid.UUID  { return c.id }
func (c *Code) Code() string   { return c.code }
func (c *Code) Kind() Kind     { return c.kind }
func (c *Code) Value() int64   { return c.value }
func (c *Code) UseCount() int32 { return c.useCount }
func (c *Code) MaxUses() *int32 { return c.maxUses }

// Validate runs the checks in a fixed order; the first failure wins and
// determines the error kind surfaced to the caller.
func (c *Code) Validate(now time.Time, subtotalCents int64) error {
	if !c.isActive {
		return ErrInactive
	}
	if c.validFrom != nil && now.Before(*c.validFrom) {
		return ErrNotYetActive
	}
	if c.validUntil != nil && now.After(*c.validUntil) {
		return ErrExpired
	}
	if c.maxUses != nil && c.useCount >= *c.maxUses {
		return ErrUsageExhausted
	}
	if c.minSubtotalCents != nil && subtotalCents < *c.minSubtotalCents {
		return ErrBelowMinimum
	}
	return nil
}

// AmountCents computes the discount for a subtotal. Percentage codes round
// half away from zero; fixed codes never push the total negative.
func (c *Code) AmountCents(subtotalCents int64) int64 {
	switch c.kind {
	case KindPercentage:
		amount := int64(math.Round(float64(subtotalCents) * float64(c.value) / 100.0))
		if c.maxDiscountCents != nil && amount > *c.maxDiscountCents {
			amount = *c.maxDiscountCents
		}
		return amount
	case KindFixed:
		if c.value > subtotalCents {
			return subtotalCents
		}
		return c.value
	default:
		return 0
	}
}
