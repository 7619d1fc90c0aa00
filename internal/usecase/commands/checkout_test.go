//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/discount"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	store     *fakeStore
	clk       *clock.MockClock
	gateway   *fakeGateway
	notifier  *fakeNotifier
	checkout  commands.CheckoutCommands
	principal *user.Principal
	cartID    uuid.UUID
	variantID uuid.UUID
	addressID uuid.UUID
}

// newCheckoutFixture seeds one customer with a cart of two units at 5000
// cents each, so the subtotal is 10000 cents.
func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	clk := clock.NewMockClock(now)
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}

	email, err := user.NewEmail("ada@example.com")
	require.NoError(t, err)
	principal := user.NewRegistered(email, "hash", user.RoleCustomer)
	store.putPrincipal(principal)

	variantID := uuid.New()
	store.putVariant(shared.VariantSnapshot{
		ID:             variantID,
		ProductName:    "Engraved Mug",
		SKU:            "MUG-001",
		PriceCents:     5000,
		AvailableStock: 10,
		ReservedStock:  0,
	})

	crt := cart.NewCart(principal.ID())
	_, err = crt.AddLine(variantID, 2, 5000, cart.EmptyCustomization(), 10)
	require.NoError(t, err)
	store.putCart(crt)

	addressID := uuid.New()
	store.putAddress(principal.ID(), addressID, order.Address{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		StreetAddress1: "12 Analytical Way",
		City:           "London",
		State:          "LDN",
		PostalCode:     "EC1A 1BB",
		Country:        "GB",
	})

	cfg := config.CheckoutConfig{
		ReservationTTL:  15 * time.Minute,
		TaxRateBps:      800,
		FlatShippingCts: 999,
		Currency:        "USD",
	}
	ledger := commands.NewInventoryLedger(store, clk, cfg.ReservationTTL)

	return &checkoutFixture{
		store:     store,
		clk:       clk,
		gateway:   gateway,
		notifier:  notifier,
		checkout:  commands.NewCheckoutCommands(store, ledger, gateway, notifier, clk, cfg),
		principal: principal,
		cartID:    crt.ID(),
		variantID: variantID,
		addressID: addressID,
	}
}

func (f *checkoutFixture) seedTenPercentDiscount(t *testing.T, maxUses *int32, useCount int32) *discountRec {
	t.Helper()
	d := &discountRec{
		id:       uuid.New(),
		code:     "SAVE10",
		kind:     discount.KindPercentage,
		value:    10,
		maxUses:  maxUses,
		useCount: useCount,
		isActive: true,
	}
	f.store.putDiscount(d)
	return d
}

func (f *checkoutFixture) input() commands.CheckoutInput {
	return commands.CheckoutInput{
		ShippingAddressID: f.addressID,
		ShippingMethod:    "standard",
		PaymentMethod:     "card",
	}
}

func (f *checkoutFixture) assertStockRestored(t *testing.T) {
	t.Helper()
	assert.Equal(t, int32(10), f.store.variants[f.variantID].AvailableStock)
	assert.Equal(t, int32(0), f.store.variants[f.variantID].ReservedStock)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path with discount", func(t *testing.T) {
		f := newCheckoutFixture(t)
		code := f.seedTenPercentDiscount(t, nil, 0)
		in := f.input()
		discountCode := "SAVE10"
		in.DiscountCode = &discountCode

		result, err := f.checkout.Checkout(ctx, f.principal, in)

		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, result.Status)
		assert.Equal(t, order.Totals{
			SubtotalCents: 10000,
			DiscountCents: 1000,
			TaxCents:      800,
			ShippingCents: 999,
			TotalCents:    10799,
		}, result.Totals)

		stored, ok := f.store.orders[result.OrderID]
		require.True(t, ok)
		assert.Equal(t, order.StatusConfirmed, stored.Status())
		assert.Equal(t, f.principal.ID(), stored.PrincipalID())
		require.NotNil(t, stored.DiscountCodeID())
		assert.Equal(t, code.id, *stored.DiscountCodeID())
		assert.Equal(t, "pay_test", stored.PaymentRef())

		assert.NotContains(t, f.store.carts, f.cartID, "cart is consumed by the order")
		assert.Equal(t, int32(8), f.store.variants[f.variantID].AvailableStock)
		assert.Equal(t, int32(0), f.store.variants[f.variantID].ReservedStock)
		assert.Equal(t, int32(1), code.useCount)

		require.Len(t, f.gateway.requests, 1)
		assert.Equal(t, int64(10799), f.gateway.requests[0].AmountCents)
		assert.Equal(t, "USD", f.gateway.requests[0].Currency)

		require.Len(t, f.notifier.events, 1)
		assert.Equal(t, "order.placed", f.notifier.events[0].event)
		assert.Equal(t, result.OrderID, f.notifier.events[0].orderID)
	})

	t.Run("no discount", func(t *testing.T) {
		f := newCheckoutFixture(t)

		result, err := f.checkout.Checkout(ctx, f.principal, f.input())

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Totals.DiscountCents)
		assert.Equal(t, int64(11799), result.Totals.TotalCents)
		stored := f.store.orders[result.OrderID]
		require.NotNil(t, stored)
		assert.Nil(t, stored.DiscountCodeID())
	})

	t.Run("missing cart", func(t *testing.T) {
		f := newCheckoutFixture(t)
		delete(f.store.carts, f.cartID)

		_, err := f.checkout.Checkout(ctx, f.principal, f.input())

		assert.ErrorIs(t, err, commands.ErrEmptyCart)
	})

	t.Run("unknown shipping address", func(t *testing.T) {
		f := newCheckoutFixture(t)
		in := f.input()
		in.ShippingAddressID = uuid.New()

		_, err := f.checkout.Checkout(ctx, f.principal, in)

		assert.ErrorIs(t, err, commands.ErrAddressNotFound)
		f.assertStockRestored(t)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newCheckoutFixture(t)
		v := f.store.variants[f.variantID]
		v.AvailableStock = 1
		f.store.putVariant(v)

		_, err := f.checkout.Checkout(ctx, f.principal, f.input())

		require.ErrorIs(t, err, commands.ErrInsufficientStock)
		assert.Empty(t, f.store.reservations)
		assert.Empty(t, f.gateway.requests, "payment is never attempted")
	})

	t.Run("unknown discount releases the reservation", func(t *testing.T) {
		f := newCheckoutFixture(t)
		in := f.input()
		bogus := "NOPE"
		in.DiscountCode = &bogus

		_, err := f.checkout.Checkout(ctx, f.principal, in)

		assert.ErrorIs(t, err, commands.ErrDiscountNotFound)
		f.assertStockRestored(t)
		assert.Empty(t, f.gateway.requests)
	})

	t.Run("exhausted discount releases the reservation", func(t *testing.T) {
		f := newCheckoutFixture(t)
		maxUses := int32(1)
		f.seedTenPercentDiscount(t, &maxUses, 1)
		in := f.input()
		code := "SAVE10"
		in.DiscountCode = &code

		_, err := f.checkout.Checkout(ctx, f.principal, in)

		assert.ErrorIs(t, err, discount.ErrUsageExhausted)
		f.assertStockRestored(t)
	})

	t.Run("discount deactivated before commit fails the checkout", func(t *testing.T) {
		f := newCheckoutFixture(t)
		d := f.seedTenPercentDiscount(t, nil, 0)
		in := f.input()
		code := "SAVE10"
		in.DiscountCode = &code
		// The gateway call sits between the reserve and commit
		// transactions; a concurrent deactivation lands here.
		f.gateway.authorizeFn = func(commands.PaymentRequest) (*commands.PaymentResult, error) {
			d.isActive = false
			return &commands.PaymentResult{ProviderRef: "pay_test", Authorized: true, Settled: true}, nil
		}

		_, err := f.checkout.Checkout(ctx, f.principal, in)

		assert.ErrorIs(t, err, discount.ErrInactive)
		f.assertStockRestored(t)
		assert.Empty(t, f.store.orders)
		assert.Equal(t, int32(0), d.useCount)
	})

	t.Run("payment decline releases the reservation", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.gateway.authorizeFn = func(commands.PaymentRequest) (*commands.PaymentResult, error) {
			return &commands.PaymentResult{Authorized: false, DeclineReason: "card_declined"}, nil
		}

		_, err := f.checkout.Checkout(ctx, f.principal, f.input())

		assert.ErrorIs(t, err, commands.ErrPaymentDeclined)
		f.assertStockRestored(t)
		assert.Empty(t, f.store.orders)
		assert.Contains(t, f.store.carts, f.cartID, "cart survives a failed checkout")
	})

	t.Run("gateway failure declines and releases the reservation", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.gateway.authorizeFn = func(commands.PaymentRequest) (*commands.PaymentResult, error) {
			return nil, errs.New("connection refused")
		}

		_, err := f.checkout.Checkout(ctx, f.principal, f.input())

		assert.ErrorIs(t, err, commands.ErrPaymentDeclined)
		f.assertStockRestored(t)
	})

	t.Run("commit failure rolls back and releases", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.store.errOrderCreate = errs.New("insert failed")

		_, err := f.checkout.Checkout(ctx, f.principal, f.input())

		assert.ErrorIs(t, err, commands.ErrCommitFailed)
		f.assertStockRestored(t)
		assert.Empty(t, f.store.orders)
		assert.Contains(t, f.store.carts, f.cartID)
		assert.Len(t, f.notifier.events, 0)
	})

	t.Run("authorization without settlement leaves the order pending", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.gateway.authorizeFn = func(commands.PaymentRequest) (*commands.PaymentResult, error) {
			return &commands.PaymentResult{ProviderRef: "pay_auth", Authorized: true, Settled: false}, nil
		}

		result, err := f.checkout.Checkout(ctx, f.principal, f.input())

		require.NoError(t, err)
		assert.Equal(t, order.StatusPendingPayment, result.Status)
		stored, ok := f.store.orders[result.OrderID]
		require.True(t, ok)
		assert.Equal(t, order.StatusPendingPayment, stored.Status())
		assert.Nil(t, stored.ConfirmedAt())
		assert.NotContains(t, f.store.carts, f.cartID, "stock stays consumed while payment settles")
	})

	t.Run("expired reservation fails the commit", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.gateway.authorizeFn = func(commands.PaymentRequest) (*commands.PaymentResult, error) {
			// reservation expires while waiting on the provider
			f.clk.Add(16 * time.Minute)
			return &commands.PaymentResult{ProviderRef: "pay_test", Authorized: true}, nil
		}

		_, err := f.checkout.Checkout(ctx, f.principal, f.input())

		assert.ErrorIs(t, err, commands.ErrReservationExpired)
		f.assertStockRestored(t)
		assert.Empty(t, f.store.orders)
	})
}
