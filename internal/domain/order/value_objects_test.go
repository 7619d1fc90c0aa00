//go:build unit

package order_test

import (
	"testing"

	"storefront-core/internal/domain/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name          string
		subtotalCents int64
		discountCents int64
		taxRateBps    int
		shippingCents int64
		want          order.Totals
	}{
		{
			name:          "ten percent discount with standard tax and shipping",
			subtotalCents: 10000,
			discountCents: 1000,
			taxRateBps:    800,
			shippingCents: 999,
			want: order.Totals{
				SubtotalCents: 10000,
				DiscountCents: 1000,
				TaxCents:      800,
				ShippingCents: 999,
				TotalCents:    10799,
			},
		},
		{
			name:          "no discount",
			subtotalCents: 2500,
			taxRateBps:    800,
			shippingCents: 999,
			want: order.Totals{
				SubtotalCents: 2500,
				TaxCents:      200,
				ShippingCents: 999,
				TotalCents:    3699,
			},
		},
		{
			name:          "tax rounds half up",
			subtotalCents: 131,
			taxRateBps:    800,
			want: order.Totals{
				SubtotalCents: 131,
				TaxCents:      10, // 10.48 rounds down
				TotalCents:    141,
			},
		},
		{
			name:          "total floors at zero",
			subtotalCents: 500,
			discountCents: 2000,
			want: order.Totals{
				SubtotalCents: 500,
				DiscountCents: 2000,
				TaxCents:      0,
				TotalCents:    0,
			},
		},
		{
			name: "empty inputs",
			want: order.Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := order.ComputeTotals(tt.subtotalCents, tt.discountCents, tt.taxRateBps, tt.shippingCents)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddressValidate(t *testing.T) {
	valid := order.Address{
		FirstName:      "Ada",
		StreetAddress1: "12 Analytical Way",
		City:           "London",
		PostalCode:     "EC1A 1BB",
		Country:        "GB",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*order.Address)
	}{
		{"missing first name", func(a *order.Address) { a.FirstName = "" }},
		{"missing street", func(a *order.Address) { a.StreetAddress1 = "" }},
		{"missing city", func(a *order.Address) { a.City = "" }},
		{"missing postal code", func(a *order.Address) { a.PostalCode = "" }},
		{"missing country", func(a *order.Address) { a.Country = "" }},
		{"whitespace only", func(a *order.Address) { a.City = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := valid
			tt.mutate(&addr)
			assert.ErrorIs(t, addr.Validate(), order.ErrIncompleteAddress)
		})
	}
}

func TestItemTotalPriceCents(t *testing.T) {
	item := order.NewItem(uuid.New(), "Engraved Mug", "MUG-001", 3, 1500, nil)
	assert.Equal(t, int64(4500), item.TotalPriceCents())
}
