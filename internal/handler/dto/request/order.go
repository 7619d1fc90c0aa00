package request

import (
	"strings"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	ShippingAddressID uuid.UUID  `json:"shipping_address_id" binding:"required"`
	BillingAddressID  *uuid.UUID `json:"billing_address_id,omitempty"`
	ShippingMethod    string     `json:"shipping_method" binding:"required"`
	PaymentMethod     string     `json:"payment_method" binding:"required"`
	DiscountCode      *string    `json:"discount_code,omitempty"`
	CustomerNotes     string     `json:"customer_notes,omitempty"`
}

func (r CheckoutRequest) NormalizedDiscountCode() *string {
	if r.DiscountCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.DiscountCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
}

type ValidateDiscountRequest struct {
	Code string `json:"code" binding:"required"`
	// CartTotal lets callers price a hypothetical total; when absent the
	// stored cart subtotal is used.
	CartTotal *int64 `json:"cart_total,omitempty"`
}
