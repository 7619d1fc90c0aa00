package response

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

type CheckoutResponse struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	SubtotalCents int64     `json:"subtotal_cents"`
	DiscountCents int64     `json:"discount_cents"`
	TaxCents      int64     `json:"tax_cents"`
	ShippingCents int64     `json:"shipping_cents"`
	TotalCents    int64     `json:"total_cents"`
}

type OrderItemResponse struct {
	VariantID      uuid.UUID       `json:"variant_id"`
	ProductName    string          `json:"product_name"`
	SKU            string          `json:"sku"`
	Quantity       int32           `json:"quantity"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	TotalCents     int64           `json:"total_cents"`
	Customization  json.RawMessage `json:"customization,omitempty"`
}

type AddressResponse struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	StreetAddress1 string `json:"street_address_1"`
	StreetAddress2 string `json:"street_address_2,omitempty"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
	Phone          string `json:"phone,omitempty"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
	SubtotalCents   int64               `json:"subtotal_cents"`
	DiscountCents   int64               `json:"discount_cents"`
	TaxCents        int64               `json:"tax_cents"`
	ShippingCents   int64               `json:"shipping_cents"`
	TotalCents      int64               `json:"total_cents"`
	ShippingAddress AddressResponse     `json:"shipping_address"`
	BillingAddress  AddressResponse     `json:"billing_address"`
	ShippingMethod  string              `json:"shipping_method"`
	PaymentMethod   string              `json:"payment_method"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	CustomerNotes   string              `json:"customer_notes,omitempty"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

type OrderSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"total_cents"`
	ItemCount   int32     `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type DiscountPreviewResponse struct {
	Valid         bool   `json:"valid"`
	Code          string `json:"code"`
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
}

func FromCheckoutResult(r *commands.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		OrderID:       r.OrderID,
		OrderNumber:   r.OrderNumber,
		Status:        r.Status.String(),
		SubtotalCents: r.Totals.SubtotalCents,
		DiscountCents: r.Totals.DiscountCents,
		TaxCents:      r.Totals.TaxCents,
		ShippingCents: r.Totals.ShippingCents,
		TotalCents:    r.Totals.TotalCents,
	}
}

func FromOrderView(v *queries.OrderView) OrderResponse {
	items := make([]OrderItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, OrderItemResponse{
			VariantID:      it.VariantID,
			ProductName:    it.ProductName,
			SKU:            it.SKU,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			TotalCents:     it.TotalCents,
			Customization:  it.Customization,
		})
	}
	return OrderResponse{
		ID:              v.ID,
		OrderNumber:     v.Number,
		Status:          v.Status,
		Items:           items,
		SubtotalCents:   v.SubtotalCents,
		DiscountCents:   v.DiscountCents,
		TaxCents:        v.TaxCents,
		ShippingCents:   v.ShippingCents,
		TotalCents:      v.TotalCents,
		ShippingAddress: fromAddressView(v.ShippingAddr),
		BillingAddress:  fromAddressView(v.BillingAddr),
		ShippingMethod:  v.ShippingMethod,
		PaymentMethod:   v.PaymentMethod,
		TrackingNumber:  v.TrackingNumber,
		CustomerNotes:   v.CustomerNotes,
		ConfirmedAt:     v.ConfirmedAt,
		ShippedAt:       v.ShippedAt,
		DeliveredAt:     v.DeliveredAt,
		CancelledAt:     v.CancelledAt,
		CreatedAt:       v.CreatedAt,
	}
}

func FromOrderSummaries(vs []queries.OrderSummaryView) []OrderSummaryResponse {
	out := make([]OrderSummaryResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, OrderSummaryResponse{
			ID:          v.ID,
			OrderNumber: v.Number,
			Status:      v.Status,
			TotalCents:  v.TotalCents,
			ItemCount:   v.ItemCount,
			CreatedAt:   v.CreatedAt,
		})
	}
	return out
}

func FromDiscountPreview(p *commands.DiscountPreview) DiscountPreviewResponse {
	return DiscountPreviewResponse{
		Valid:         true,
		Code:          p.Code,
		SubtotalCents: p.SubtotalCents,
		DiscountCents: p.DiscountCents,
	}
}

func fromAddressView(a queries.AddressView) AddressResponse {
	return AddressResponse{
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		StreetAddress1: a.StreetAddress1,
		StreetAddress2: a.StreetAddress2,
		City:           a.City,
		State:          a.State,
		PostalCode:     a.PostalCode,
		Country:        a.Country,
		Phone:          a.Phone,
	}
}
