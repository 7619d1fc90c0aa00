package response

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/usecase/queries"
)

type CartLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	VariantID      uuid.UUID       `json:"variant_id"`
	ProductName    string          `json:"product_name"`
	SKU            string          `json:"sku"`
	Quantity       int32           `json:"quantity"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	TotalCents     int64           `json:"total_cents"`
	Customization  json.RawMessage `json:"customization,omitempty"`
}

type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	Items         []CartLineResponse `json:"items"`
	SubtotalCents int64              `json:"subtotal_cents"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func FromCartView(v *queries.CartView) CartResponse {
	items := make([]CartLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, CartLineResponse{
			ID:             l.LineID,
			VariantID:      l.VariantID,
			ProductName:    l.ProductName,
			SKU:            l.SKU,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.TotalCents,
			Customization:  l.Customization,
		})
	}
	return CartResponse{
		ID:            v.ID,
		Items:         items,
		SubtotalCents: v.SubtotalCents,
		UpdatedAt:     v.UpdatedAt,
	}
}
