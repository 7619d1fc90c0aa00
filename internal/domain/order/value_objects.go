package order

import (
	"encoding/json"
	"strings"

	"storefront-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrIncompleteAddress = errs.New("address is missing required fields")

// Address is copied into the order at checkout so later edits to the
// principal's address book never alter historical orders.
type Address struct {
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

func (a Address) Validate() error {
	for _, field := range []string{a.FirstName, a.StreetAddress1, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return ErrIncompleteAddress
		}
	}
	return nil
}

// Item is a priced snapshot of a cart line at checkout time.
type Item struct {
	id             uuid.UUID
	variantID      uuid.UUID
	productName    string
	sku            string
	quantity       int32
	unitPriceCents int64
	customization  json.RawMessage
}

func NewItem(variantID uuid.UUID, productName, sku string, quantity int32, unitPriceCents int64, customization json.RawMessage) *Item {
	return &Item{
		id:             uuid.New(),
		variantID:      variantID,
		productName:    productName,
		sku:            sku,
		quantity:       quantity,
		unitPriceCents: unitPriceCents,
		customization:  customization,
	}
}

func ReconstructItem(id, variantID uuid.UUID, productName, sku string, quantity int32, unitPriceCents int64, customization json.RawMessage) *Item {
	return &Item{
		id:             id,
		variantID:      variantID,
		productName:    productName,
		sku:            sku,
		quantity:       quantity,
		unitPriceCents: unitPriceCents,
		customization:  customization,
	}
}

func (i *Item) ID() uuid.UUID                 { return i.id }
func (i *Item) VariantID() uuid.UUID          { return i.variantID }
func (i *Item) ProductName() string           { return i.productName }
func (i *Item) SKU() string                   { return i.sku }
func (i *Item) Quantity() int32               { return i.quantity }
func (i *Item) UnitPriceCents() int64         { return i.unitPriceCents }
func (i *Item) Customization() json.RawMessage { return i.customization }
func (i *Item) TotalPriceCents() int64        { return i.unitPriceCents * int64(i.quantity) }

type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	ShippingCents int64
	TotalCents    int64
}

// ComputeTotals applies the flat-rate rules: tax as basis points of the
// subtotal, shipping as a fixed amount. The grand total is floored at zero.
func ComputeTotals(subtotalCents, discountCents int64, taxRateBps int, shippingCents int64) Totals {
	tax := (subtotalCents*int64(taxRateBps) + 5000) / 10000
	total := subtotalCents - discountCents + tax + shippingCents
	if total < 0 {
		total = 0
	}
	return Totals{
		SubtotalCents: subtotalCents,
		DiscountCents: discountCents,
		TaxCents:      tax,
		ShippingCents: shippingCents,
		TotalCents:    total,
	}
}
