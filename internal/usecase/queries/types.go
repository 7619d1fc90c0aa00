package queries

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Number int32
	Size   int32
}

func NewPage(number, size int32) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int32 {
	return (p.Number - 1) * p.Size
}

type CartLineView struct {
	LineID         uuid.UUID
	VariantID      uuid.UUID
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	TotalCents     int64
	Customization  json.RawMessage
}

type CartView struct {
	ID            uuid.UUID
	PrincipalID   uuid.UUID
	Lines         []CartLineView
	SubtotalCents int64
	UpdatedAt     time.Time
}

type OrderItemView struct {
	VariantID      uuid.UUID
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	TotalCents     int64
	Customization  json.RawMessage
}

type AddressView struct {
	FirstName      string
	LastName       string
	StreetAddress1 string
	StreetAddress2 string
	City           string
	State          string
	PostalCode     string
	Country        string
	Phone          string
}

type OrderView struct {
	ID             uuid.UUID
	Number         string
	PrincipalID    uuid.UUID
	Status         string
	Items          []OrderItemView
	SubtotalCents  int64
	DiscountCents  int64
	TaxCents       int64
	ShippingCents  int64
	TotalCents     int64
	ShippingAddr   AddressView
	BillingAddr    AddressView
	ShippingMethod string
	PaymentMethod  string
	TrackingNumber *string
	CustomerNotes  string
	ConfirmedAt    *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
}

type OrderSummaryView struct {
	ID         uuid.UUID
	Number     string
	Status     string
	TotalCents int64
	ItemCount  int32
	CreatedAt  time.Time
}

type OrderListView struct {
	Orders []OrderSummaryView
	Total  int64
	Page   Page
}

type PrincipalView struct {
	ID        uuid.UUID
	Email     string
	Role      string
	IsGuest   bool
	IsActive  bool
	LastLogin *time.Time
	CreatedAt time.Time
}
