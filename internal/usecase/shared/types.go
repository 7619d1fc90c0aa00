package shared

import (
	"github.com/google/uuid"
)

// VariantSnapshot is the write side's view of catalog data: identity, current
// price, and the available/reserved split. total_stock stays with the catalog
// collaborator; the ledger only ever moves quantities between the two counts.
type VariantSnapshot struct {
	ID             uuid.UUID
	ProductName    string
	SKU            string
	PriceCents     int64
	AvailableStock int32
	ReservedStock  int32
}

// VariantStock is the locked row state during a reservation.
type VariantStock struct {
	ID             uuid.UUID
	AvailableStock int32
	ReservedStock  int32
}
