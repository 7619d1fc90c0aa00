package request

import (
	"encoding/json"

	"github.com/google/uuid"
)

type AddItemRequest struct {
	VariantID     uuid.UUID       `json:"variant_id" binding:"required"`
	Quantity      int32           `json:"quantity" binding:"required,gt=0"`
	Customization json.RawMessage `json:"customization,omitempty"`
}

type UpdateItemRequest struct {
	Quantity int32 `json:"quantity" binding:"gte=0"`
}
