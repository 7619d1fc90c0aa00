package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"storefront-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInvalidCustomization = errs.New("invalid customization payload")

// Customization is an opaque blob chosen by the shopper (engraving text,
// colors, ...). The engine never interprets it; it only participates in line
// identity through a canonical signature.
type Customization struct {
	raw       json.RawMessage
	signature string
}

func EmptyCustomization() Customization {
	return Customization{}
}

// NewCustomization canonicalizes the payload before hashing so that
// semantically equal blobs ({"a":1,"b":2} vs {"b":2,"a":1}) merge into the
// same cart line.
func NewCustomization(raw json.RawMessage) (Customization, error) {
	if len(raw) == 0 {
		return Customization{}, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Customization{}, ErrInvalidCustomization
	}
	if decoded == nil {
		return Customization{}, nil
	}

	// encoding/json sorts map keys, which is all the canonicalization we need
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return Customization{}, ErrInvalidCustomization
	}

	sum := sha256.Sum256(canonical)
	return Customization{
		raw:       canonical,
		signature: hex.EncodeToString(sum[:]),
	}, nil
}

func ReconstructCustomization(raw json.RawMessage, signature string) Customization {
	return Customization{raw: raw, signature: signature}
}

func (c Customization) Raw() json.RawMessage { return c.raw }
func (c Customization) Signature() string    { return c.signature }
func (c Customization) IsEmpty() bool        { return len(c.raw) == 0 }

// LineKey is the merge identity of a cart line: variant plus customization
// signature. Two lines with the same key must never coexist in one cart.
type LineKey struct {
	VariantID uuid.UUID
	Signature string
}
