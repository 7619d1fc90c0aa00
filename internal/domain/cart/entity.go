package cart

import (
	"time"

	"storefront-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrQuantityNotPositive = errs.New("quantity must be positive")
	ErrLineNotFound        = errs.New("cart line not found")
	ErrVariantUnavailable  = errs.New("variant has no available stock")
	ErrEmptyCart           = errs.New("cart has no lines")
)

type Line struct {
	id             uuid.UUID
	variantID      uuid.UUID
	quantity       int32
	unitPriceCents int64
	customization  Customization
}

func NewLine(variantID uuid.UUID, quantity int32, unitPriceCents int64, customization Customization) *Line {
	return &Line{
		id:             uuid.New(),
		variantID:      variantID,
		quantity:       quantity,
		unitPriceCents: unitPriceCents,
		customization:  customization,
	}
}

func ReconstructLine(id, variantID uuid.UUID, quantity int32, unitPriceCents int64, customization Customization) *Line {
	return &Line{
		id:             id,
		variantID:      variantID,
		quantity:       quantity,
		unitPriceCents: unitPriceCents,
		customization:  customization,
	}
}

func (l *Line) ID() uuid.UUID                { return l.id }
func (l *Line) VariantID() uuid.UUID         { return l.variantID }
func (l *Line) Quantity() int32              { return l.quantity }
func (l *Line) UnitPriceCents() int64        { return l.unitPriceCents }
func (l *Line) Customization() Customization { return l.customization }
func (l *Line) TotalPriceCents() int64       { return l.unitPriceCents * int64(l.quantity) }

func (l *Line) Key() LineKey {
	return LineKey{VariantID: l.variantID, Signature: l.customization.Signature()}
}

// Cart is owned by exactly one principal and stays mutable until it is
// converted to an order or expired by the reconciliation sweep.
type Cart struct {
	id          uuid.UUID
	principalID uuid.UUID
	lines       []*Line
	updatedAt   time.Time
}

func NewCart(principalID uuid.UUID) *Cart {
	return &Cart{
		id:          uuid.New(),
		principalID: principalID,
	}
}

func ReconstructCart(id, principalID uuid.UUID, lines []*Line, updatedAt time.Time) *Cart {
	return &Cart{
		id:          id,
		principalID: principalID,
		lines:       lines,
		updatedAt:   updatedAt,
	}
}

func (c *Cart) ID() uuid.UUID          { return c.id }
func (c *Cart) PrincipalID() uuid.UUID { return c.principalID }
func (c *Cart) Lines() []*Line         { return c.lines }
func (c *Cart) UpdatedAt() time.Time   { return c.updatedAt }
func (c *Cart) IsEmpty() bool          { return len(c.lines) == 0 }

func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.TotalPriceCents()
	}
	return total
}

func (c *Cart) FindLine(lineID uuid.UUID) *Line {
	for _, l := range c.lines {
		if l.id == lineID {
			return l
		}
	}
	return nil
}

func (c *Cart) findByKey(key LineKey) *Line {
	for _, l := range c.lines {
		if l.Key() == key {
			return l
		}
	}
	return nil
}

// AddLine merges into an existing line when the (variant, customization) key
// is already present. availableStock is only a soft clamp against the stock
// visible right now; the hard check happens at checkout reservation.
func (c *Cart) AddLine(variantID uuid.UUID, quantity int32, unitPriceCents int64, customization Customization, availableStock int32) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}
	if availableStock <= 0 {
		return nil, ErrVariantUnavailable
	}

	key := LineKey{VariantID: variantID, Signature: customization.Signature()}
	if existing := c.findByKey(key); existing != nil {
		existing.quantity = clamp(existing.quantity+quantity, availableStock)
		existing.unitPriceCents = unitPriceCents
		return existing, nil
	}

	line := NewLine(variantID, clamp(quantity, availableStock), unitPriceCents, customization)
	c.lines = append(c.lines, line)
	return line, nil
}

// UpdateLine sets the quantity of an existing line; zero removes it.
func (c *Cart) UpdateLine(lineID uuid.UUID, quantity int32, availableStock int32) (*Line, error) {
	if quantity < 0 {
		return nil, ErrQuantityNotPositive
	}
	line := c.FindLine(lineID)
	if line == nil {
		return nil, ErrLineNotFound
	}
	if quantity == 0 {
		c.removeLine(lineID)
		return nil, nil
	}
	if availableStock <= 0 {
		return nil, ErrVariantUnavailable
	}
	line.quantity = clamp(quantity, availableStock)
	return line, nil
}

func (c *Cart) RemoveLine(lineID uuid.UUID) error {
	if c.FindLine(lineID) == nil {
		return ErrLineNotFound
	}
	c.removeLine(lineID)
	return nil
}

func (c *Cart) removeLine(lineID uuid.UUID) {
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.id != lineID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

func (c *Cart) Clear() {
	c.lines = nil
}

// MergeFrom union-merges the guest cart's lines into this cart, summing
// quantities on key collisions. The guest cart is unchanged; retiring it is
// the caller's transaction to run.
func (c *Cart) MergeFrom(guest *Cart) {
	for _, gl := range guest.lines {
		if existing := c.findByKey(gl.Key()); existing != nil {
			existing.quantity += gl.quantity
			continue
		}
		c.lines = append(c.lines, NewLine(gl.variantID, gl.quantity, gl.unitPriceCents, gl.customization))
	}
}

func clamp(quantity, available int32) int32 {
	if quantity > available {
		return available
	}
	return quantity
}
