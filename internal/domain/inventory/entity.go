package inventory

import (
	"time"

	"storefront-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNothingToReserve = errs.New("reservation has no lines")
	ErrNotHeld          = errs.New("reservation is not held")
)

type ReservationStatus string

const (
	// Held is the only live state; consuming or releasing is terminal.
	StatusHeld     ReservationStatus = "held"
	StatusConsumed ReservationStatus = "consumed"
	StatusReleased ReservationStatus = "released"
)

func (s ReservationStatus) IsTerminal() bool {
	return s == StatusConsumed || s == StatusReleased
}

type ReservationLine struct {
	VariantID uuid.UUID
	Quantity  int32
}

// Reservation ties a set of (variant, quantity) holds to a single checkout
// attempt. It exists so the external payment call can run without any row
// lock held: the stock is already moved aside.
type Reservation struct {
	id        uuid.UUID
	cartID    uuid.UUID
	lines     []ReservationLine
	status    ReservationStatus
	expiresAt time.Time
	createdAt time.Time
}

func NewReservation(cartID uuid.UUID, lines []ReservationLine, ttl time.Duration, now time.Time) (*Reservation, error) {
	if len(lines) == 0 {
		return nil, ErrNothingToReserve
	}
	return &Reservation{
		id:        uuid.New(),
		cartID:    cartID,
		lines:     lines,
		status:    StatusHeld,
		expiresAt: now.Add(ttl),
		createdAt: now,
	}, nil
}

func ReconstructReservation(id, cartID uuid.UUID, lines []ReservationLine, status ReservationStatus, expiresAt, createdAt time.Time) *Reservation {
	return &Reservation{
		id:        id,
		cartID:    cartID,
		lines:     lines,
		status:    status,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) CartID() uuid.UUID        { return r.cartID }
func (r *Reservation) Lines() []ReservationLine { return r.lines }
func (r *Reservation) Status() ReservationStatus { return r.status }
func (r *Reservation) ExpiresAt() time.Time     { return r.expiresAt }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }

func (r *Reservation) IsHeld() bool {
	return r.status == StatusHeld
}

func (r *Reservation) HasExpired(now time.Time) bool {
	return r.status == StatusHeld && now.After(r.expiresAt)
}

// StockShortage identifies the first variant that failed the availability
// check during an all-or-nothing reserve.
type StockShortage struct {
	VariantID uuid.UUID
	Requested int32
	Available int32
}
