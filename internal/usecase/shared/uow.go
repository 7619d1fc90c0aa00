package shared

import (
	"context"
	"time"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/discount"
	"storefront-core/internal/domain/inventory"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full transaction for write operations, retried on
	// serialization failure and deadlock up to a fixed bound.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: validation reads outside any transaction.
	CommandReads() CommandReads
}

type Tx interface {
	Carts() CartRepository
	Inventory() InventoryRepository
	Orders() OrderRepository
	Discounts() DiscountRepository
	Principals() PrincipalRepository
	Reads() CommandReads
}

type CartRepository interface {
	// FindByPrincipalForUpdate locks the cart row for the duration of the
	// transaction; returns KindNotFound when the principal has no cart.
	FindByPrincipalForUpdate(ctx context.Context, principalID uuid.UUID) (*cart.Cart, error)
	Create(ctx context.Context, c *cart.Cart) error
	// SaveLines replaces the stored line set with the aggregate's and bumps
	// the cart's updated_at.
	SaveLines(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, cartID uuid.UUID) error
	// DeleteUntouchedSince discards carts whose updated_at is older than the
	// cutoff; used only by the reconciliation sweep.
	DeleteUntouchedSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type InventoryRepository interface {
	// VariantsForUpdate locks the variant rows in ascending id order - the
	// single deadlock-avoidance rule for multi-variant reservations.
	VariantsForUpdate(ctx context.Context, ids []uuid.UUID) ([]VariantStock, error)
	MoveAvailableToReserved(ctx context.Context, variantID uuid.UUID, qty int32) error
	MoveReservedToAvailable(ctx context.Context, variantID uuid.UUID, qty int32) error
	DeductReserved(ctx context.Context, variantID uuid.UUID, qty int32) error
	CreateReservation(ctx context.Context, r *inventory.Reservation) error
	ReservationForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Reservation, error)
	SetReservationStatus(ctx context.Context, id uuid.UUID, status inventory.ReservationStatus) error
	// ExpiredHeld returns ids of held reservations past their TTL.
	ExpiredHeld(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	ForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error)
	SaveStatus(ctx context.Context, o *order.Order) error
}

type DiscountRepository interface {
	ByCodeForUpdate(ctx context.Context, code string) (*discount.Code, error)
	// IncrementUsage bumps use_count, guarded against max_uses; returns
	// KindConflict when the limit was reached by a concurrent commit.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

type PrincipalRepository interface {
	Create(ctx context.Context, p *user.Principal) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// RetireGuest deactivates a merged guest principal so its token can no
	// longer act.
	RetireGuest(ctx context.Context, guestID uuid.UUID) error
	DeleteStaleGuests(ctx context.Context, cutoff time.Time) (int64, error)
}

type CommandReads interface {
	PrincipalByID(ctx context.Context, id uuid.UUID) (*user.Principal, error)
	PrincipalByEmail(ctx context.Context, email string) (*user.Principal, error)
	PrincipalBySessionID(ctx context.Context, sessionID string) (*user.Principal, error)
	VariantByID(ctx context.Context, id uuid.UUID) (*VariantSnapshot, error)
	VariantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]VariantSnapshot, error)
	DiscountByCode(ctx context.Context, code string) (*discount.Code, error)
	CartByPrincipal(ctx context.Context, principalID uuid.UUID) (*cart.Cart, error)
	AddressByID(ctx context.Context, principalID, addressID uuid.UUID) (*order.Address, error)
}
