package queries

import (
	"context"

	"github.com/google/uuid"

	"storefront-core/internal/pkg/errs"
)

var (
	ErrNotFound      = errs.New("resource not found")
	ErrAuthorization = errs.New("not allowed to read this resource")
)

// ReadStore is the query side's denormalized view of storage. Implementations
// read committed data only and never take row locks.
type ReadStore interface {
	CartByPrincipal(ctx context.Context, principalID uuid.UUID) (*CartView, error)
	OrderByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	OrdersByPrincipal(ctx context.Context, principalID uuid.UUID, page Page) (*OrderListView, error)
	PrincipalByID(ctx context.Context, id uuid.UUID) (*PrincipalView, error)
}
