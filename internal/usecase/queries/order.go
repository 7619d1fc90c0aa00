package queries

import (
	"context"

	"github.com/google/uuid"

	"storefront-core/internal/domain/authz"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/errs"
)

type OrderQueries interface {
	Get(ctx context.Context, principal *user.Principal, orderID uuid.UUID) (*OrderView, error)
	List(ctx context.Context, principalID uuid.UUID, page Page) (*OrderListView, error)
}

type orderQueriesImpl struct {
	store ReadStore
}

func NewOrderQueries(store ReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

// Get returns one order. Owners always see their own; reading someone else's
// order takes the order:read capability.
func (q *orderQueriesImpl) Get(ctx context.Context, principal *user.Principal, orderID uuid.UUID) (*OrderView, error) {
	view, err := q.store.OrderByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrNotFound
		}
		return nil, errs.Wrap(err, "loading order view")
	}
	if view.PrincipalID != principal.ID() && !authz.Authorize(principal.Role(), authz.CapOrderRead) {
		// Hide existence from principals who cannot read it.
		return nil, ErrNotFound
	}
	return view, nil
}

// List pages through the principal's own orders, newest first.
func (q *orderQueriesImpl) List(ctx context.Context, principalID uuid.UUID, page Page) (*OrderListView, error) {
	view, err := q.store.OrdersByPrincipal(ctx, principalID, page)
	if err != nil {
		return nil, errs.Wrap(err, "listing orders")
	}
	return view, nil
}
