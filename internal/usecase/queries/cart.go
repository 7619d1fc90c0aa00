package queries

import (
	"context"

	"github.com/google/uuid"

	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/errs"
)

type CartQueries interface {
	Get(ctx context.Context, principalID uuid.UUID) (*CartView, error)
}

type cartQueriesImpl struct {
	store ReadStore
}

func NewCartQueries(store ReadStore) CartQueries {
	return &cartQueriesImpl{store: store}
}

// Get returns the principal's cart; a principal without one sees an empty
// cart rather than an error.
func (q *cartQueriesImpl) Get(ctx context.Context, principalID uuid.UUID) (*CartView, error) {
	view, err := q.store.CartByPrincipal(ctx, principalID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &CartView{PrincipalID: principalID, Lines: []CartLineView{}}, nil
		}
		return nil, errs.Wrap(err, "loading cart view")
	}
	return view, nil
}
