package queries

import (
	"context"

	"github.com/google/uuid"

	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/errs"
)

type PrincipalQueries interface {
	Get(ctx context.Context, id uuid.UUID) (*PrincipalView, error)
}

type principalQueriesImpl struct {
	store ReadStore
}

func NewPrincipalQueries(store ReadStore) PrincipalQueries {
	return &principalQueriesImpl{store: store}
}

func (q *principalQueriesImpl) Get(ctx context.Context, id uuid.UUID) (*PrincipalView, error) {
	view, err := q.store.PrincipalByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrNotFound
		}
		return nil, errs.Wrap(err, "loading principal view")
	}
	return view, nil
}
