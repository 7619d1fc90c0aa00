//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReadStore struct {
	carts      map[uuid.UUID]*queries.CartView
	orders     map[uuid.UUID]*queries.OrderView
	orderLists map[uuid.UUID]*queries.OrderListView
	principals map[uuid.UUID]*queries.PrincipalView
}

func newStubReadStore() *stubReadStore {
	return &stubReadStore{
		carts:      make(map[uuid.UUID]*queries.CartView),
		orders:     make(map[uuid.UUID]*queries.OrderView),
		orderLists: make(map[uuid.UUID]*queries.OrderListView),
		principals: make(map[uuid.UUID]*queries.PrincipalView),
	}
}

func (s *stubReadStore) CartByPrincipal(_ context.Context, principalID uuid.UUID) (*queries.CartView, error) {
	if v, ok := s.carts[principalID]; ok {
		return v, nil
	}
	return nil, infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
}

func (s *stubReadStore) OrderByID(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	if v, ok := s.orders[id]; ok {
		return v, nil
	}
	return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
}

func (s *stubReadStore) OrdersByPrincipal(_ context.Context, principalID uuid.UUID, page queries.Page) (*queries.OrderListView, error) {
	if v, ok := s.orderLists[principalID]; ok {
		v.Page = page
		return v, nil
	}
	return &queries.OrderListView{Orders: []queries.OrderSummaryView{}, Page: page}, nil
}

func (s *stubReadStore) PrincipalByID(_ context.Context, id uuid.UUID) (*queries.PrincipalView, error) {
	if v, ok := s.principals[id]; ok {
		return v, nil
	}
	return nil, infra.WrapRepoErr("principal not found", nil, infra.KindNotFound)
}

func principalWithRole(role user.Role) *user.Principal {
	return user.ReconstructPrincipal(
		uuid.New(), user.Email{}, "hash", role, false, nil, true, nil,
		time.Now(), time.Now(),
	)
}

func TestOrderQueriesGet(t *testing.T) {
	ctx := context.Background()

	seed := func(store *stubReadStore, principalID uuid.UUID) *queries.OrderView {
		view := &queries.OrderView{
			ID:          uuid.New(),
			Number:      "ORD-9F3K2A1B",
			PrincipalID: principalID,
			Status:      "confirmed",
			TotalCents:  10799,
		}
		store.orders[view.ID] = view
		return view
	}

	t.Run("owner reads own order", func(t *testing.T) {
		store := newStubReadStore()
		owner := principalWithRole(user.RoleCustomer)
		view := seed(store, owner.ID())

		got, err := queries.NewOrderQueries(store).Get(ctx, owner, view.ID)

		require.NoError(t, err)
		if diff := cmp.Diff(view, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("OrderView mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("staff with order read sees any order", func(t *testing.T) {
		store := newStubReadStore()
		view := seed(store, uuid.New())
		staff := principalWithRole(user.RoleCustomerService)

		got, err := queries.NewOrderQueries(store).Get(ctx, staff, view.ID)

		require.NoError(t, err)
		assert.Equal(t, view.ID, got.ID)
	})

	t.Run("stranger gets not found, not forbidden", func(t *testing.T) {
		store := newStubReadStore()
		view := seed(store, uuid.New())
		stranger := principalWithRole(user.RoleCustomer)

		_, err := queries.NewOrderQueries(store).Get(ctx, stranger, view.ID)

		assert.ErrorIs(t, err, queries.ErrNotFound)
	})

	t.Run("missing order", func(t *testing.T) {
		store := newStubReadStore()

		_, err := queries.NewOrderQueries(store).Get(ctx, principalWithRole(user.RoleCustomer), uuid.New())

		assert.ErrorIs(t, err, queries.ErrNotFound)
	})
}

func TestCartQueriesGet(t *testing.T) {
	ctx := context.Background()

	t.Run("existing cart", func(t *testing.T) {
		store := newStubReadStore()
		principalID := uuid.New()
		store.carts[principalID] = &queries.CartView{
			ID:            uuid.New(),
			PrincipalID:   principalID,
			SubtotalCents: 3000,
			Lines:         []queries.CartLineView{{Quantity: 2, UnitPriceCents: 1500, TotalCents: 3000}},
		}

		view, err := queries.NewCartQueries(store).Get(ctx, principalID)

		require.NoError(t, err)
		if diff := cmp.Diff(store.carts[principalID], view, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("CartView mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing cart reads as empty", func(t *testing.T) {
		store := newStubReadStore()
		principalID := uuid.New()

		view, err := queries.NewCartQueries(store).Get(ctx, principalID)

		require.NoError(t, err)
		assert.Equal(t, principalID, view.PrincipalID)
		assert.Empty(t, view.Lines)
		assert.Zero(t, view.SubtotalCents)
	})
}

func TestPrincipalQueriesGet(t *testing.T) {
	ctx := context.Background()

	store := newStubReadStore()
	id := uuid.New()
	store.principals[id] = &queries.PrincipalView{ID: id, Email: "ada@example.com", Role: "customer", IsActive: true}

	view, err := queries.NewPrincipalQueries(store).Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", view.Email)

	_, err = queries.NewPrincipalQueries(store).Get(ctx, uuid.New())
	assert.ErrorIs(t, err, queries.ErrNotFound)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name   string
		number int32
		size   int32
		want   queries.Page
	}{
		{"valid", 2, 50, queries.Page{Number: 2, Size: 50}},
		{"zero number clamps to first page", 0, 20, queries.Page{Number: 1, Size: 20}},
		{"zero size takes the default", 1, 0, queries.Page{Number: 1, Size: queries.DefaultPageSize}},
		{"oversized page clamps", 1, 500, queries.Page{Number: 1, Size: queries.MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queries.NewPage(tt.number, tt.size))
		})
	}

	assert.Equal(t, int32(40), queries.Page{Number: 3, Size: 20}.Offset())
}
