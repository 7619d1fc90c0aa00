//go:build unit

package shared_test

import (
	"context"
	"testing"
	"time"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/discount"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/jwt"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReads struct {
	principals map[uuid.UUID]*user.Principal
}

func (s *stubReads) PrincipalByID(_ context.Context, id uuid.UUID) (*user.Principal, error) {
	if p, ok := s.principals[id]; ok {
		return p, nil
	}
	return nil, infra.WrapRepoErr("principal not found", nil, infra.KindNotFound)
}

func (s *stubReads) PrincipalByEmail(context.Context, string) (*user.Principal, error) {
	return nil, infra.WrapRepoErr("not implemented", nil, infra.KindNotFound)
}

func (s *stubReads) PrincipalBySessionID(context.Context, string) (*user.Principal, error) {
	return nil, infra.WrapRepoErr("not implemented", nil, infra.KindNotFound)
}

func (s *stubReads) VariantByID(context.Context, uuid.UUID) (*shared.VariantSnapshot, error) {
	return nil, infra.WrapRepoErr("not implemented", nil, infra.KindNotFound)
}

func (s *stubReads) VariantsByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]shared.VariantSnapshot, error) {
	return nil, nil
}

func (s *stubReads) DiscountByCode(context.Context, string) (*discount.Code, error) {
	return nil, infra.WrapRepoErr("not implemented", nil, infra.KindNotFound)
}

func (s *stubReads) CartByPrincipal(context.Context, uuid.UUID) (*cart.Cart, error) {
	return nil, infra.WrapRepoErr("not implemented", nil, infra.KindNotFound)
}

func (s *stubReads) AddressByID(context.Context, uuid.UUID, uuid.UUID) (*order.Address, error) {
	return nil, infra.WrapRepoErr("not implemented", nil, infra.KindNotFound)
}

func TestIdentityResolverResolve(t *testing.T) {
	ctx := context.Background()
	manager := jwt.NewManager("test-secret", time.Hour, time.Hour)
	now := time.Now()

	newPrincipal := func(active bool) *user.Principal {
		return user.ReconstructPrincipal(
			uuid.New(), user.Email{}, "hash", user.RoleCustomer, false, nil,
			active, nil, now, now,
		)
	}

	t.Run("valid token for an active principal", func(t *testing.T) {
		p := newPrincipal(true)
		reads := &stubReads{principals: map[uuid.UUID]*user.Principal{p.ID(): p}}
		resolver := shared.NewIdentityResolver(manager, reads)
		token, err := manager.Generate(p.ID(), "customer", false, "", now)
		require.NoError(t, err)

		resolved, err := resolver.Resolve(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, p.ID(), resolved.ID())
	})

	t.Run("token for a vanished principal", func(t *testing.T) {
		reads := &stubReads{principals: map[uuid.UUID]*user.Principal{}}
		resolver := shared.NewIdentityResolver(manager, reads)
		token, err := manager.Generate(uuid.New(), "customer", false, "", now)
		require.NoError(t, err)

		_, err = resolver.Resolve(ctx, token)

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("retired principal", func(t *testing.T) {
		p := newPrincipal(false)
		reads := &stubReads{principals: map[uuid.UUID]*user.Principal{p.ID(): p}}
		resolver := shared.NewIdentityResolver(manager, reads)
		token, err := manager.Generate(p.ID(), "customer", false, "", now)
		require.NoError(t, err)

		_, err = resolver.Resolve(ctx, token)

		assert.ErrorIs(t, err, shared.ErrPrincipalInactive)
	})

	t.Run("malformed token", func(t *testing.T) {
		resolver := shared.NewIdentityResolver(manager, &stubReads{})

		_, err := resolver.Resolve(ctx, "garbage")

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
