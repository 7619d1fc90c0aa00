package shared

import (
	"context"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/jwt"
)

var ErrPrincipalInactive = errs.New("principal is inactive")

// IdentityResolver turns a bearer token into the live principal. Retired
// guests and deactivated accounts fail here even when their token has not
// expired yet.
type IdentityResolver struct {
	jwt   *jwt.Manager
	reads CommandReads
}

func NewIdentityResolver(jwtManager *jwt.Manager, reads CommandReads) *IdentityResolver {
	return &IdentityResolver{jwt: jwtManager, reads: reads}
}

func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*user.Principal, error) {
	claims, err := r.jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	principal, err := r.reads.PrincipalByID(ctx, claims.PrincipalID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, jwt.ErrInvalidToken
		}
		return nil, errs.Wrap(err, "loading principal for token")
	}
	if !principal.IsActive() {
		return nil, ErrPrincipalInactive
	}
	return principal, nil
}
