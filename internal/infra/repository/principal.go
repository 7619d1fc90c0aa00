package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
)

type PrincipalRepository struct {
	db db.DBTX
}

func NewPrincipalRepository(dbtx db.DBTX) *PrincipalRepository {
	return &PrincipalRepository{db: dbtx}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *user.Principal) error {
	const query = `
		INSERT INTO principals (
			id, email, password_hash, role, is_guest, session_id, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	email := any(nil)
	if !p.IsGuest() {
		email = p.Email().String()
	}
	_, err := r.db.Exec(ctx, query,
		p.ID(), email, p.PasswordHash(), string(p.Role()),
		p.IsGuest(), p.SessionID(), p.IsActive())
	if err != nil {
		return infra.WrapRepoErr("failed to insert principal", err)
	}
	return nil
}

func (r *PrincipalRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE principals SET last_login = $2, updated_at = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}

func (r *PrincipalRepository) RetireGuest(ctx context.Context, guestID uuid.UUID) error {
	const query = `
		UPDATE principals
		SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_guest = true`

	if _, err := r.db.Exec(ctx, query, guestID); err != nil {
		return infra.WrapRepoErr("failed to retire guest principal", err)
	}
	return nil
}

// DeleteStaleGuests removes inactive or abandoned guest principals whose
// carts are already gone.
func (r *PrincipalRepository) DeleteStaleGuests(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
		DELETE FROM principals
		WHERE is_guest = true
		  AND updated_at < $1
		  AND NOT EXISTS (SELECT 1 FROM carts WHERE carts.principal_id = principals.id)
		  AND NOT EXISTS (SELECT 1 FROM orders WHERE orders.principal_id = principals.id)`

	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete stale guests", err)
	}
	return tag.RowsAffected(), nil
}
