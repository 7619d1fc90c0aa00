package readstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
)

type AddressReadStore struct {
	db db.DBTX
}

func NewAddressReadStore(dbtx db.DBTX) *AddressReadStore {
	return &AddressReadStore{db: dbtx}
}

// FindByID scopes the lookup to the owning principal so one customer cannot
// ship to another customer's saved address.
func (s *AddressReadStore) FindByID(ctx context.Context, principalID, addressID uuid.UUID) (*order.Address, error) {
	const query = `
		SELECT first_name, last_name, street_address_1, street_address_2,
		       city, state, postal_code, country, phone
		FROM addresses
		WHERE id = $1 AND principal_id = $2`

	var addr order.Address
	err := s.db.QueryRow(ctx, query, addressID, principalID).Scan(
		&addr.FirstName, &addr.LastName, &addr.StreetAddress1, &addr.StreetAddress2,
		&addr.City, &addr.State, &addr.PostalCode, &addr.Country, &addr.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("address not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load address", err)
	}
	return &addr, nil
}
