package readstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/queries"
)

// StorefrontReadStore is the query side's single entry point, backed by the
// shared pool rather than any transaction.
type StorefrontReadStore struct {
	pool *pgxpool.Pool
}

func NewStorefrontReadStore(pool *pgxpool.Pool) queries.ReadStore {
	return &StorefrontReadStore{pool: pool}
}

func (s *StorefrontReadStore) CartByPrincipal(ctx context.Context, principalID uuid.UUID) (*queries.CartView, error) {
	return NewCartReadStore(s.pool).ViewByPrincipal(ctx, principalID)
}

func (s *StorefrontReadStore) PrincipalByID(ctx context.Context, id uuid.UUID) (*queries.PrincipalView, error) {
	const query = `
		SELECT id, email, role, is_guest, is_active, last_login, created_at
		FROM principals
		WHERE id = $1`

	var (
		view  queries.PrincipalView
		email *string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&view.ID, &email, &view.Role, &view.IsGuest, &view.IsActive, &view.LastLogin, &view.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("principal not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load principal view", err)
	}
	if email != nil {
		view.Email = *email
	}
	return &view, nil
}

func (s *StorefrontReadStore) OrderByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	const query = `
		SELECT id, order_number, principal_id, status,
		       subtotal_cents, discount_cents, tax_cents, shipping_cents, total_cents,
		       shipping_address, billing_address, shipping_method, payment_method,
		       tracking_number, customer_notes,
		       confirmed_at, shipped_at, delivered_at, cancelled_at, created_at
		FROM orders
		WHERE id = $1`

	var (
		view        queries.OrderView
		shippingRaw []byte
		billingRaw  []byte
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.Number, &view.PrincipalID, &view.Status,
		&view.SubtotalCents, &view.DiscountCents, &view.TaxCents, &view.ShippingCents, &view.TotalCents,
		&shippingRaw, &billingRaw, &view.ShippingMethod, &view.PaymentMethod,
		&view.TrackingNumber, &view.CustomerNotes,
		&view.ConfirmedAt, &view.ShippedAt, &view.DeliveredAt, &view.CancelledAt, &view.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load order view", err)
	}

	if view.ShippingAddr, err = decodeAddressView(shippingRaw); err != nil {
		return nil, err
	}
	if view.BillingAddr, err = decodeAddressView(billingRaw); err != nil {
		return nil, err
	}

	const itemQuery = `
		SELECT variant_id, product_name, sku, quantity, unit_price_cents, customization
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := s.pool.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order item views", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			iv  queries.OrderItemView
			raw []byte
		)
		if err := rows.Scan(&iv.VariantID, &iv.ProductName, &iv.SKU, &iv.Quantity, &iv.UnitPriceCents, &raw); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item view", err)
		}
		iv.Customization = json.RawMessage(raw)
		iv.TotalCents = iv.UnitPriceCents * int64(iv.Quantity)
		view.Items = append(view.Items, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order item views", err)
	}
	return &view, nil
}

func (s *StorefrontReadStore) OrdersByPrincipal(ctx context.Context, principalID uuid.UUID, page queries.Page) (*queries.OrderListView, error) {
	const countQuery = `SELECT count(*) FROM orders WHERE principal_id = $1`

	list := &queries.OrderListView{Orders: []queries.OrderSummaryView{}, Page: page}
	if err := s.pool.QueryRow(ctx, countQuery, principalID).Scan(&list.Total); err != nil {
		return nil, infra.WrapRepoErr("failed to count orders", err)
	}

	const query = `
		SELECT o.id, o.order_number, o.status, o.total_cents,
		       (SELECT coalesce(sum(quantity), 0) FROM order_items WHERE order_id = o.id),
		       o.created_at
		FROM orders o
		WHERE o.principal_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, principalID, page.Size, page.Offset())
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sv queries.OrderSummaryView
		if err := rows.Scan(&sv.ID, &sv.Number, &sv.Status, &sv.TotalCents, &sv.ItemCount, &sv.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order summary", err)
		}
		list.Orders = append(list.Orders, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order summaries", err)
	}
	return list, nil
}

func decodeAddressView(raw []byte) (queries.AddressView, error) {
	var addr order.Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return queries.AddressView{}, infra.WrapRepoErr("failed to decode stored address", err)
	}
	return queries.AddressView{
		FirstName:      addr.FirstName,
		LastName:       addr.LastName,
		StreetAddress1: addr.StreetAddress1,
		StreetAddress2: addr.StreetAddress2,
		City:           addr.City,
		State:          addr.State,
		PostalCode:     addr.PostalCode,
		Country:        addr.Country,
		Phone:          addr.Phone,
	}, nil
}
