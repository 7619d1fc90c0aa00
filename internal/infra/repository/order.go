package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	shippingAddr, err := json.Marshal(o.ShippingAddress())
	if err != nil {
		return infra.WrapRepoErr("failed to encode shipping address", err)
	}
	billingAddr, err := json.Marshal(o.BillingAddress())
	if err != nil {
		return infra.WrapRepoErr("failed to encode billing address", err)
	}

	const insertOrder = `
		INSERT INTO orders (
			id, order_number, principal_id, status,
			subtotal_cents, discount_cents, tax_cents, shipping_cents, total_cents,
			shipping_address, billing_address, shipping_method, payment_method, payment_ref,
			discount_code_id, customer_notes, confirmed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	totals := o.Totals()
	_, err = r.db.Exec(ctx, insertOrder,
		o.ID(), o.Number(), o.PrincipalID(), string(o.Status()),
		totals.SubtotalCents, totals.DiscountCents, totals.TaxCents, totals.ShippingCents, totals.TotalCents,
		shippingAddr, billingAddr, o.ShippingMethod(), o.PaymentMethod(), o.PaymentRef(),
		o.DiscountCodeID(), o.CustomerNotes(), o.ConfirmedAt(), o.CreatedAt(), o.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to insert order", err)
	}

	const insertItem = `
		INSERT INTO order_items (
			id, order_id, variant_id, product_name, sku, quantity, unit_price_cents, customization
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range o.Items() {
		_, err := r.db.Exec(ctx, insertItem,
			item.ID(), o.ID(), item.VariantID(), item.ProductName(), item.SKU(),
			item.Quantity(), item.UnitPriceCents(), item.Customization())
		if err != nil {
			return infra.WrapRepoErr("failed to insert order item", err)
		}
	}
	return nil
}

func (r *OrderRepository) ForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	const query = `
		SELECT id, order_number, principal_id, status,
		       subtotal_cents, discount_cents, tax_cents, shipping_cents, total_cents,
		       shipping_address, billing_address, shipping_method, payment_method, payment_ref,
		       discount_code_id, customer_notes, tracking_number,
		       confirmed_at, shipped_at, delivered_at, cancelled_at, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE`

	var (
		orderID        uuid.UUID
		number         string
		principalID    uuid.UUID
		status         string
		totals         order.Totals
		shippingRaw    []byte
		billingRaw     []byte
		shippingMethod string
		paymentMethod  string
		paymentRef     string
		discountCodeID *uuid.UUID
		customerNotes  string
		trackingNumber *string
		confirmedAt    *time.Time
		shippedAt      *time.Time
		deliveredAt    *time.Time
		cancelledAt    *time.Time
		createdAt      time.Time
		updatedAt      time.Time
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&orderID, &number, &principalID, &status,
		&totals.SubtotalCents, &totals.DiscountCents, &totals.TaxCents, &totals.ShippingCents, &totals.TotalCents,
		&shippingRaw, &billingRaw, &shippingMethod, &paymentMethod, &paymentRef,
		&discountCodeID, &customerNotes, &trackingNumber,
		&confirmedAt, &shippedAt, &deliveredAt, &cancelledAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock order", err)
	}

	var shippingAddr, billingAddr order.Address
	if err := json.Unmarshal(shippingRaw, &shippingAddr); err != nil {
		return nil, infra.WrapRepoErr("failed to decode shipping address", err)
	}
	if err := json.Unmarshal(billingRaw, &billingAddr); err != nil {
		return nil, infra.WrapRepoErr("failed to decode billing address", err)
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return order.ReconstructOrder(
		orderID, number, principalID, order.Status(status),
		items, totals, shippingAddr, billingAddr,
		shippingMethod, paymentMethod, paymentRef,
		discountCodeID, customerNotes, trackingNumber,
		confirmedAt, shippedAt, deliveredAt, cancelledAt,
		createdAt, updatedAt), nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]*order.Item, error) {
	const query = `
		SELECT id, variant_id, product_name, sku, quantity, unit_price_cents, customization
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	var items []*order.Item
	for rows.Next() {
		var (
			id            uuid.UUID
			variantID     uuid.UUID
			productName   string
			sku           string
			quantity      int32
			unitPrice     int64
			customization []byte
		)
		if err := rows.Scan(&id, &variantID, &productName, &sku, &quantity, &unitPrice, &customization); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		items = append(items, order.ReconstructItem(id, variantID, productName, sku, quantity, unitPrice, customization))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order items", err)
	}
	return items, nil
}

func (r *OrderRepository) SaveStatus(ctx context.Context, o *order.Order) error {
	const query = `
		UPDATE orders
		SET status = $2, tracking_number = $3,
		    confirmed_at = $4, shipped_at = $5, delivered_at = $6, cancelled_at = $7,
		    updated_at = $8
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query,
		o.ID(), string(o.Status()), o.TrackingNumber(),
		o.ConfirmedAt(), o.ShippedAt(), o.DeliveredAt(), o.CancelledAt(),
		o.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	return nil
}
