//go:build unit

package commands_test

import (
	"context"
	"time"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/discount"
	"storefront-core/internal/domain/inventory"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeStore is an in-memory shared.UnitOfWork. Within snapshots the mutable
// state up front and restores it when the callback fails, mimicking a
// transaction rollback.
type fakeStore struct {
	variants     map[uuid.UUID]shared.VariantSnapshot
	carts        map[uuid.UUID]*cart.Cart
	reservations map[uuid.UUID]*reservationRec
	orders       map[uuid.UUID]*order.Order
	discounts    map[uuid.UUID]*discountRec
	principals   map[uuid.UUID]*user.Principal
	addresses    map[uuid.UUID]map[uuid.UUID]order.Address

	errOrderCreate       error
	errCreateReservation error
}

type reservationRec struct {
	res    *inventory.Reservation
	status inventory.ReservationStatus
}

type discountRec struct {
	id               uuid.UUID
	code             string
	kind             discount.Kind
	value            int64
	minSubtotalCents *int64
	maxDiscountCents *int64
	validFrom        *time.Time
	validUntil       *time.Time
	maxUses          *int32
	useCount         int32
	isActive         bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		variants:     make(map[uuid.UUID]shared.VariantSnapshot),
		carts:        make(map[uuid.UUID]*cart.Cart),
		reservations: make(map[uuid.UUID]*reservationRec),
		orders:       make(map[uuid.UUID]*order.Order),
		discounts:    make(map[uuid.UUID]*discountRec),
		principals:   make(map[uuid.UUID]*user.Principal),
		addresses:    make(map[uuid.UUID]map[uuid.UUID]order.Address),
	}
}

func (s *fakeStore) putVariant(v shared.VariantSnapshot) {
	s.variants[v.ID] = v
}

func (s *fakeStore) putCart(c *cart.Cart) {
	s.carts[c.ID()] = c
}

func (s *fakeStore) putDiscount(d *discountRec) {
	s.discounts[d.id] = d
}

func (s *fakeStore) putPrincipal(p *user.Principal) {
	s.principals[p.ID()] = p
}

func (s *fakeStore) putAddress(principalID uuid.UUID, addressID uuid.UUID, a order.Address) {
	if s.addresses[principalID] == nil {
		s.addresses[principalID] = make(map[uuid.UUID]order.Address)
	}
	s.addresses[principalID][addressID] = a
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

// --- snapshot / restore ---

type storeSnapshot struct {
	variants     map[uuid.UUID]shared.VariantSnapshot
	carts        map[uuid.UUID]*cart.Cart
	reservations map[uuid.UUID]*reservationRec
	orders       map[uuid.UUID]*order.Order
	discountUse  map[uuid.UUID]int32
	principals   map[uuid.UUID]*user.Principal
}

func copyCart(c *cart.Cart) *cart.Cart {
	lines := make([]*cart.Line, 0, len(c.Lines()))
	for _, l := range c.Lines() {
		lines = append(lines, cart.ReconstructLine(l.ID(), l.VariantID(), l.Quantity(), l.UnitPriceCents(), l.Customization()))
	}
	return cart.ReconstructCart(c.ID(), c.PrincipalID(), lines, c.UpdatedAt())
}

func copyOrder(o *order.Order) *order.Order {
	return order.ReconstructOrder(
		o.ID(), o.Number(), o.PrincipalID(), o.Status(), o.Items(), o.Totals(),
		o.ShippingAddress(), o.BillingAddress(),
		o.ShippingMethod(), o.PaymentMethod(), o.PaymentRef(),
		o.DiscountCodeID(), o.CustomerNotes(), o.TrackingNumber(),
		o.ConfirmedAt(), o.ShippedAt(), o.DeliveredAt(), o.CancelledAt(),
		o.CreatedAt(), o.UpdatedAt(),
	)
}

func (s *fakeStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		variants:     make(map[uuid.UUID]shared.VariantSnapshot, len(s.variants)),
		carts:        make(map[uuid.UUID]*cart.Cart, len(s.carts)),
		reservations: make(map[uuid.UUID]*reservationRec, len(s.reservations)),
		orders:       make(map[uuid.UUID]*order.Order, len(s.orders)),
		discountUse:  make(map[uuid.UUID]int32, len(s.discounts)),
		principals:   make(map[uuid.UUID]*user.Principal, len(s.principals)),
	}
	for id, v := range s.variants {
		snap.variants[id] = v
	}
	for id, c := range s.carts {
		snap.carts[id] = copyCart(c)
	}
	for id, r := range s.reservations {
		snap.reservations[id] = &reservationRec{res: r.res, status: r.status}
	}
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	for id, d := range s.discounts {
		snap.discountUse[id] = d.useCount
	}
	for id, p := range s.principals {
		snap.principals[id] = p
	}
	return snap
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.variants = snap.variants
	s.carts = snap.carts
	s.reservations = snap.reservations
	s.orders = snap.orders
	for id, use := range snap.discountUse {
		if d, ok := s.discounts[id]; ok {
			d.useCount = use
		}
	}
	s.principals = snap.principals
}

// --- shared.UnitOfWork ---

func (s *fakeStore) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	snap := s.snapshot()
	if err := fn(ctx, &fakeTx{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *fakeStore) CommandReads() shared.CommandReads {
	return (*fakeReads)(s)
}

// --- shared.Tx ---

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) Carts() shared.CartRepository           { return (*fakeCarts)(t.s) }
func (t *fakeTx) Inventory() shared.InventoryRepository  { return (*fakeInventory)(t.s) }
func (t *fakeTx) Orders() shared.OrderRepository         { return (*fakeOrders)(t.s) }
func (t *fakeTx) Discounts() shared.DiscountRepository   { return (*fakeDiscounts)(t.s) }
func (t *fakeTx) Principals() shared.PrincipalRepository { return (*fakePrincipals)(t.s) }
func (t *fakeTx) Reads() shared.CommandReads             { return (*fakeReads)(t.s) }

// --- repositories ---

type fakeCarts fakeStore

func (f *fakeCarts) FindByPrincipalForUpdate(_ context.Context, principalID uuid.UUID) (*cart.Cart, error) {
	for _, c := range f.carts {
		if c.PrincipalID() == principalID {
			return c, nil
		}
	}
	return nil, notFound("cart not found")
}

func (f *fakeCarts) Create(_ context.Context, c *cart.Cart) error {
	f.carts[c.ID()] = c
	return nil
}

func (f *fakeCarts) SaveLines(_ context.Context, c *cart.Cart) error {
	f.carts[c.ID()] = c
	return nil
}

func (f *fakeCarts) Delete(_ context.Context, cartID uuid.UUID) error {
	delete(f.carts, cartID)
	return nil
}

func (f *fakeCarts) DeleteUntouchedSince(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, c := range f.carts {
		if c.UpdatedAt().Before(cutoff) {
			delete(f.carts, id)
			n++
		}
	}
	return n, nil
}

type fakeInventory fakeStore

func (f *fakeInventory) VariantsForUpdate(_ context.Context, ids []uuid.UUID) ([]shared.VariantStock, error) {
	stocks := make([]shared.VariantStock, 0, len(ids))
	for _, id := range ids {
		if v, ok := f.variants[id]; ok {
			stocks = append(stocks, shared.VariantStock{
				ID:             v.ID,
				AvailableStock: v.AvailableStock,
				ReservedStock:  v.ReservedStock,
			})
		}
	}
	return stocks, nil
}

func (f *fakeInventory) MoveAvailableToReserved(_ context.Context, variantID uuid.UUID, qty int32) error {
	v, ok := f.variants[variantID]
	if !ok || v.AvailableStock < qty {
		return infra.WrapRepoErr("insufficient available stock", nil, infra.KindConflict)
	}
	v.AvailableStock -= qty
	v.ReservedStock += qty
	f.variants[variantID] = v
	return nil
}

func (f *fakeInventory) MoveReservedToAvailable(_ context.Context, variantID uuid.UUID, qty int32) error {
	v, ok := f.variants[variantID]
	if !ok || v.ReservedStock < qty {
		return infra.WrapRepoErr("insufficient reserved stock", nil, infra.KindConflict)
	}
	v.ReservedStock -= qty
	v.AvailableStock += qty
	f.variants[variantID] = v
	return nil
}

func (f *fakeInventory) DeductReserved(_ context.Context, variantID uuid.UUID, qty int32) error {
	v, ok := f.variants[variantID]
	if !ok || v.ReservedStock < qty {
		return infra.WrapRepoErr("insufficient reserved stock", nil, infra.KindConflict)
	}
	v.ReservedStock -= qty
	f.variants[variantID] = v
	return nil
}

func (f *fakeInventory) CreateReservation(_ context.Context, r *inventory.Reservation) error {
	if f.errCreateReservation != nil {
		return f.errCreateReservation
	}
	f.reservations[r.ID()] = &reservationRec{res: r, status: r.Status()}
	return nil
}

func (f *fakeInventory) ReservationForUpdate(_ context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	rec, ok := f.reservations[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	r := rec.res
	return inventory.ReconstructReservation(r.ID(), r.CartID(), r.Lines(), rec.status, r.ExpiresAt(), r.CreatedAt()), nil
}

func (f *fakeInventory) SetReservationStatus(_ context.Context, id uuid.UUID, status inventory.ReservationStatus) error {
	rec, ok := f.reservations[id]
	if !ok {
		return notFound("reservation not found")
	}
	rec.status = status
	return nil
}

func (f *fakeInventory) ExpiredHeld(_ context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, rec := range f.reservations {
		if rec.status == inventory.StatusHeld && now.After(rec.res.ExpiresAt()) {
			ids = append(ids, id)
			if int32(len(ids)) >= limit {
				break
			}
		}
	}
	return ids, nil
}

type fakeOrders fakeStore

func (f *fakeOrders) Create(_ context.Context, o *order.Order) error {
	if f.errOrderCreate != nil {
		return f.errOrderCreate
	}
	f.orders[o.ID()] = o
	return nil
}

func (f *fakeOrders) ForUpdate(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, notFound("order not found")
	}
	return o, nil
}

func (f *fakeOrders) SaveStatus(_ context.Context, o *order.Order) error {
	f.orders[o.ID()] = o
	return nil
}

type fakeDiscounts fakeStore

func (f *fakeDiscounts) ByCodeForUpdate(ctx context.Context, code string) (*discount.Code, error) {
	return (*fakeReads)(f).DiscountByCode(ctx, code)
}

func (f *fakeDiscounts) IncrementUsage(_ context.Context, id uuid.UUID) error {
	d, ok := f.discounts[id]
	if !ok {
		return notFound("discount not found")
	}
	if d.maxUses != nil && d.useCount >= *d.maxUses {
		return infra.WrapRepoErr("discount usage limit reached", nil, infra.KindConflict)
	}
	d.useCount++
	return nil
}

type fakePrincipals fakeStore

func (f *fakePrincipals) Create(_ context.Context, p *user.Principal) error {
	if !p.Email().IsEmpty() {
		for _, existing := range f.principals {
			if existing.Email().String() == p.Email().String() {
				return infra.WrapRepoErr("email already registered", nil, infra.KindDuplicateKey)
			}
		}
	}
	f.principals[p.ID()] = p
	return nil
}

func (f *fakePrincipals) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	p, ok := f.principals[id]
	if !ok {
		return notFound("principal not found")
	}
	f.principals[id] = user.ReconstructPrincipal(
		p.ID(), p.Email(), p.PasswordHash(), p.Role(), p.IsGuest(), p.SessionID(),
		p.IsActive(), &at, p.CreatedAt(), at,
	)
	return nil
}

func (f *fakePrincipals) RetireGuest(_ context.Context, guestID uuid.UUID) error {
	p, ok := f.principals[guestID]
	if !ok || !p.IsGuest() {
		return nil
	}
	f.principals[guestID] = user.ReconstructPrincipal(
		p.ID(), p.Email(), p.PasswordHash(), p.Role(), p.IsGuest(), p.SessionID(),
		false, p.LastLogin(), p.CreatedAt(), p.UpdatedAt(),
	)
	return nil
}

func (f *fakePrincipals) DeleteStaleGuests(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, p := range f.principals {
		if p.IsGuest() && p.UpdatedAt().Before(cutoff) {
			delete(f.principals, id)
			n++
		}
	}
	return n, nil
}

// --- shared.CommandReads ---

type fakeReads fakeStore

func (f *fakeReads) PrincipalByID(_ context.Context, id uuid.UUID) (*user.Principal, error) {
	p, ok := f.principals[id]
	if !ok {
		return nil, notFound("principal not found")
	}
	return p, nil
}

func (f *fakeReads) PrincipalByEmail(_ context.Context, email string) (*user.Principal, error) {
	for _, p := range f.principals {
		if !p.Email().IsEmpty() && p.Email().String() == email {
			return p, nil
		}
	}
	return nil, notFound("principal not found")
}

func (f *fakeReads) PrincipalBySessionID(_ context.Context, sessionID string) (*user.Principal, error) {
	for _, p := range f.principals {
		if p.SessionID() != nil && *p.SessionID() == sessionID {
			return p, nil
		}
	}
	return nil, notFound("principal not found")
}

func (f *fakeReads) VariantByID(_ context.Context, id uuid.UUID) (*shared.VariantSnapshot, error) {
	v, ok := f.variants[id]
	if !ok {
		return nil, notFound("variant not found")
	}
	return &v, nil
}

func (f *fakeReads) VariantsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]shared.VariantSnapshot, error) {
	found := make(map[uuid.UUID]shared.VariantSnapshot, len(ids))
	for _, id := range ids {
		if v, ok := f.variants[id]; ok {
			found[id] = v
		}
	}
	return found, nil
}

func (f *fakeReads) DiscountByCode(_ context.Context, code string) (*discount.Code, error) {
	for _, d := range f.discounts {
		if d.code == code {
			c, err := discount.NewCode(
				d.id, d.code, d.kind, d.value,
				d.minSubtotalCents, d.maxDiscountCents,
				d.validFrom, d.validUntil,
				d.maxUses, d.useCount, d.isActive,
			)
			if err != nil {
				return nil, errs.Wrap(err, "rebuilding discount")
			}
			return c, nil
		}
	}
	return nil, notFound("discount not found")
}

func (f *fakeReads) CartByPrincipal(ctx context.Context, principalID uuid.UUID) (*cart.Cart, error) {
	return (*fakeCarts)(f).FindByPrincipalForUpdate(ctx, principalID)
}

func (f *fakeReads) AddressByID(_ context.Context, principalID, addressID uuid.UUID) (*order.Address, error) {
	a, ok := f.addresses[principalID][addressID]
	if !ok {
		return nil, notFound("address not found")
	}
	return &a, nil
}

// --- gateway and notifier fakes ---

type fakeGateway struct {
	authorizeFn func(req commands.PaymentRequest) (*commands.PaymentResult, error)
	requests    []commands.PaymentRequest
	refunds     []refundCall
	refundErr   error
}

type refundCall struct {
	providerRef string
	amountCents int64
}

func (g *fakeGateway) Authorize(_ context.Context, req commands.PaymentRequest) (*commands.PaymentResult, error) {
	g.requests = append(g.requests, req)
	if g.authorizeFn != nil {
		return g.authorizeFn(req)
	}
	return &commands.PaymentResult{ProviderRef: "pay_test", Authorized: true, Settled: true}, nil
}

func (g *fakeGateway) Refund(_ context.Context, providerRef string, amountCents int64) error {
	g.refunds = append(g.refunds, refundCall{providerRef: providerRef, amountCents: amountCents})
	return g.refundErr
}

type fakeNotifier struct {
	events []notifiedEvent
}

type notifiedEvent struct {
	event   string
	orderID uuid.UUID
}

func (n *fakeNotifier) OrderEvent(_ context.Context, event string, orderID uuid.UUID, _ any) {
	n.events = append(n.events, notifiedEvent{event: event, orderID: orderID})
}
