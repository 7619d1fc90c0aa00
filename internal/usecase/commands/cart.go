package commands

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

type AddItemInput struct {
	VariantID     uuid.UUID
	Quantity      int32
	Customization json.RawMessage
}

type CartCommands interface {
	AddItem(ctx context.Context, principalID uuid.UUID, in AddItemInput) (uuid.UUID, error)
	UpdateItem(ctx context.Context, principalID, lineID uuid.UUID, quantity int32) error
	RemoveItem(ctx context.Context, principalID, lineID uuid.UUID) error
	Clear(ctx context.Context, principalID uuid.UUID) error
	MergeGuestIntoUser(ctx context.Context, guestID, userID uuid.UUID) error
	SweepStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type cartCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewCartCommands(uow shared.UnitOfWork, clk clock.Clock) CartCommands {
	return &cartCommandsImpl{uow: uow, clock: clk}
}

// AddItem prices the line from the catalog at the moment of the call and
// merges it into the principal's cart, creating the cart on first use.
func (c *cartCommandsImpl) AddItem(ctx context.Context, principalID uuid.UUID, in AddItemInput) (uuid.UUID, error) {
	customization, err := cart.NewCustomization(in.Customization)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrValidation)
	}

	var lineID uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		variant, err := tx.Reads().VariantByID(ctx, in.VariantID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrVariantNotFound
			}
			return errs.Wrap(err, "loading variant")
		}

		crt, created, err := c.cartForUpdate(ctx, tx, principalID)
		if err != nil {
			return err
		}

		line, err := crt.AddLine(in.VariantID, in.Quantity, variant.PriceCents, customization, variant.AvailableStock)
		if err != nil {
			return errs.Mark(err, ErrValidation)
		}
		lineID = line.ID()

		if created {
			if err := tx.Carts().Create(ctx, crt); err != nil {
				return errs.Wrap(err, "creating cart")
			}
		}
		return tx.Carts().SaveLines(ctx, crt)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return lineID, nil
}

// UpdateItem changes a line's quantity; zero removes the line.
func (c *cartCommandsImpl) UpdateItem(ctx context.Context, principalID, lineID uuid.UUID, quantity int32) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		crt, err := c.existingCartForUpdate(ctx, tx, principalID)
		if err != nil {
			return err
		}
		line := crt.FindLine(lineID)
		if line == nil {
			return ErrCartLineNotFound
		}

		available := int32(0)
		if quantity > 0 {
			variant, err := tx.Reads().VariantByID(ctx, line.VariantID())
			if err != nil && !infra.IsKind(err, infra.KindNotFound) {
				return errs.Wrap(err, "loading variant")
			}
			if variant != nil {
				available = variant.AvailableStock
			}
		}

		if _, err := crt.UpdateLine(lineID, quantity, available); err != nil {
			if errors.Is(err, cart.ErrLineNotFound) {
				return ErrCartLineNotFound
			}
			return errs.Mark(err, ErrValidation)
		}
		return tx.Carts().SaveLines(ctx, crt)
	})
}

func (c *cartCommandsImpl) RemoveItem(ctx context.Context, principalID, lineID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		crt, err := c.existingCartForUpdate(ctx, tx, principalID)
		if err != nil {
			return err
		}
		if err := crt.RemoveLine(lineID); err != nil {
			return ErrCartLineNotFound
		}
		return tx.Carts().SaveLines(ctx, crt)
	})
}

func (c *cartCommandsImpl) Clear(ctx context.Context, principalID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		crt, err := c.existingCartForUpdate(ctx, tx, principalID)
		if err != nil {
			if errors.Is(err, ErrCartNotFound) {
				return nil
			}
			return err
		}
		crt.Clear()
		return tx.Carts().SaveLines(ctx, crt)
	})
}

// MergeGuestIntoUser folds a guest's cart into the signed-in user's cart and
// retires the guest principal. Both carts are locked for update; the UoW
// retry loop absorbs serialization failures before ErrMergeConflict surfaces.
func (c *cartCommandsImpl) MergeGuestIntoUser(ctx context.Context, guestID, userID uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		guestCart, err := tx.Carts().FindByPrincipalForUpdate(ctx, guestID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return tx.Principals().RetireGuest(ctx, guestID)
			}
			return errs.Wrap(err, "locking guest cart")
		}

		userCart, created, err := c.cartForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		userCart.MergeFrom(guestCart)

		if created {
			if err := tx.Carts().Create(ctx, userCart); err != nil {
				return errs.Wrap(err, "creating user cart")
			}
		}
		if err := tx.Carts().SaveLines(ctx, userCart); err != nil {
			return errs.Wrap(err, "saving merged cart")
		}
		if err := tx.Carts().Delete(ctx, guestCart.ID()); err != nil {
			return errs.Wrap(err, "deleting guest cart")
		}
		return tx.Principals().RetireGuest(ctx, guestID)
	})
	if infra.IsKind(err, infra.KindConflict) {
		return errs.Mark(err, ErrMergeConflict)
	}
	return err
}

// SweepStale deletes carts untouched since the cutoff, and guest principals
// inactive for the same span. Used only by the reconciliation sweep.
func (c *cartCommandsImpl) SweepStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := c.clock.Now().Add(-maxAge)
	var removed int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Carts().DeleteUntouchedSince(ctx, cutoff)
		if err != nil {
			return errs.Wrap(err, "deleting stale carts")
		}
		removed = n
		_, err = tx.Principals().DeleteStaleGuests(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (c *cartCommandsImpl) cartForUpdate(ctx context.Context, tx shared.Tx, principalID uuid.UUID) (*cart.Cart, bool, error) {
	crt, err := tx.Carts().FindByPrincipalForUpdate(ctx, principalID)
	if err == nil {
		return crt, false, nil
	}
	if infra.IsKind(err, infra.KindNotFound) {
		return cart.NewCart(principalID), true, nil
	}
	return nil, false, errs.Wrap(err, "locking cart")
}

func (c *cartCommandsImpl) existingCartForUpdate(ctx context.Context, tx shared.Tx, principalID uuid.UUID) (*cart.Cart, error) {
	crt, err := tx.Carts().FindByPrincipalForUpdate(ctx, principalID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errs.Wrap(err, "locking cart")
	}
	return crt, nil
}
