package commands

import (
	"fmt"

	"storefront-core/internal/domain/inventory"
	"storefront-core/internal/pkg/errs"
)

var (
	ErrAuthorization = errs.New("capability missing for this operation")
	ErrValidation    = errs.New("request failed validation")

	ErrPrincipalNotFound  = errs.New("principal not found")
	ErrEmailAlreadyExists = errs.New("email already registered")
	ErrInvalidCredentials = errs.New("invalid credentials")

	ErrCartNotFound    = errs.New("cart not found")
	ErrCartLineNotFound = errs.New("cart line not found")
	ErrVariantNotFound = errs.New("variant not found")
	ErrMergeConflict   = errs.New("cart merge conflict after retries")

	ErrEmptyCart          = errs.New("cart is empty")
	ErrAddressNotFound    = errs.New("address not found")
	ErrDiscountNotFound   = errs.New("unknown discount code")
	ErrInsufficientStock  = errs.New("insufficient stock for reservation")
	ErrPaymentDeclined    = errs.New("payment was declined")
	ErrCommitFailed       = errs.New("order commit failed")
	ErrOrderNotFound      = errs.New("order not found")
	ErrInvalidTransition  = errs.New("invalid order status transition")
	ErrRefundFailed       = errs.New("refund failed; cancellation blocked")
	ErrReservationExpired = errs.New("reservation expired")
)

// StockError carries the first insufficient variant so the caller can adjust
// quantities. errors.Is(err, ErrInsufficientStock) holds for every StockError.
type StockError struct {
	Shortage inventory.StockShortage
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: requested %d, available %d",
		e.Shortage.VariantID, e.Shortage.Requested, e.Shortage.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
