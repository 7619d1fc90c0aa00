package httperr

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/discount"
	"storefront-core/internal/pkg/jwt"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
	"storefront-core/internal/usecase/shared"
)

type Response struct {
	Status    int       `json:"-"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ErrorCode string    `json:"error_code"`
	Detail    any       `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, code, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{
		Status:    status,
		Success:   false,
		Message:   msg,
		ErrorCode: code,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type mapping struct {
	sentinel error
	status   int
	code     string
	message  string
}

var commandMappings = []mapping{
	// Malformed bodies are rejected as 400 at the binding layer; sentinels
	// here mean the request parsed but failed domain validation.
	{commands.ErrValidation, http.StatusUnprocessableEntity, "validation_failed", "Request failed validation"},
	{cart.ErrInvalidCustomization, http.StatusUnprocessableEntity, "invalid_customization", "Customization payload is not valid JSON"},
	{cart.ErrQuantityNotPositive, http.StatusUnprocessableEntity, "invalid_quantity", "Quantity must be positive"},

	{commands.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
	{jwt.ErrExpiredToken, http.StatusUnauthorized, "token_expired", "Token has expired"},
	{jwt.ErrInvalidToken, http.StatusUnauthorized, "token_invalid", "Invalid token"},
	{shared.ErrPrincipalInactive, http.StatusUnauthorized, "account_inactive", "Account is inactive"},

	{commands.ErrAuthorization, http.StatusForbidden, "forbidden", "Not allowed to perform this operation"},
	{queries.ErrAuthorization, http.StatusForbidden, "forbidden", "Not allowed to read this resource"},

	{commands.ErrCartNotFound, http.StatusNotFound, "cart_not_found", "Cart not found"},
	{commands.ErrCartLineNotFound, http.StatusNotFound, "cart_item_not_found", "Cart item not found"},
	{commands.ErrVariantNotFound, http.StatusNotFound, "variant_not_found", "Product variant not found"},
	{commands.ErrOrderNotFound, http.StatusNotFound, "order_not_found", "Order not found"},
	{commands.ErrAddressNotFound, http.StatusNotFound, "address_not_found", "Address not found"},
	{commands.ErrDiscountNotFound, http.StatusNotFound, "discount_not_found", "Unknown discount code"},
	{commands.ErrPrincipalNotFound, http.StatusNotFound, "account_not_found", "Account not found"},
	{queries.ErrNotFound, http.StatusNotFound, "not_found", "Resource not found"},

	{commands.ErrEmailAlreadyExists, http.StatusConflict, "email_taken", "Email is already registered"},
	{commands.ErrInsufficientStock, http.StatusConflict, "insufficient_stock", "Not enough stock to fulfill the request"},
	{commands.ErrMergeConflict, http.StatusConflict, "merge_conflict", "Cart merge failed, please retry"},
	{commands.ErrCommitFailed, http.StatusConflict, "checkout_conflict", "Checkout could not be completed, please retry"},
	{commands.ErrReservationExpired, http.StatusConflict, "reservation_expired", "Stock reservation expired before payment completed"},
	{commands.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "Order cannot move to the requested status"},
	{commands.ErrRefundFailed, http.StatusConflict, "refund_failed", "Refund failed, cancellation aborted"},

	{discount.ErrInactive, http.StatusUnprocessableEntity, "discount_inactive", "Discount code is not active"},
	{discount.ErrNotYetActive, http.StatusUnprocessableEntity, "discount_not_started", "Discount code is not active yet"},
	{discount.ErrExpired, http.StatusUnprocessableEntity, "discount_expired", "Discount code has expired"},
	{discount.ErrUsageExhausted, http.StatusUnprocessableEntity, "discount_exhausted", "Discount code has no uses left"},
	{discount.ErrBelowMinimum, http.StatusUnprocessableEntity, "discount_below_minimum", "Cart subtotal is below the code's minimum"},
	{commands.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart", "Cart is empty"},

	{commands.ErrPaymentDeclined, http.StatusPaymentRequired, "payment_declined", "Payment was declined"},
}

// Map translates usecase and domain sentinels into the API error envelope.
// Anything unmapped is a 500 with no internals leaked.
func Map(c *gin.Context, err error) {
	for _, m := range commandMappings {
		if errors.Is(err, m.sentinel) {
			detail := stockDetail(err)
			AbortWithError(c, m.status, err, m.code, m.message, detail)
			return
		}
	}
	AbortWithError(c, http.StatusInternalServerError, err, "internal_error", "Internal server error", nil)
}

func stockDetail(err error) any {
	var stockErr *commands.StockError
	if !errors.As(err, &stockErr) {
		return nil
	}
	return gin.H{
		"variant_id": stockErr.Shortage.VariantID,
		"requested":  stockErr.Shortage.Requested,
		"available":  stockErr.Shortage.Available,
	}
}
