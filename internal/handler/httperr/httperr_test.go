//go:build unit

package httperr_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-core/internal/domain/discount"
	"storefront-core/internal/domain/inventory"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runMap(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	httperr.Map(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestMap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", commands.ErrValidation, http.StatusUnprocessableEntity, "validation_failed"},
		{"invalid credentials", commands.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"authorization", commands.ErrAuthorization, http.StatusForbidden, "forbidden"},
		{"order not found", commands.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
		{"query not found", queries.ErrNotFound, http.StatusNotFound, "not_found"},
		{"email taken", commands.ErrEmailAlreadyExists, http.StatusConflict, "email_taken"},
		{"reservation expired", commands.ErrReservationExpired, http.StatusConflict, "reservation_expired"},
		{"invalid transition", commands.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{"empty cart", commands.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart"},
		{"discount exhausted", discount.ErrUsageExhausted, http.StatusUnprocessableEntity, "discount_exhausted"},
		{"payment declined", commands.ErrPaymentDeclined, http.StatusPaymentRequired, "payment_declined"},
		{"gateway down counts as declined", errs.Mark(errs.New("gateway unreachable"), commands.ErrPaymentDeclined), http.StatusPaymentRequired, "payment_declined"},
		{"unmapped error", errs.New("something odd"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := runMap(t, tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body["error_code"])
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestMapWrappedSentinel(t *testing.T) {
	status, body := runMap(t, errs.Mark(errs.New("row locked"), commands.ErrCommitFailed))

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "checkout_conflict", body["error_code"])
}

func TestMapStockErrorDetail(t *testing.T) {
	variantID := uuid.New()
	err := &commands.StockError{Shortage: inventory.StockShortage{
		VariantID: variantID,
		Requested: 5,
		Available: 2,
	}}

	status, body := runMap(t, err)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient_stock", body["error_code"])
	detail, ok := body["detail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, variantID.String(), detail["variant_id"])
	assert.Equal(t, float64(5), detail["requested"])
	assert.Equal(t, float64(2), detail["available"])
}
