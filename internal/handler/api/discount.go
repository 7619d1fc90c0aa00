package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/usecase/commands"
)

type DiscountHandler struct {
	discounts commands.DiscountCommands
}

func NewDiscountHandler(discounts commands.DiscountCommands) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

// @Summary Validate a discount code against the current cart
// @Tags discounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.ValidateDiscountRequest true "Code to validate"
// @Success 200 {object} resdto.Envelope{data=resdto.DiscountPreviewResponse}
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /discounts/validate [post]
func (h *DiscountHandler) Validate(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	var req reqdto.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_request", "Invalid request format", nil)
		return
	}

	preview, err := h.discounts.Preview(c.Request.Context(), principal.ID(), req.Code, req.CartTotal)
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, "Discount code is valid", resdto.FromDiscountPreview(preview))
}
