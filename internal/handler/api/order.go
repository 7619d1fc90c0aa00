package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-core/internal/domain/order"
	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

type OrderHandler struct {
	checkout   commands.CheckoutCommands
	orders     commands.OrderCommands
	orderViews queries.OrderQueries
}

func NewOrderHandler(checkout commands.CheckoutCommands, orders commands.OrderCommands, orderViews queries.OrderQueries) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders, orderViews: orderViews}
}

// @Summary Check out the current cart
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.CheckoutRequest true "Checkout request"
// @Success 201 {object} resdto.Envelope{data=resdto.CheckoutResponse}
// @Failure 402 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /orders/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_request", "Invalid request format", nil)
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), principal, commands.CheckoutInput{
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		ShippingMethod:    req.ShippingMethod,
		PaymentMethod:     req.PaymentMethod,
		DiscountCode:      req.NormalizedDiscountCode(),
		CustomerNotes:     req.CustomerNotes,
	})
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusCreated, "Order placed", resdto.FromCheckoutResult(result))
}

// @Summary Get one order
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {object} resdto.Envelope{data=resdto.OrderResponse}
// @Failure 404 {object} httperr.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_id", "Invalid order id", nil)
		return
	}

	view, err := h.orderViews.Get(c.Request.Context(), principal, orderID)
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, "", resdto.FromOrderView(view))
}

// @Summary List the principal's orders
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} resdto.Envelope{data=resdto.Paginated}
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	page := queries.NewPage(queryInt32(c, "page", 1), queryInt32(c, "page_size", queries.DefaultPageSize))

	list, err := h.orderViews.List(c.Request.Context(), principal.ID(), page)
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, "",
		resdto.NewPaginated(resdto.FromOrderSummaries(list.Orders), list.Total, list.Page.Number, list.Page.Size))
}

// @Summary Update an order's status
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order id"
// @Param request body reqdto.UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} resdto.Envelope{data=resdto.OrderResponse}
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_id", "Invalid order id", nil)
		return
	}

	var req reqdto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_request", "Invalid request format", nil)
		return
	}

	updated, err := h.orders.Transition(c.Request.Context(), principal, commands.TransitionInput{
		OrderID:        orderID,
		NextStatus:     order.Status(req.Status),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		httperr.Map(c, err)
		return
	}

	view, err := h.orderViews.Get(c.Request.Context(), principal, updated.ID())
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, "Order updated", resdto.FromOrderView(view))
}

func queryInt32(c *gin.Context, key string, fallback int32) int32 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}
