package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

type CartHandler struct {
	carts     commands.CartCommands
	cartViews queries.CartQueries
}

func NewCartHandler(carts commands.CartCommands, cartViews queries.CartQueries) *CartHandler {
	return &CartHandler{carts: carts, cartViews: cartViews}
}

// @Summary Get the current cart
// @Tags cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.Envelope{data=resdto.CartResponse}
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	view, err := h.cartViews.Get(c.Request.Context(), principal.ID())
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, "", resdto.FromCartView(view))
}

// @Summary Add an item to the cart
// @Tags cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.AddItemRequest true "Item to add"
// @Success 200 {object} resdto.Envelope{data=resdto.CartResponse}
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	var req reqdto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_request", "Invalid request format", nil)
		return
	}

	_, err := h.carts.AddItem(c.Request.Context(), principal.ID(), commands.AddItemInput{
		VariantID:     req.VariantID,
		Quantity:      req.Quantity,
		Customization: req.Customization,
	})
	if err != nil {
		httperr.Map(c, err)
		return
	}
	h.respondWithCart(c, principal.ID(), "Item added")
}

// @Summary Change an item's quantity
// @Tags cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart item id"
// @Param request body reqdto.UpdateItemRequest true "New quantity; zero removes the item"
// @Success 200 {object} resdto.Envelope{data=resdto.CartResponse}
// @Failure 404 {object} httperr.Response
// @Router /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_id", "Invalid cart item id", nil)
		return
	}

	var req reqdto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_request", "Invalid request format", nil)
		return
	}

	if err := h.carts.UpdateItem(c.Request.Context(), principal.ID(), lineID, req.Quantity); err != nil {
		httperr.Map(c, err)
		return
	}
	h.respondWithCart(c, principal.ID(), "Cart updated")
}

// @Summary Remove an item from the cart
// @Tags cart
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart item id"
// @Success 200 {object} resdto.Envelope{data=resdto.CartResponse}
// @Failure 404 {object} httperr.Response
// @Router /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_id", "Invalid cart item id", nil)
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), principal.ID(), lineID); err != nil {
		httperr.Map(c, err)
		return
	}
	h.respondWithCart(c, principal.ID(), "Item removed")
}

// @Summary Clear the cart
// @Tags cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.Envelope{data=resdto.CartResponse}
// @Router /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	if err := h.carts.Clear(c.Request.Context(), principal.ID()); err != nil {
		httperr.Map(c, err)
		return
	}
	h.respondWithCart(c, principal.ID(), "Cart cleared")
}

func (h *CartHandler) respondWithCart(c *gin.Context, principalID uuid.UUID, message string) {
	view, err := h.cartViews.Get(c.Request.Context(), principalID)
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, message, resdto.FromCartView(view))
}
