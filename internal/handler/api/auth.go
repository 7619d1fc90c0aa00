package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

var errBadRequest = errs.New("invalid request format")

type AuthHandler struct {
	auth       commands.AuthCommands
	principals queries.PrincipalQueries
}

func NewAuthHandler(auth commands.AuthCommands, principals queries.PrincipalQueries) *AuthHandler {
	return &AuthHandler{auth: auth, principals: principals}
}

// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RegisterRequest true "Registration request"
// @Success 201 {object} resdto.Envelope{data=resdto.AuthResponse}
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req reqdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_request", "Invalid request format", nil)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), commands.RegisterInput{
		Email:            req.NormalizedEmail(),
		Password:         req.Password,
		GuestPrincipalID: guestID(c),
	})
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusCreated, "Account created", resdto.FromAuthResult(result))
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.Envelope{data=resdto.AuthResponse}
// @Failure 401 {object} httperr.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid_request", "Invalid request format", nil)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), commands.LoginInput{
		Email:            req.NormalizedEmail(),
		Password:         req.Password,
		GuestPrincipalID: guestID(c),
	})
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, "Logged in", resdto.FromAuthResult(result))
}

// @Summary Start a guest session
// @Tags auth
// @Produce json
// @Success 201 {object} resdto.Envelope{data=resdto.AuthResponse}
// @Router /auth/guest [post]
func (h *AuthHandler) Guest(c *gin.Context) {
	result, err := h.auth.StartGuestSession(c.Request.Context())
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusCreated, "Guest session started", resdto.FromAuthResult(result))
}

// @Summary Get the current principal
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.Envelope{data=resdto.PrincipalResponse}
// @Failure 401 {object} httperr.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadRequest, "unauthorized", "Not authenticated", nil)
		return
	}

	view, err := h.principals.Get(c.Request.Context(), principal.ID())
	if err != nil {
		httperr.Map(c, err)
		return
	}
	resdto.OK(c, http.StatusOK, "", resdto.FromPrincipalView(view))
}

// guestID extracts the current principal's id when it is a guest session,
// so sign-in flows can merge its cart.
func guestID(c *gin.Context) *uuid.UUID {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || !principal.IsGuest() {
		return nil
	}
	id := principal.ID()
	return &id
}
