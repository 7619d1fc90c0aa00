//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/handler/api"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
	"storefront-core/tests/common/httptest"
	commandsmock "storefront-core/tests/mock/commands"
	queriesmock "storefront-core/tests/mock/queries"
)

type CartHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCartCommands
	mockQueries  *queriesmock.MockCartQueries
	handler      *api.CartHandler

	principal *user.Principal
}

func (s *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCartCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCartQueries(s.mockCtrl)
	s.handler = api.NewCartHandler(s.mockCommands, s.mockQueries)

	email, err := user.NewEmail("shopper@example.com")
	s.Require().NoError(err)
	s.principal = user.NewRegistered(email, "$2a$10$hash", user.RoleCustomer)

	attach := func(h gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			if c.GetHeader("Authorization") != "" {
				middleware.SetPrincipal(c, s.principal)
			}
			h(c)
		}
	}

	s.router.GET("/cart", attach(s.handler.Get))
	s.router.DELETE("/cart", attach(s.handler.Clear))
	s.router.POST("/cart/items", attach(s.handler.AddItem))
	s.router.PUT("/cart/items/:id", attach(s.handler.UpdateItem))
	s.router.DELETE("/cart/items/:id", attach(s.handler.RemoveItem))
}

func (s *CartHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

func (s *CartHandlerTestSuite) cartView() *queries.CartView {
	return &queries.CartView{
		ID:            uuid.New(),
		PrincipalID:   s.principal.ID(),
		Lines:         []queries.CartLineView{},
		SubtotalCents: 0,
		UpdatedAt:     time.Now().UTC(),
	}
}

func (s *CartHandlerTestSuite) TestGet() {
	s.Run("success: returns the cart view", func() {
		view := s.cartView()
		s.mockQueries.EXPECT().Get(gomock.Any(), s.principal.ID()).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/cart", nil, "token")

		var response resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.ID, response.ID)
		s.Empty(response.Items)
	})

	s.Run("error: 401 Unauthorized without a principal", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/cart", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *CartHandlerTestSuite) TestAddItem() {
	url := "/cart/items"
	variantID := uuid.New()
	reqBody := map[string]any{"variant_id": variantID.String(), "quantity": 2}

	s.Run("success: adds the item and returns the refreshed cart", func() {
		s.mockCommands.EXPECT().
			AddItem(gomock.Any(), s.principal.ID(), commands.AddItemInput{VariantID: variantID, Quantity: 2}).
			Return(uuid.New(), nil).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), s.principal.ID()).Return(s.cartView(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resdto.CartResponse{})
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []struct {
			name string
			body map[string]any
		}{
			{name: "missing variant id", body: map[string]any{"quantity": 2}},
			{name: "zero quantity", body: map[string]any{"variant_id": variantID.String(), "quantity": 0}},
			{name: "negative quantity", body: map[string]any{"variant_id": variantID.String(), "quantity": -1}},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, tc.body, "token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid_request")
			})
		}
	})

	s.Run("error: 404 Not Found for an unknown variant", func() {
		s.mockCommands.EXPECT().
			AddItem(gomock.Any(), s.principal.ID(), gomock.Any()).
			Return(uuid.Nil, commands.ErrVariantNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "variant_not_found")
	})
}

func (s *CartHandlerTestSuite) TestUpdateItem() {
	lineID := uuid.New()
	url := "/cart/items/" + lineID.String()

	s.Run("success: updates the quantity", func() {
		s.mockCommands.EXPECT().
			UpdateItem(gomock.Any(), s.principal.ID(), lineID, int32(3)).
			Return(nil).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), s.principal.ID()).Return(s.cartView(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"quantity": 3}, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 Bad Request for a malformed line id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/cart/items/not-a-uuid", map[string]any{"quantity": 3}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid_id")
	})

	s.Run("error: 404 Not Found for an unknown line", func() {
		s.mockCommands.EXPECT().
			UpdateItem(gomock.Any(), s.principal.ID(), lineID, int32(3)).
			Return(commands.ErrCartLineNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"quantity": 3}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "cart_item_not_found")
	})
}

func (s *CartHandlerTestSuite) TestRemoveItem() {
	lineID := uuid.New()
	url := "/cart/items/" + lineID.String()

	s.Run("success: removes the line", func() {
		s.mockCommands.EXPECT().
			RemoveItem(gomock.Any(), s.principal.ID(), lineID).
			Return(nil).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), s.principal.ID()).Return(s.cartView(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})
}

func (s *CartHandlerTestSuite) TestClear() {
	s.Run("success: clears the cart", func() {
		s.mockCommands.EXPECT().Clear(gomock.Any(), s.principal.ID()).Return(nil).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), s.principal.ID()).Return(s.cartView(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/cart", nil, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})
}
