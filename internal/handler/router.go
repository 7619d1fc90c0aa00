package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-core/internal/handler/api"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	cartHandler *api.CartHandler,
	orderHandler *api.OrderHandler,
	discountHandler *api.DiscountHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, cartHandler, orderHandler, discountHandler, authMiddleware, rateLimiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	cartHandler *api.CartHandler,
	orderHandler *api.OrderHandler,
	discountHandler *api.DiscountHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			optional := auth.Group("")
			optional.Use(authMiddleware.OptionalAuth())
			addRoutes(optional, []route{
				{Method: http.MethodPost, Path: "/register", Handler: authHandler.Register},
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
			})

			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/guest", Handler: authHandler.Guest},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		cart := apiGroup.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			addRoutes(cart, []route{
				{Method: http.MethodGet, Path: "", Handler: cartHandler.Get},
				{Method: http.MethodDelete, Path: "", Handler: cartHandler.Clear},
				{Method: http.MethodPost, Path: "/items", Handler: cartHandler.AddItem},
				{Method: http.MethodPut, Path: "/items/:id", Handler: cartHandler.UpdateItem},
				{Method: http.MethodDelete, Path: "/items/:id", Handler: cartHandler.RemoveItem},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "/checkout", Handler: orderHandler.Checkout, Mw: []gin.HandlerFunc{rateLimiter.LimitCheckout()}},
				{Method: http.MethodGet, Path: "", Handler: orderHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.Get},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			addRoutes(admin, []route{
				{Method: http.MethodPut, Path: "/orders/:id/status", Handler: orderHandler.UpdateStatus},
			})
		}

		discounts := apiGroup.Group("/discounts")
		discounts.Use(authMiddleware.RequireAuth())
		{
			addRoutes(discounts, []route{
				{Method: http.MethodPost, Path: "/validate", Handler: discountHandler.Validate},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
