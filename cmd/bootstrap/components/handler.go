package components

import (
	"storefront-core/internal/handler"
	"storefront-core/internal/handler/api"
	"storefront-core/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCartHandler,
		api.NewOrderHandler,
		api.NewDiscountHandler,
		middleware.NewAuthMiddleware,
		middleware.NewRateLimiter,
	),
	fx.Invoke(handler.NewRouter),
)
