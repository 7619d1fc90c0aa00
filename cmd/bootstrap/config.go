package bootstrap

import (
	"storefront-core/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.CheckoutConfig { return cfg.Checkout },
		func(cfg config.Config) config.PaymentConfig { return cfg.Payment },
		func(cfg config.Config) config.ReconcileConfig { return cfg.Reconcile },
		func(cfg config.Config) config.RateLimitConfig { return cfg.RateLimit },
	),
)
