package bootstrap

import (
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTManager,
	),
)

func NewJWTManager(cfg config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Duration, cfg.JWT.GuestDuration)
}
