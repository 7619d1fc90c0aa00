package components

import (
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
	"storefront-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	shared.NewIdentityResolver,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(u shared.UnitOfWork, clk clock.Clock, cfg config.CheckoutConfig) commands.InventoryLedger {
			return commands.NewInventoryLedger(u, clk, cfg.ReservationTTL)
		},
		commands.NewCartCommands,
		commands.NewCheckoutCommands,
		commands.NewOrderCommands,
		commands.NewDiscountCommands,
		commands.NewAuthCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCartQueries,
		queries.NewOrderQueries,
		queries.NewPrincipalQueries,
	),
)
