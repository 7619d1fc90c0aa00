package components

import (
	"storefront-core/internal/infra/gateway"
	"storefront-core/internal/infra/readstore"
	"storefront-core/internal/infra/uow"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		// UnitOfWork and its validation reads
		uow.NewPostgresUoW,
		func(u shared.UnitOfWork) shared.CommandReads { return u.CommandReads() },
		// Query-side read store
		readstore.NewStorefrontReadStore,
		// Payment provider
		fx.Annotate(
			gateway.NewHTTPPaymentGateway,
			fx.As(new(commands.PaymentGateway)),
		),
	),
)
