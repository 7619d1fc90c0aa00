package bootstrap

import (
	"context"

	"storefront-core/internal/infra/notifier"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"

	"go.uber.org/fx"
)

var KafkaModule = fx.Module("kafka",
	fx.Provide(
		NewNotifier,
	),
)

func NewNotifier(lc fx.Lifecycle, cfg config.Config) commands.Notifier {
	if len(cfg.Kafka.Brokers) == 0 {
		return notifier.Noop{}
	}

	n, cleanup := notifier.NewKafkaNotifier(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})
	return n
}
