package bootstrap

import (
	"context"

	"storefront-core/internal/scheduler"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		scheduler.NewReconciler,
	),
	fx.Invoke(StartReconciler),
)

func StartReconciler(lc fx.Lifecycle, r *scheduler.Reconciler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			r.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			r.Stop()
			return nil
		},
	})
}
