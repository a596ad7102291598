package runner

import (
	"context"

	"signal_bot/internal/models"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			New, // *Runner
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			r *Runner,
			sigs chan models.Signal,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					// сигналы и монитор — два источника событий,
					// каждый обрабатывается последовательно
					go func() {
						for {
							select {
							case <-ctx.Done():
								return
							case sig := <-sigs:
								r.OnSignal(ctx, sig)
							}
						}
					}()
					go r.MonitorLoop(ctx)
					return nil
				},
			})
		}),
	)
}
