package telegram

import (
	"context"

	"signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/internal/runner"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewTelegram, // func(*config.Config, runner.Broker, chan models.Signal) (*service.Telegram, error)
		),

		// Адаптер: *service.Telegram -> runner.TelegramNotifier
		fx.Provide(
			func(t *service.Telegram) runner.TelegramNotifier {
				return t
			},
		),

		// Запуск long-polling через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram, ctx context.Context) {
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						return t.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
