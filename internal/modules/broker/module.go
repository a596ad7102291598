package broker

import (
	"signal_bot/internal/modules/broker/service"
	"signal_bot/internal/runner"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("broker",
		fx.Provide(
			service.NewClient, // *service.Client
		),
		// Адаптер: *service.Client -> runner.Broker
		fx.Provide(
			func(c *service.Client) runner.Broker {
				return c
			},
		),
	)
}
