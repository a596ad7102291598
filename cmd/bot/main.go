package main

import (
	"context"
	"log"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/broker"
	"signal_bot/internal/modules/config"

	telegram "signal_bot/internal/modules/telegram_bot"

	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init("signal_bot"); err != nil {
		log.Fatal(err)
	}
	logger.Info("starting signal bot")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			func() chan models.Signal {
				return make(chan models.Signal, 64)
			},
		),
		config.Module(),
		broker.Module(),
		runner.Module(),
		telegram.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Tracing.Host == "" {
		return nil
	}
	tracing.SetServiceName("signal_bot")
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
