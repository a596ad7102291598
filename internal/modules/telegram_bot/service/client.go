package service

import (
	"context"
	"fmt"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/runner"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram слушает канал с сигналами и отвечает на диагностические команды.
type Telegram struct {
	bot  *tgbot.BotAPI
	cfg  *config.Config
	bk   runner.Broker
	sigs chan<- models.Signal
}

func NewTelegram(cfg *config.Config, bk runner.Broker, sigs chan models.Signal) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	return &Telegram{
		bot:  b,
		cfg:  cfg,
		bk:   bk,
		sigs: sigs,
	}, nil
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

func (t *Telegram) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return t.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

// Start: long-polling обновлений канала.
func (t *Telegram) Start(ctx context.Context) error {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "channel_post"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				t.handleUpdate(ctx, upd)
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}
