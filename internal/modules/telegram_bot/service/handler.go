package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"signal_bot/internal/signal"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (t *Telegram) handleUpdate(ctx context.Context, upd tgbot.Update) {
	msg := upd.Message
	if msg == nil {
		msg = upd.ChannelPost
	}
	if msg == nil || msg.Chat == nil {
		return
	}
	// реагируем только на сконфигурированный канал
	if msg.Chat.ID != t.cfg.Telegram.ChannelID {
		return
	}

	if msg.IsCommand() {
		t.handleCommand(ctx, msg)
		return
	}

	sig, ok := signal.Parse(msg.Text)
	if !ok {
		// не сигнал — молча пропускаем, канал шлёт что угодно
		return
	}

	select {
	case t.sigs <- sig:
		log.Printf("[TG] сигнал %s %s tf=%q", sig.Side, sig.Instrument, sig.Timeframe)
		t.SendF(ctx, msg.Chat.ID, "📨 Сигнал принят: %s %s", strings.ToUpper(string(sig.Side)), sig.Instrument)
	default:
		log.Printf("[TG] очередь сигналов забита, дроп: %s %s", sig.Side, sig.Instrument)
	}
}

func (t *Telegram) handleCommand(ctx context.Context, msg *tgbot.Message) {
	switch msg.Command() {
	case "positions":
		go t.handlePositions(ctx, msg.Chat.ID)
	case "balance":
		go t.handleBalance(ctx, msg.Chat.ID)
	case "ping":
		t.Send(ctx, msg.Chat.ID, "pong")
	}
}

// /positions — открытые позиции с гейтвея.
func (t *Telegram) handlePositions(ctx context.Context, chatID int64) {
	positions, err := t.bk.OpenPositions(ctx)
	if err != nil {
		t.SendF(ctx, chatID, "❗️ Ошибка получения позиций: %v", err)
		return
	}
	if len(positions) == 0 {
		t.Send(ctx, chatID, "📭 Открытых позиций нет")
		return
	}

	var b strings.Builder
	b.WriteString("📊 Открытые позиции:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- #%d %s [%s] vol=%.2f @ %.5f SL=%.5f\n",
			p.Ticket, p.Instrument, strings.ToUpper(string(p.Side)), p.Volume, p.Entry, p.SL)
	}
	t.Send(ctx, chatID, b.String())
}

// /balance — сводка по счёту.
func (t *Telegram) handleBalance(ctx context.Context, chatID int64) {
	account, err := t.bk.Account(ctx)
	if err != nil {
		t.SendF(ctx, chatID, "❗️ Ошибка получения счёта: %v", err)
		return
	}
	t.SendF(ctx, chatID, "💰 Баланс: %.2f %s | Equity: %.2f",
		account.Balance, account.Currency, account.Equity)
}
