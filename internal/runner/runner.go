package runner

import (
	"context"
	"log"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramNotifier interface {
	Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error)
	SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error)
}

// Broker — торговый гейтвей глазами раннера.
type Broker interface {
	Account(ctx context.Context) (models.Account, error)
	SymbolMeta(ctx context.Context, symbol string) (models.SymbolMeta, error)
	Tick(ctx context.Context, symbol string) (models.Tick, error)
	PlaceMarket(ctx context.Context, symbol string, side models.Side, volume float64) (int64, error)
	ModifyStop(ctx context.Context, ticket int64, sl float64) error
	ClosePosition(ctx context.Context, ticket int64) error
	OpenPositions(ctx context.Context) ([]models.Position, error)
	LastPrice(symbol string) (models.Tick, bool)
	EnsureStream(ctx context.Context, symbol string)
}

// Runner превращает сигналы в ордера и сопровождает открытые позиции
// (безубыток + закрытие по развороту). Всё исполняется последовательно:
// сигналы из канала и тики монитора не гоняются за общим стейтом.
type Runner struct {
	cfg *config.Config
	bk  Broker
	n   TelegramNotifier

	mu     sync.Mutex
	guards map[string]*models.PositionGuard // instrument -> guard
}

func New(cfg *config.Config, bk Broker, n TelegramNotifier) *Runner {
	return &Runner{
		cfg:    cfg,
		bk:     bk,
		n:      n,
		guards: make(map[string]*models.PositionGuard),
	}
}

// OnSignal обрабатывает один распарсенный сигнал.
// Инвариант: на инструмент не больше одной открытой позиции; повторный
// сигнал не ставится в очередь и не мёржится — просто пропускаем.
func (r *Runner) OnSignal(ctx context.Context, sig models.Signal) {
	chatID := r.cfg.Telegram.ChannelID

	if r.hasGuard(sig.Instrument) {
		log.Printf("[SIGNAL] %s %s — позиция уже сопровождается, пропуск", sig.Instrument, sig.Side)
		r.n.SendF(ctx, chatID, "⚠️ [%s] Позиция уже открыта, сигнал пропущен", sig.Instrument)
		return
	}

	// позиция могла быть открыта вручную мимо бота — проверяем у брокера
	positions, err := r.bk.OpenPositions(ctx)
	if err != nil {
		log.Printf("[SIGNAL] %s: ошибка чтения позиций: %v", sig.Instrument, err)
		r.n.SendF(ctx, chatID, "❗️ [%s] Ошибка чтения позиций: %v", sig.Instrument, err)
		return
	}
	for _, p := range positions {
		if p.Instrument == sig.Instrument {
			log.Printf("[SIGNAL] %s — уже есть открытая позиция #%d, пропуск", sig.Instrument, p.Ticket)
			r.n.SendF(ctx, chatID, "⚠️ [%s] Позиция уже открыта (#%d), сигнал пропущен", sig.Instrument, p.Ticket)
			return
		}
	}

	account, err := r.bk.Account(ctx)
	if err != nil {
		r.n.SendF(ctx, chatID, "❗️ [%s] Ошибка получения счёта: %v", sig.Instrument, err)
		return
	}

	meta, err := r.bk.SymbolMeta(ctx, sig.Instrument)
	if err != nil {
		r.n.SendF(ctx, chatID, "❗️ [%s] Ошибка параметров инструмента: %v", sig.Instrument, err)
		return
	}

	lot := CalcLot(account.Balance, r.cfg.Risk.RiskPct, r.cfg.Risk.RiskPerLot, meta.LotStep, meta.MinLot)
	if lot <= 0 {
		r.n.SendF(ctx, chatID,
			"⛔️ [%s] Нулевой объём (balance=%.2f risk=%.2f%%) — сделки не будет",
			sig.Instrument, account.Balance, r.cfg.Risk.RiskPct)
		return
	}
	if meta.MaxLot > 0 && lot > meta.MaxLot {
		lot = meta.MaxLot
	}

	ticket, err := r.bk.PlaceMarket(ctx, sig.Instrument, sig.Side, lot)
	if err != nil {
		log.Printf("[ORDER] %s %s: %v", sig.Instrument, sig.Side, err)
		r.n.SendF(ctx, chatID, "❗️ [%s] Ошибка открытия ордера: %v", sig.Instrument, err)
		return
	}

	entry := r.entryPrice(ctx, sig, ticket)

	r.mu.Lock()
	r.guards[sig.Instrument] = &models.PositionGuard{
		Ticket:     ticket,
		Instrument: sig.Instrument,
		Side:       sig.Side,
		Entry:      entry,
		Volume:     lot,
		Point:      meta.Point,
		OpenedAt:   time.Now(),
	}
	r.mu.Unlock()

	r.bk.EnsureStream(ctx, sig.Instrument)

	tf := sig.Timeframe
	if tf == "" {
		tf = "-"
	}
	r.n.SendF(ctx, chatID,
		"✅ [%s] OPEN %-4s @ %.5f | lot=%.2f tf=%s (ticket=%d)",
		sig.Instrument, sig.Side, entry, lot, tf, ticket,
	)
}

// entryPrice уточняет цену входа по открытой позиции, иначе по тикеру.
func (r *Runner) entryPrice(ctx context.Context, sig models.Signal, ticket int64) float64 {
	if positions, err := r.bk.OpenPositions(ctx); err == nil {
		for _, p := range positions {
			if p.Ticket == ticket && p.Entry > 0 {
				return p.Entry
			}
		}
	}
	if tick, err := r.bk.Tick(ctx, sig.Instrument); err == nil {
		if sig.Side == models.SideBuy {
			return tick.Ask
		}
		return tick.Bid
	}
	return 0
}

func (r *Runner) hasGuard(instrument string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.guards[instrument]
	return ok
}

func (r *Runner) dropGuard(instrument string) {
	r.mu.Lock()
	delete(r.guards, instrument)
	r.mu.Unlock()
}

func (r *Runner) guardsSnapshot() []*models.PositionGuard {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*models.PositionGuard, 0, len(r.guards))
	for _, g := range r.guards {
		res = append(res, g)
	}
	return res
}

// Guards — открытые сопровождения (для диагностики).
func (r *Runner) Guards() []models.PositionGuard {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]models.PositionGuard, 0, len(r.guards))
	for _, g := range r.guards {
		res = append(res, *g)
	}
	return res
}
