package runner

import (
	"context"
	"fmt"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeNotifier struct {
	msgs []string
}

func (n *fakeNotifier) Send(_ context.Context, _ int64, msg string) (tgbot.Message, error) {
	n.msgs = append(n.msgs, msg)
	return tgbot.Message{}, nil
}

func (n *fakeNotifier) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return n.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

type placedOrder struct {
	Symbol string
	Side   models.Side
	Volume float64
}

type fakeBroker struct {
	balance   float64
	meta      models.SymbolMeta
	tick      models.Tick
	positions []models.Position

	placed   []placedOrder
	modified []float64
	closed   []int64

	failPositions bool
	failModify    bool
	failClose     bool
	failPlace     bool

	nextTicket int64
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		balance: 1000,
		meta: models.SymbolMeta{
			Symbol:  "EURUSD",
			Digits:  5,
			Point:   0.00001,
			MinLot:  0.01,
			LotStep: 0.01,
			MaxLot:  100,
		},
		nextTicket: 100,
	}
}

func (b *fakeBroker) Account(context.Context) (models.Account, error) {
	return models.Account{Balance: b.balance, Equity: b.balance, Currency: "USD"}, nil
}

func (b *fakeBroker) SymbolMeta(_ context.Context, symbol string) (models.SymbolMeta, error) {
	m := b.meta
	m.Symbol = symbol
	return m, nil
}

func (b *fakeBroker) Tick(_ context.Context, symbol string) (models.Tick, error) {
	if b.tick.Bid <= 0 && b.tick.Ask <= 0 {
		return models.Tick{}, fmt.Errorf("tick %s: empty quote", symbol)
	}
	t := b.tick
	t.Instrument = symbol
	return t, nil
}

func (b *fakeBroker) PlaceMarket(_ context.Context, symbol string, side models.Side, volume float64) (int64, error) {
	if b.failPlace {
		return 0, fmt.Errorf("gateway error: code=10015 msg=rejected")
	}
	b.placed = append(b.placed, placedOrder{Symbol: symbol, Side: side, Volume: volume})
	b.nextTicket++
	entry := b.tick.Ask
	if side == models.SideSell {
		entry = b.tick.Bid
	}
	b.positions = append(b.positions, models.Position{
		Ticket:     b.nextTicket,
		Instrument: symbol,
		Side:       side,
		Volume:     volume,
		Entry:      entry,
		OpenedAt:   time.Now(),
	})
	return b.nextTicket, nil
}

func (b *fakeBroker) ModifyStop(_ context.Context, ticket int64, sl float64) error {
	if b.failModify {
		return fmt.Errorf("gateway error: code=10016 msg=modify rejected")
	}
	b.modified = append(b.modified, sl)
	return nil
}

func (b *fakeBroker) ClosePosition(_ context.Context, ticket int64) error {
	if b.failClose {
		return fmt.Errorf("gateway error: code=10017 msg=close rejected")
	}
	b.closed = append(b.closed, ticket)
	next := b.positions[:0]
	for _, p := range b.positions {
		if p.Ticket != ticket {
			next = append(next, p)
		}
	}
	b.positions = next
	return nil
}

func (b *fakeBroker) OpenPositions(context.Context) ([]models.Position, error) {
	if b.failPositions {
		return nil, fmt.Errorf("gateway error: code=500 msg=unavailable")
	}
	res := make([]models.Position, len(b.positions))
	copy(res, b.positions)
	return res, nil
}

func (b *fakeBroker) LastPrice(symbol string) (models.Tick, bool) {
	if b.tick.Bid <= 0 && b.tick.Ask <= 0 {
		return models.Tick{}, false
	}
	t := b.tick
	t.Instrument = symbol
	return t, true
}

func (b *fakeBroker) EnsureStream(context.Context, string) {}

func (b *fakeBroker) setQuote(bid, ask float64) {
	b.tick = models.Tick{Bid: bid, Ask: ask, At: time.Now()}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Telegram.ChannelID = 42
	cfg.Risk = config.Risk{
		RiskPct:      1.0,
		RiskPerLot:   100.0,
		BreakEvenPct: 0.2,
		ReversalPct:  0.5,
	}
	cfg.Monitor.PollInterval = 5 * time.Second
	return cfg
}
