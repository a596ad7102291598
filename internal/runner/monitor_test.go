package runner

import (
	"context"
	"testing"
	"time"

	"signal_bot/internal/models"
)

func newTestRunner(bk *fakeBroker) (*Runner, *fakeNotifier) {
	n := &fakeNotifier{}
	return New(testConfig(), bk, n), n
}

func seedGuard(r *Runner, bk *fakeBroker, side models.Side, entry float64) *models.PositionGuard {
	g := &models.PositionGuard{
		Ticket:     1,
		Instrument: "EURUSD",
		Side:       side,
		Entry:      entry,
		Volume:     0.1,
		Point:      0.00001,
		OpenedAt:   time.Now(),
	}
	r.guards[g.Instrument] = g
	bk.positions = []models.Position{{
		Ticket:     g.Ticket,
		Instrument: g.Instrument,
		Side:       side,
		Volume:     g.Volume,
		Entry:      entry,
	}}
	return g
}

func TestBreakEvenAppliedOnce(t *testing.T) {
	bk := newFakeBroker()
	r, _ := newTestRunner(bk)
	g := seedGuard(r, bk, models.SideBuy, 1.0000)

	// профит 0.3% > порога 0.2%
	bk.setQuote(1.0030, 1.0032)

	r.pollOnce(context.Background())
	if len(bk.modified) != 1 {
		t.Fatalf("ожидали один перенос стопа, получили %d", len(bk.modified))
	}
	if !g.BreakEvenSet {
		t.Fatalf("флаг BreakEvenSet не взведён")
	}
	if sl := bk.modified[0]; sl < 1.0-1e-9 || sl > 1.0+1e-9 {
		t.Fatalf("SL должен быть на entry, получили %v", sl)
	}

	// повторный тик с тем же профитом — BE второй раз не ставим
	r.pollOnce(context.Background())
	r.pollOnce(context.Background())
	if len(bk.modified) != 1 {
		t.Fatalf("BE применился повторно: %d вызовов modify", len(bk.modified))
	}
}

func TestBreakEvenNotBeforeThreshold(t *testing.T) {
	bk := newFakeBroker()
	r, _ := newTestRunner(bk)
	seedGuard(r, bk, models.SideBuy, 1.0000)

	// профит 0.1% < порога 0.2%
	bk.setQuote(1.0010, 1.0012)

	r.pollOnce(context.Background())
	if len(bk.modified) != 0 || len(bk.closed) != 0 {
		t.Fatalf("до порога не должно быть действий: modify=%d close=%d", len(bk.modified), len(bk.closed))
	}
}

func TestReversalCloses(t *testing.T) {
	bk := newFakeBroker()
	r, _ := newTestRunner(bk)
	seedGuard(r, bk, models.SideBuy, 1.0000)

	// минус 0.6% > порога 0.5%
	bk.setQuote(0.9940, 0.9942)

	r.pollOnce(context.Background())
	if len(bk.closed) != 1 || bk.closed[0] != 1 {
		t.Fatalf("ожидали закрытие тикета 1, получили %v", bk.closed)
	}
	if len(r.Guards()) != 0 {
		t.Fatalf("guard должен быть снят после закрытия")
	}
}

func TestReversalClosesShortSide(t *testing.T) {
	bk := newFakeBroker()
	r, _ := newTestRunner(bk)
	seedGuard(r, bk, models.SideSell, 100.0)

	// для шорта цена закрытия — ask; рост на 0.6% против позиции
	bk.setQuote(100.58, 100.60)

	r.pollOnce(context.Background())
	if len(bk.closed) != 1 {
		t.Fatalf("ожидали закрытие шорта, получили %v", bk.closed)
	}
}

func TestReversalFiresAfterBreakEven(t *testing.T) {
	bk := newFakeBroker()
	r, _ := newTestRunner(bk)
	g := seedGuard(r, bk, models.SideBuy, 1.0000)
	g.BreakEvenSet = true

	bk.setQuote(0.9940, 0.9942)

	r.pollOnce(context.Background())
	if len(bk.closed) != 1 {
		t.Fatalf("reversal должен закрывать и после BE, получили %v", bk.closed)
	}
	if len(bk.modified) != 0 {
		t.Fatalf("после BE стоп больше не двигаем")
	}
}

func TestModifyFailureKeepsState(t *testing.T) {
	bk := newFakeBroker()
	bk.failModify = true
	r, _ := newTestRunner(bk)
	g := seedGuard(r, bk, models.SideBuy, 1.0000)

	bk.setQuote(1.0030, 1.0032)

	r.pollOnce(context.Background())
	if g.BreakEvenSet {
		t.Fatalf("флаг не должен взводиться при отказе брокера")
	}

	// следующий тик — пробуем ещё раз, уже успешно
	bk.failModify = false
	r.pollOnce(context.Background())
	if !g.BreakEvenSet || len(bk.modified) != 1 {
		t.Fatalf("BE должен примениться после восстановления: set=%v modify=%d", g.BreakEvenSet, len(bk.modified))
	}
}

func TestCloseFailureKeepsGuard(t *testing.T) {
	bk := newFakeBroker()
	bk.failClose = true
	r, _ := newTestRunner(bk)
	seedGuard(r, bk, models.SideBuy, 1.0000)

	bk.setQuote(0.9940, 0.9942)

	r.pollOnce(context.Background())
	if len(r.Guards()) != 1 {
		t.Fatalf("guard должен остаться для переоценки на следующем тике")
	}
}

func TestGuardDroppedWhenPositionGone(t *testing.T) {
	bk := newFakeBroker()
	r, _ := newTestRunner(bk)
	seedGuard(r, bk, models.SideBuy, 1.0000)
	bk.positions = nil // стоп-аут на стороне брокера
	bk.setQuote(1.0010, 1.0012)

	r.pollOnce(context.Background())
	if len(r.Guards()) != 0 {
		t.Fatalf("guard закрытой позиции должен сниматься")
	}
	if len(bk.modified) != 0 || len(bk.closed) != 0 {
		t.Fatalf("по закрытой позиции не должно быть команд")
	}
}

func TestPositionsErrorLeavesStateUntouched(t *testing.T) {
	bk := newFakeBroker()
	r, _ := newTestRunner(bk)
	g := seedGuard(r, bk, models.SideBuy, 1.0000)
	bk.failPositions = true
	bk.setQuote(0.9940, 0.9942)

	r.pollOnce(context.Background())
	if len(r.Guards()) != 1 || g.BreakEvenSet {
		t.Fatalf("при недоступном брокере стейт не меняется")
	}
}

func TestDecideGuardNoQuoteNoAction(t *testing.T) {
	g := &models.PositionGuard{Instrument: "EURUSD", Side: models.SideBuy, Entry: 1.0}
	dec := decideGuard(g, 0, testConfig().Risk)
	if dec.Close || dec.MoveSL {
		t.Fatalf("без котировки решений быть не должно: %+v", dec)
	}
}
