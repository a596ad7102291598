package runner

import (
	"context"
	"log"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// maxTickAge — старше этого WS-кеш не считаем котировкой, идём в REST.
const maxTickAge = 10 * time.Second

// MonitorLoop сопровождает открытые позиции с шагом poll_interval.
func (r *Runner) MonitorLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Monitor.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce(ctx)
		}
	}
}

func (r *Runner) pollOnce(ctx context.Context) {
	guards := r.guardsSnapshot()
	if len(guards) == 0 {
		return
	}

	positions, err := r.bk.OpenPositions(ctx)
	if err != nil {
		// брокер недоступен: стейт не трогаем, дооценим на следующем тике
		log.Printf("[MONITOR] ошибка чтения позиций: %v", err)
		return
	}
	byTicket := make(map[int64]models.Position, len(positions))
	for _, p := range positions {
		byTicket[p.Ticket] = p
	}

	for _, g := range guards {
		pos, ok := byTicket[g.Ticket]
		if !ok {
			// закрыли извне (стоп-аут, руками) — снимаем сопровождение
			log.Printf("[MONITOR] #%d %s больше не открыт", g.Ticket, g.Instrument)
			r.dropGuard(g.Instrument)
			continue
		}
		// синк из брокера: объём мог уменьшиться, entry уточниться
		if pos.Entry > 0 {
			g.Entry = pos.Entry
		}
		if pos.Volume > 0 {
			g.Volume = pos.Volume
		}

		px := r.currentPrice(ctx, g)
		if px <= 0 {
			continue
		}

		dec := decideGuard(g, px, r.cfg.Risk)
		r.applyDecision(ctx, g, px, dec)
	}
}

// currentPrice — цена закрытия позиции: bid для buy, ask для sell.
func (r *Runner) currentPrice(ctx context.Context, g *models.PositionGuard) float64 {
	tick, ok := r.bk.LastPrice(g.Instrument)
	if !ok || time.Since(tick.At) > maxTickAge {
		var err error
		tick, err = r.bk.Tick(ctx, g.Instrument)
		if err != nil {
			log.Printf("[MONITOR] %s: нет котировки: %v", g.Instrument, err)
			return 0
		}
	}
	if g.Side == models.SideBuy {
		return tick.Bid
	}
	return tick.Ask
}

// decideGuard — чистая оценка позиции на текущем тике.
// Порядок фиксированный: сперва reversal-close, потом break-even.
// Если цена ушла за порог против позиции — закрываем сразу, в том числе
// когда BE уже стоял.
func decideGuard(g *models.PositionGuard, px float64, risk config.Risk) models.GuardDecision {
	if g.Entry <= 0 || px <= 0 {
		return models.GuardDecision{}
	}

	profit := px - g.Entry
	if g.Side == models.SideSell {
		profit = -profit
	}
	adverse := -profit

	if risk.ReversalPct > 0 && adverse >= g.Entry*risk.ReversalPct/100.0 {
		return models.GuardDecision{Close: true, Reason: "REVERSAL"}
	}

	if !g.BreakEvenSet && risk.BreakEvenPct > 0 && profit >= g.Entry*risk.BreakEvenPct/100.0 {
		sl := g.Entry
		if risk.BreakEvenOffsetPct != 0 {
			off := g.Entry * risk.BreakEvenOffsetPct / 100.0
			if g.Side == models.SideBuy {
				sl = g.Entry + off
			} else {
				sl = g.Entry - off
			}
		}
		return models.GuardDecision{MoveSL: true, NewSL: sl, Reason: "BREAK_EVEN"}
	}

	return models.GuardDecision{}
}

// applyDecision исполняет решение. Флаги стейта меняем только после
// успешного вызова брокера: отказ — лог и переоценка на следующем тике.
func (r *Runner) applyDecision(ctx context.Context, g *models.PositionGuard, px float64, dec models.GuardDecision) {
	chatID := r.cfg.Telegram.ChannelID

	if dec.Close {
		if err := r.bk.ClosePosition(ctx, g.Ticket); err != nil {
			log.Printf("[MONITOR] #%d %s close: %v", g.Ticket, g.Instrument, err)
			r.n.SendF(ctx, chatID, "❗️ [%s] Не удалось закрыть позицию: %v", g.Instrument, err)
			return
		}
		r.dropGuard(g.Instrument)
		r.n.SendF(ctx, chatID,
			"📉 [%s] Закрыто по развороту @ %.5f (entry=%.5f, ticket=%d)",
			g.Instrument, px, g.Entry, g.Ticket,
		)
		return
	}

	if dec.MoveSL {
		sl := dec.NewSL
		if g.Point > 0 {
			if g.Side == models.SideBuy {
				sl = helper.RoundDownToTick(sl, g.Point)
			} else {
				sl = helper.RoundUpToTick(sl, g.Point)
			}
		}
		if err := r.bk.ModifyStop(ctx, g.Ticket, sl); err != nil {
			log.Printf("[MONITOR] #%d %s move SL: %v", g.Ticket, g.Instrument, err)
			r.n.SendF(ctx, chatID, "❗️ [%s] Не удалось перенести стоп: %v", g.Instrument, err)
			return
		}
		g.BreakEvenSet = true
		r.n.SendF(ctx, chatID,
			"🛡 [%s] Стоп в безубытке: SL=%.5f (entry=%.5f, ticket=%d)",
			g.Instrument, sl, g.Entry, g.Ticket,
		)
	}
}
