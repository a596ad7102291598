package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"signal_bot/internal/models"
)

func (c *Client) setPrice(t models.Tick) {
	c.mu.Lock()
	c.prices[t.Instrument] = t
	c.mu.Unlock()
}

// LastPrice возвращает котировку из WS-кеша; свежесть проверяет вызывающий.
func (c *Client) LastPrice(symbol string) (models.Tick, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.prices[symbol]
	return t, ok
}

// EnsureStream поднимает WS-стрим котировок по инструменту (один раз).
func (c *Client) EnsureStream(ctx context.Context, symbol string) {
	c.mu.Lock()
	if _, ok := c.streams[symbol]; ok {
		c.mu.Unlock()
		return
	}
	c.streams[symbol] = struct{}{}
	c.mu.Unlock()

	go c.streamTicks(ctx, symbol)
}

func (c *Client) streamTicks(ctx context.Context, symbol string) {
	defer func() {
		c.mu.Lock()
		delete(c.streams, symbol)
		c.mu.Unlock()
	}()

	retry := 0
	for {
		conn, _, err := c.wsDialer.Dial(c.wsURL, nil)
		if err != nil {
			retry++
			if retry > 8 {
				log.Printf("[STREAM] %s: отключаемся после %d неудачных подключений", symbol, retry)
				return
			}
			time.Sleep(time.Duration(300*retry) * time.Millisecond)
			continue
		}
		retry = 0
		_ = conn.WriteJSON(map[string]any{"method": "sub.tick", "param": map[string]string{"symbol": symbol}})

		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(15 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-stopPing:
					return
				case <-ctx.Done():
					return
				case <-t.C:
					_ = conn.WriteJSON(map[string]string{"method": "ping"})
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				close(stopPing)
				_ = conn.Close()
				break
			}
			var frame struct {
				Channel string `json:"channel"`
				Data    struct {
					Symbol string  `json:"symbol"`
					Bid    float64 `json:"bid"`
					Ask    float64 `json:"ask"`
					Time   int64   `json:"time"`
				} `json:"data"`
			}
			if err := json.Unmarshal(msg, &frame); err == nil && frame.Channel == "push.tick" {
				if frame.Data.Bid > 0 || frame.Data.Ask > 0 {
					at := time.UnixMilli(frame.Data.Time)
					if frame.Data.Time == 0 {
						at = time.Now()
					}
					c.setPrice(models.Tick{
						Instrument: symbol,
						Bid:        frame.Data.Bid,
						Ask:        frame.Data.Ask,
						At:         at,
					})
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(1 * time.Second)
		}
	}
}
