package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"signal_bot/internal/models"
)

type positionPayload struct {
	Ticket   int64   `json:"ticket"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"` // buy/sell
	Volume   float64 `json:"volume"`
	OpenPx   float64 `json:"priceOpen"`
	SL       float64 `json:"sl"`
	OpenedAt int64   `json:"timeOpen"` // unix ms
}

// OpenPositions вытаскивает открытые позиции с гейтвея и мапит их
// в упрощённую структуру для монитора и команды /positions.
func (c *Client) OpenPositions(ctx context.Context) ([]models.Position, error) {
	data, err := c.do(ctx, "positions", http.MethodGet, "/api/v1/positions", nil)
	if err != nil {
		return nil, err
	}

	var payload []positionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("positions decode: %w", err)
	}

	res := make([]models.Position, 0, len(payload))
	for _, p := range payload {
		if p.Volume <= 0 {
			continue
		}
		res = append(res, models.Position{
			Ticket:     p.Ticket,
			Instrument: p.Symbol,
			Side:       sideFromGateway(p.Side),
			Volume:     p.Volume,
			Entry:      p.OpenPx,
			SL:         p.SL,
			OpenedAt:   time.UnixMilli(p.OpenedAt),
		})
	}
	return res, nil
}
