package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"signal_bot/internal/models"
)

// PlaceMarket открывает рыночный ордер и возвращает тикет позиции.
func (c *Client) PlaceMarket(
	ctx context.Context,
	symbol string,
	side models.Side,
	volume float64,
) (int64, error) {
	if volume <= 0 {
		return 0, fmt.Errorf("PlaceMarket: volume <= 0")
	}

	var dir string
	switch side {
	case models.SideBuy:
		dir = "buy"
	case models.SideSell:
		dir = "sell"
	default:
		return 0, fmt.Errorf("PlaceMarket: unsupported side=%q", side)
	}

	body := map[string]any{
		"symbol":    symbol,
		"side":      dir,
		"volume":    volume,
		"deviation": c.cfg.Order.Deviation,
		"magic":     c.cfg.Order.Magic,
		"comment":   c.cfg.Order.Comment,
	}

	data, err := c.do(ctx, "order.market", http.MethodPost, "/api/v1/order/market", body)
	if err != nil {
		return 0, err
	}

	var payload struct {
		Ticket  int64  `json:"ticket"`
		Retcode int    `json:"retcode"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("PlaceMarket decode: %w", err)
	}
	if payload.Ticket == 0 {
		return 0, fmt.Errorf("PlaceMarket rejected: retcode=%d msg=%s", payload.Retcode, payload.Message)
	}
	return payload.Ticket, nil
}

// ModifyStop двигает стоп-лосс позиции (перенос в безубыток).
func (c *Client) ModifyStop(ctx context.Context, ticket int64, sl float64) error {
	if sl <= 0 {
		return fmt.Errorf("ModifyStop: sl <= 0")
	}
	body := map[string]any{
		"ticket": ticket,
		"sl":     sl,
	}
	data, err := c.do(ctx, "position.modify", http.MethodPost, "/api/v1/position/modify", body)
	if err != nil {
		return err
	}

	var payload struct {
		Retcode int    `json:"retcode"`
		Message string `json:"message"`
		Done    bool   `json:"done"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("ModifyStop decode: %w", err)
	}
	if !payload.Done {
		return fmt.Errorf("ModifyStop rejected: retcode=%d msg=%s", payload.Retcode, payload.Message)
	}
	return nil
}

// ClosePosition закрывает позицию по рынку целиком.
func (c *Client) ClosePosition(ctx context.Context, ticket int64) error {
	body := map[string]any{
		"ticket":    ticket,
		"deviation": c.cfg.Order.Deviation,
		"comment":   "reversal close",
	}
	data, err := c.do(ctx, "position.close", http.MethodPost, "/api/v1/position/close", body)
	if err != nil {
		return err
	}

	var payload struct {
		Retcode int    `json:"retcode"`
		Message string `json:"message"`
		Done    bool   `json:"done"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("ClosePosition decode: %w", err)
	}
	if !payload.Done {
		return fmt.Errorf("ClosePosition rejected: retcode=%d msg=%s", payload.Retcode, payload.Message)
	}
	return nil
}

func sideFromGateway(raw string) models.Side {
	if strings.EqualFold(raw, "sell") {
		return models.SideSell
	}
	return models.SideBuy
}
