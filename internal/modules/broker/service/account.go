package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"signal_bot/internal/models"
)

func (c *Client) Account(ctx context.Context) (models.Account, error) {
	data, err := c.do(ctx, "account", http.MethodGet, "/api/v1/account", nil)
	if err != nil {
		return models.Account{}, err
	}

	var payload struct {
		Balance  float64 `json:"balance"`
		Equity   float64 `json:"equity"`
		Currency string  `json:"currency"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Account{}, fmt.Errorf("account decode: %w", err)
	}
	return models.Account{
		Balance:  payload.Balance,
		Equity:   payload.Equity,
		Currency: payload.Currency,
	}, nil
}

func (c *Client) SymbolMeta(ctx context.Context, symbol string) (models.SymbolMeta, error) {
	data, err := c.do(ctx, "symbol", http.MethodGet,
		"/api/v1/symbol?symbol="+url.QueryEscape(symbol), nil)
	if err != nil {
		return models.SymbolMeta{}, err
	}

	var payload struct {
		Symbol  string  `json:"symbol"`
		Digits  int     `json:"digits"`
		Point   float64 `json:"point"`
		MinLot  float64 `json:"volumeMin"`
		LotStep float64 `json:"volumeStep"`
		MaxLot  float64 `json:"volumeMax"`
		Visible bool    `json:"visible"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.SymbolMeta{}, fmt.Errorf("symbol decode: %w", err)
	}
	if payload.LotStep <= 0 {
		return models.SymbolMeta{}, fmt.Errorf("symbol %s: volumeStep <= 0", symbol)
	}
	if payload.MinLot <= 0 {
		return models.SymbolMeta{}, fmt.Errorf("symbol %s: volumeMin <= 0", symbol)
	}
	return models.SymbolMeta{
		Symbol:  payload.Symbol,
		Digits:  payload.Digits,
		Point:   payload.Point,
		MinLot:  payload.MinLot,
		LotStep: payload.LotStep,
		MaxLot:  payload.MaxLot,
	}, nil
}

// Tick — котировка через REST, fallback когда WS-кеш пуст или протух.
func (c *Client) Tick(ctx context.Context, symbol string) (models.Tick, error) {
	data, err := c.do(ctx, "tick", http.MethodGet,
		"/api/v1/tick?symbol="+url.QueryEscape(symbol), nil)
	if err != nil {
		return models.Tick{}, err
	}

	var payload struct {
		Bid  float64 `json:"bid"`
		Ask  float64 `json:"ask"`
		Time int64   `json:"time"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Tick{}, fmt.Errorf("tick decode: %w", err)
	}
	if payload.Bid <= 0 && payload.Ask <= 0 {
		return models.Tick{}, fmt.Errorf("tick %s: empty quote", symbol)
	}
	tick := models.Tick{
		Instrument: symbol,
		Bid:        payload.Bid,
		Ask:        payload.Ask,
		At:         time.UnixMilli(payload.Time),
	}
	c.setPrice(tick)
	return tick, nil
}
