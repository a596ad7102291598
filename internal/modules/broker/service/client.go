package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/opentracing/opentracing-go"
)

// Client — REST+WS клиент MT5-гейтвея. Все торговые вызовы подписываются
// HMAC-SHA256, котировки кешируются из websocket-стрима.
type Client struct {
	cfg *config.Config

	http     *http.Client
	wsDialer *websocket.Dialer

	baseURL   string
	wsURL     string
	apiKey    string
	apiSecret string

	mu      sync.RWMutex
	prices  map[string]models.Tick
	streams map[string]struct{} // инструменты с запущенным стримом
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: 10 * time.Second},
		wsDialer:  &websocket.Dialer{},
		baseURL:   cfg.Broker.BaseURL,
		wsURL:     cfg.Broker.WSURL,
		apiKey:    cfg.Broker.APIKey,
		apiSecret: cfg.Broker.APISecret,
		prices:    make(map[string]models.Tick),
		streams:   make(map[string]struct{}),
	}
}

func (c *Client) sign(reqTime, body string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(c.apiKey + reqTime + body))
	return hex.EncodeToString(h.Sum(nil))
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do выполняет подписанный запрос к гейтвею и возвращает поле data.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (json.RawMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "broker."+op)
	defer span.Finish()

	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s marshal: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s new request: %w", op, err)
	}

	reqTime := fmt.Sprintf("%d", time.Now().UTC().UnixMilli())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ApiKey", c.apiKey)
	req.Header.Set("Request-Time", reqTime)
	req.Header.Set("Signature", c.sign(reqTime, string(payload)))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s do: %w", op, err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s http %d: %s", op, resp.StatusCode, string(rb))
	}

	var wrap envelope
	if err := json.Unmarshal(rb, &wrap); err != nil {
		return nil, fmt.Errorf("%s decode: %w; body=%s", op, err, string(rb))
	}
	if !wrap.Success {
		// брокер отклонил запрос: наверх без ретраев, позиция остаётся как была
		return nil, fmt.Errorf("%s gateway error: code=%d msg=%s", op, wrap.Code, wrap.Message)
	}
	return wrap.Data, nil
}
