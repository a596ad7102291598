package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	channelIDENV      = "TELEGRAM_CHANNEL_ID"
	brokerBaseURLENV  = "BROKER_BASE_URL"
	brokerAPIKeyENV   = "BROKER_API_KEY"
	brokerSecretENV   = "BROKER_API_SECRET"
)

// Config ...
type Config struct {
	Telegram struct {
		Token     string
		ChannelID int64
	}
	Broker struct {
		BaseURL   string
		WSURL     string
		APIKey    string
		APISecret string
	}

	Risk Risk

	Monitor struct {
		PollInterval time.Duration
	}

	Order struct {
		Deviation int
		Magic     int64
		Comment   string
	}

	Tracing struct {
		Host string
		Port int
	}
}

// Risk — пороги в процентах от цены входа / от депозита.
type Risk struct {
	// Сколько от депозита готовы потерять на сделку
	RiskPct float64 // напр. 1.0 => 1% баланса
	// Сколько валюты депозита стоит риск на 1.0 лота
	RiskPerLot float64 // дефолт 100.0
	// Порог профита для переноса стопа в безубыток
	BreakEvenPct float64 // напр. 0.2 => 0.2% от entry
	// Смещение BE-стопа от entry (0 = ровно entry)
	BreakEvenOffsetPct float64
	// Порог обратного движения для принудительного закрытия
	ReversalPct float64 // напр. 0.5 => 0.5% от entry
}

func NewConfig() (*Config, error) {
	v := viper.New()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	v.SetConfigName(strings.TrimSuffix(configFileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath(".")

	v.SetDefault("broker.base_url", "http://127.0.0.1:6542")
	v.SetDefault("broker.ws_url", "ws://127.0.0.1:6542/stream")
	v.SetDefault("risk.risk_pct", 1.0)
	v.SetDefault("risk.risk_per_lot", 100.0)
	v.SetDefault("risk.break_even_pct", 0.2)
	v.SetDefault("risk.break_even_offset_pct", 0.0)
	v.SetDefault("risk.reversal_pct", 0.5)
	v.SetDefault("monitor.poll_interval", "5s")
	v.SetDefault("order.deviation", 20)
	v.SetDefault("order.magic", 1000)
	v.SetDefault("order.comment", "telegram signal")
	v.SetDefault("tracing.host", "")
	v.SetDefault("tracing.port", 6831)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	config := &Config{}
	config.Telegram.Token = v.GetString("telegram.token")
	config.Telegram.ChannelID = v.GetInt64("telegram.channel_id")
	config.Broker.BaseURL = v.GetString("broker.base_url")
	config.Broker.WSURL = v.GetString("broker.ws_url")
	config.Broker.APIKey = v.GetString("broker.api_key")
	config.Broker.APISecret = v.GetString("broker.api_secret")
	config.Risk.RiskPct = v.GetFloat64("risk.risk_pct")
	config.Risk.RiskPerLot = v.GetFloat64("risk.risk_per_lot")
	config.Risk.BreakEvenPct = v.GetFloat64("risk.break_even_pct")
	config.Risk.BreakEvenOffsetPct = v.GetFloat64("risk.break_even_offset_pct")
	config.Risk.ReversalPct = v.GetFloat64("risk.reversal_pct")
	config.Monitor.PollInterval = v.GetDuration("monitor.poll_interval")
	config.Order.Deviation = v.GetInt("order.deviation")
	config.Order.Magic = v.GetInt64("order.magic")
	config.Order.Comment = v.GetString("order.comment")
	config.Tracing.Host = v.GetString("tracing.host")
	config.Tracing.Port = v.GetInt("tracing.port")

	// секреты из env перекрывают файл
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if raw := os.Getenv(channelIDENV); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			config.Telegram.ChannelID = id
		}
	}
	if u := os.Getenv(brokerBaseURLENV); u != "" {
		config.Broker.BaseURL = u
	}
	if k := os.Getenv(brokerAPIKeyENV); k != "" {
		config.Broker.APIKey = k
	}
	if s := os.Getenv(brokerSecretENV); s != "" {
		config.Broker.APISecret = s
	}

	// без токена/кредов стартовать нельзя — дальше только слушать и торговать
	if config.Telegram.Token == "" {
		return nil, errors.New("telegram token is required (telegram.token / TELEGRAM_TOKEN)")
	}
	if config.Telegram.ChannelID == 0 {
		return nil, errors.New("telegram channel id is required (telegram.channel_id / TELEGRAM_CHANNEL_ID)")
	}
	if config.Broker.APIKey == "" || config.Broker.APISecret == "" {
		return nil, errors.New("broker api credentials are required (BROKER_API_KEY / BROKER_API_SECRET)")
	}
	if config.Monitor.PollInterval <= 0 {
		config.Monitor.PollInterval = 5 * time.Second
	}

	return config, nil
}
