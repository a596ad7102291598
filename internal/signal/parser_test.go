package signal_test

import (
	"testing"

	"signal_bot/internal/models"
	"signal_bot/internal/signal"
)

func TestParseNotASignal(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		"close EURUSD",
		"buying EURUSD H1", // префикс не считается ключевым словом
		"buy",              // нет инструмента
		"sell 123",         // инструмент не может начинаться с цифры
		"🚀🚀🚀",
	}
	for _, c := range cases {
		if _, ok := signal.Parse(c); ok {
			t.Fatalf("Parse(%q): ожидали не-сигнал", c)
		}
	}
}

func TestParseBasic(t *testing.T) {
	sig, ok := signal.Parse("buy EURUSD H1")
	if !ok {
		t.Fatalf("ожидали сигнал")
	}
	if sig.Side != models.SideBuy || sig.Instrument != "EURUSD" || sig.Timeframe != "H1" {
		t.Fatalf("неожиданный сигнал: %+v", sig)
	}
}

func TestParseNumericTailIgnored(t *testing.T) {
	sig, ok := signal.Parse("sell vol 10")
	if !ok {
		t.Fatalf("ожидали сигнал")
	}
	if sig.Side != models.SideSell || sig.Instrument != "vol" {
		t.Fatalf("неожиданный сигнал: %+v", sig)
	}
	if sig.Timeframe != "" {
		t.Fatalf("число не должно распознаваться как таймфрейм: %q", sig.Timeframe)
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	sig, ok := signal.Parse("BUY gbpusd m15")
	if !ok {
		t.Fatalf("ожидали сигнал")
	}
	if sig.Side != models.SideBuy || sig.Instrument != "gbpusd" || sig.Timeframe != "M15" {
		t.Fatalf("неожиданный сигнал: %+v", sig)
	}
}

func TestParseTrailingJunkIgnored(t *testing.T) {
	sig, ok := signal.Parse("buy XAUUSD now please h4 asap")
	if !ok {
		t.Fatalf("ожидали сигнал")
	}
	if sig.Instrument != "XAUUSD" || sig.Timeframe != "H4" {
		t.Fatalf("неожиданный сигнал: %+v", sig)
	}
}
