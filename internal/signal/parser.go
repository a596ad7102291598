package signal

import (
	"regexp"
	"strings"

	"signal_bot/internal/models"
)

// instrumentRe — тикер: буква + буквы/цифры, без чисел в начале.
var instrumentRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{1,14}$`)

// фиксированный набор таймфреймов; всё остальное в хвосте игнорируем
var timeframes = map[string]string{
	"m1": "M1", "m5": "M5", "m15": "M15", "m30": "M30",
	"h1": "H1", "h4": "H4", "d1": "D1",
}

// Parse разбирает строку сообщения в сигнал.
// ok=false — текст не является торговой инструкцией (это не ошибка:
// канал шлёт что угодно, мы реагируем только на свой формат).
func Parse(text string) (models.Signal, bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return models.Signal{}, false
	}

	var side models.Side
	switch strings.ToLower(fields[0]) {
	case "buy":
		side = models.SideBuy
	case "sell":
		side = models.SideSell
	default:
		return models.Signal{}, false
	}

	inst := fields[1]
	if !instrumentRe.MatchString(inst) {
		return models.Signal{}, false
	}

	tf := ""
	for _, tok := range fields[2:] {
		if v, ok := timeframes[strings.ToLower(tok)]; ok {
			tf = v
			break
		}
	}

	return models.Signal{
		Side:       side,
		Instrument: inst,
		Timeframe:  tf,
		Raw:        text,
	}, true
}
