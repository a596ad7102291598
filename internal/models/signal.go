package models

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Signal — торговая инструкция, извлечённая из сообщения канала.
// Никаких числовых параметров из текста не берём: объём и стопы
// считаются локально из конфига и состояния счёта.
type Signal struct {
	Side       Side
	Instrument string
	Timeframe  string // H1/M5/..., пустая строка если не указан
	Raw        string
}
