package models

import "time"

// Account — сводка по счёту с гейтвея.
type Account struct {
	Balance  float64
	Equity   float64
	Currency string
}

// Tick — последняя котировка по инструменту.
type Tick struct {
	Instrument string
	Bid        float64
	Ask        float64
	At         time.Time
}

// SymbolMeta — параметры инструмента, нужные для расчёта объёма
// и округления стопов.
type SymbolMeta struct {
	Symbol  string
	Digits  int
	Point   float64
	MinLot  float64
	LotStep float64
	MaxLot  float64
}
