package models

import "time"

// Position — открытая позиция на стороне брокера (только чтение,
// мутируем её через modify/close команды гейтвея).
type Position struct {
	Ticket     int64
	Instrument string
	Side       Side
	Volume     float64
	Entry      float64
	SL         float64
	OpenedAt   time.Time
}

// PositionGuard — локальное состояние мониторинга одной позиции.
// Переходы: Opened -> BreakEvenSet -> Closed, либо Opened -> Closed.
type PositionGuard struct {
	Ticket     int64
	Instrument string
	Side       Side
	Entry      float64
	Volume     float64
	Point      float64 // шаг цены инструмента, для округления SL

	BreakEvenSet bool // BE двигаем максимум один раз за жизнь позиции
	OpenedAt     time.Time
}

// GuardDecision — что делать с позицией на текущем тике.
type GuardDecision struct {
	Close  bool
	MoveSL bool
	NewSL  float64
	Reason string
}
