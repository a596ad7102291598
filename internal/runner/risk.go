package runner

import "signal_bot/internal/helper"

// CalcLot считает объём ордера от баланса и процента риска.
// riskPerLot — сколько валюты депозита рискуем на 1.0 лота
// (фиксированная единица риска, дефолт 100). Объём приводится к сетке
// lotStep вниз и поднимается до minLot, если получился меньше минимума.
// Неположительный баланс или риск => 0, сделки нет.
func CalcLot(balance, riskPct, riskPerLot, lotStep, minLot float64) float64 {
	if balance <= 0 || riskPct <= 0 {
		return 0
	}
	if riskPerLot <= 0 {
		riskPerLot = 100.0
	}
	if lotStep <= 0 {
		lotStep = 0.01
	}
	if minLot <= 0 {
		minLot = lotStep
	}

	riskAmount := balance * riskPct / 100.0
	lot := helper.FloorToStep(riskAmount/riskPerLot, lotStep)
	if lot < minLot {
		lot = minLot
	}
	return lot
}
