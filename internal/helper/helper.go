package helper

import "math"

// FloorToStep приводит объём к сетке шага лота (вниз).
func FloorToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	steps := math.Floor(v/step + 1e-9)
	return steps * step
}

func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Floor(px/tick + 1e-12)
	return steps * tick
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Ceil(px/tick - 1e-12)
	return steps * tick
}
