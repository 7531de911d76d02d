package utils

import (
	"log"
	"math"
	"time"

	"github.com/fenixinvest/fenix/Internal/utils/config"
)

func Max(values ...float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func Abs(v float64) float64 {
	return math.Abs(v)
}

// Clamp limits v to the [lo, hi] range.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// CheckMarketStatus returns a human-readable status and whether the B3
// session is open at the given time, using the hours from config.
func CheckMarketStatus(now time.Time, cfg *config.Config) (string, bool) {
	open := cfg.Global.MarketHours.RegularOpen
	closeAt := cfg.Global.MarketHours.RegularClose
	if open == "" {
		open = "10:00"
	}
	if closeAt == "" {
		closeAt = "17:00"
	}

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "Fechado (fim de semana)", false
	}

	openT, err1 := time.Parse("15:04", open)
	closeT, err2 := time.Parse("15:04", closeAt)
	if err1 != nil || err2 != nil {
		log.Printf("⚠️  Horário de pregão inválido na config (%s-%s)", open, closeAt)
		return "Desconhecido", false
	}

	minutes := now.Hour()*60 + now.Minute()
	openMin := openT.Hour()*60 + openT.Minute()
	closeMin := closeT.Hour()*60 + closeT.Minute()

	if minutes >= openMin && minutes <= closeMin {
		return "Pregão aberto", true
	}
	return "Pregão fechado", false
}
