package bp

import (
	"math"

	"github.com/fenixinvest/fenix/Internal/utils"
)

// ============================================================================
// TRADE ENGINE - Modelo C (setup profissional adaptativo)
// ============================================================================

const (
	// maximum candles to scan back when hunting the last swing
	maxLookbackSwings = 80
	// risk/reward ceiling applied to the target distance
	rrMax = 3.0
)

// TradeSetup is a complete operation plan for the latest candle.
type TradeSetup struct {
	Operacao      string  `json:"operacao"` // "LONG" or "SHORT"
	Entrada       float64 `json:"entrada"`
	Stop          float64 `json:"stop"`
	Alvo          float64 `json:"alvo"`
	StopDistATR   float64 `json:"stop_dist_atr"`
	TargetDistATR float64 `json:"target_dist_atr"`
	RR            float64 `json:"rr"`
}

// GenerateTradeSetup builds the Modelo C setup from the frame and the
// Fênix Strength score (0-5 scale). Returns nil when trend and momentum
// disagree or the frame is empty.
func GenerateTradeSetup(f *Frame, fsScore float64) *TradeSetup {
	if f == nil || f.Len() == 0 {
		return nil
	}

	i := f.Last()
	close := f.Close[i]
	highLast := f.High[i]
	lowLast := f.Low[i]

	// real ATR, not ATR%
	atr := f.ATR[i]
	if math.IsNaN(atr) || atr <= 0 {
		// 1.5% of price as fallback, never below 0.10
		atr = math.Max(math.Abs(close)*0.015, 0.10)
	}

	tendNorm := normOrDefault(f.TendenciaNorm, i)
	momNorm := normOrDefault(f.MomentumNorm, i)

	var operacao string
	switch {
	case tendNorm >= 0.50 && momNorm >= 0.50:
		operacao = "LONG"
	case tendNorm < 0.50 && momNorm < 0.50:
		operacao = "SHORT"
	default:
		// trend and momentum disagree, no valid operation
		return nil
	}

	fsNorm := utils.Clamp(fsScore/5.0, 0.0, 1.0)

	// LONG enters at the last swing high at or above the close,
	// SHORT at the last swing low at or below it. Without a recent
	// swing the last candle's extreme (or the close) takes over.
	var entrada float64
	if operacao == "LONG" {
		if swing, ok := findLastSwingHigh(f.High, maxLookbackSwings, close); ok {
			entrada = swing
		} else {
			entrada = math.Max(highLast, close)
		}
		if entrada < close {
			entrada = close
		}
	} else {
		if swing, ok := findLastSwingLow(f.Low, maxLookbackSwings, close); ok {
			entrada = swing
		} else {
			entrada = math.Min(lowLast, close)
		}
		if entrada > close {
			entrada = close
		}
	}

	// high FS tightens the stop, low FS widens it
	stopDist := atr * (1.2 + (1.0-fsNorm)*1.8)

	// high FS stretches the target, capped at rrMax times the stop
	targetDist := atr * (2.0 + fsNorm*3.0)
	if stopDist > 0 && targetDist/stopDist > rrMax {
		targetDist = stopDist * rrMax
	}

	var stop, alvo float64
	if operacao == "LONG" {
		stop = entrada - stopDist
		alvo = entrada + targetDist
	} else {
		stop = entrada + stopDist
		alvo = entrada - targetDist
	}

	rr := math.Abs(alvo-entrada) / math.Max(math.Abs(entrada-stop), 1e-8)

	return &TradeSetup{
		Operacao:      operacao,
		Entrada:       entrada,
		Stop:          stop,
		Alvo:          alvo,
		StopDistATR:   stopDist / atr,
		TargetDistATR: targetDist / atr,
		RR:            rr,
	}
}

// normOrDefault reads a per-candle norm, defaulting to the 0.5 midpoint
// when the criteria engine has not written one.
func normOrDefault(norms []float64, i int) float64 {
	if i < 0 || i >= len(norms) || math.IsNaN(norms[i]) {
		return 0.5
	}
	return norms[i]
}

// ============================================================================
// SWING DETECTION (5-candle pattern)
// ============================================================================

// findLastSwingHigh scans backwards for the classic 5-candle swing high
//
//	High[i-2] < High[i-1] < High[i] > High[i+1] > High[i+2]
//
// accepting only swings at or above minPrice.
func findLastSwingHigh(highs []float64, maxLookback int, minPrice float64) (float64, bool) {
	n := len(highs)
	if n < 5 {
		return 0, false
	}

	minI := n - maxLookback - 1
	if minI < 2 {
		minI = 2
	}

	for i := n - 3; i >= minI; i-- {
		if highs[i-2] < highs[i-1] && highs[i-1] < highs[i] &&
			highs[i] > highs[i+1] && highs[i+1] > highs[i+2] {
			if highs[i] >= minPrice {
				return highs[i], true
			}
		}
	}
	return 0, false
}

// findLastSwingLow is the mirror scan for the 5-candle swing low,
// accepting only swings at or below maxPrice.
func findLastSwingLow(lows []float64, maxLookback int, maxPrice float64) (float64, bool) {
	n := len(lows)
	if n < 5 {
		return 0, false
	}

	minI := n - maxLookback - 1
	if minI < 2 {
		minI = 2
	}

	for i := n - 3; i >= minI; i-- {
		if lows[i-2] > lows[i-1] && lows[i-1] > lows[i] &&
			lows[i] < lows[i+1] && lows[i+1] < lows[i+2] {
			if lows[i] <= maxPrice {
				return lows[i], true
			}
		}
	}
	return 0, false
}
