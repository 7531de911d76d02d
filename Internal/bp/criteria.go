package bp

import (
	"fmt"
	"math"

	"github.com/fenixinvest/fenix/Internal/utils"
)

// ============================================================================
// CRITERIA ENGINE
// ============================================================================

// tolerated deviation below the 14-period volume average (2%)
const volumeTolerancia = 0.02

// CriteriaResult is the outcome of a single criterion on the latest candle.
type CriteriaResult struct {
	Status bool    `json:"status"`
	Detail string  `json:"detail"`
	Norm   float64 `json:"norm"`
}

// CriteriaSet maps criterion name to result. Keys: tendencia, momentum,
// volatilidade, sinal_tecnico, volume.
type CriteriaSet map[string]CriteriaResult

// EvaluateAllCriteria runs the five criteria over the latest candle and
// writes the tendencia/momentum norms back into the frame so the trade
// engine can read them per candle.
func EvaluateAllCriteria(f *Frame) CriteriaSet {
	set := CriteriaSet{
		"tendencia":     checkTrend(f),
		"momentum":      checkMomentum(f),
		"volatilidade":  checkVolatility(f),
		"sinal_tecnico": checkTechnicalSignal(f),
		"volume":        checkVolume(f),
	}

	if i := f.Last(); i >= 0 {
		f.TendenciaNorm[i] = set["tendencia"].Norm
		f.MomentumNorm[i] = set["momentum"].Norm
	}
	return set
}

// failSafe is the floor result every criterion degrades to on bad input.
func failSafe(detail string) CriteriaResult {
	return CriteriaResult{Status: false, Detail: detail, Norm: 0.10}
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// ============================================================================
// CRITERIO 1 - TENDENCIA
// ============================================================================

// checkTrend passes when the close sits above MA9, MA21 and MA200. The norm
// is the relative distance to the MA200, clamped to [0.10, 1.0].
func checkTrend(f *Frame) CriteriaResult {
	i := f.Last()
	if i < 0 {
		return failSafe("Dados insuficientes")
	}

	close := f.Close[i]
	ma9 := f.MA9[i]
	ma21 := f.MA21[i]
	ma200 := f.MA200[i]

	if anyNaN(close, ma9, ma21, ma200) {
		return failSafe("Valores inválidos para tendência")
	}

	status := close > ma9 && close > ma21 && close > ma200

	norm := utils.Clamp((close-ma200)/ma200, 0.10, 1.0)
	if math.IsNaN(norm) {
		norm = 0.10
	}

	return CriteriaResult{
		Status: status,
		Detail: fmt.Sprintf("Close=%.2f, MA9=%.2f, MA21=%.2f, MA200=%.2f", close, ma9, ma21, ma200),
		Norm:   norm,
	}
}

// ============================================================================
// CRITERIO 2 - MOMENTUM
// ============================================================================

// checkMomentum requires RSI above 50 plus rising OBV and AD lines over the
// last 5 candle-to-candle differences. The norm rescales RSI from the 30-100
// band into [0.10, 1.0].
func checkMomentum(f *Frame) CriteriaResult {
	if f.Len() < 6 {
		return failSafe("Dados insuficientes")
	}

	i := f.Last()
	rsi := f.RSI[i]
	if math.IsNaN(rsi) {
		return failSafe("RSI inválido")
	}

	obvUp := diffTailSum(f.OBV, 5) > 0
	adUp := diffTailSum(f.AD, 5) > 0

	status := rsi > 50 && obvUp && adUp

	norm := utils.Clamp((rsi-30)/70, 0.10, 1.0)

	return CriteriaResult{
		Status: status,
		Detail: fmt.Sprintf("RSI14=%.2f | OBV_up=%v | AD_up=%v", rsi, obvUp, adUp),
		Norm:   norm,
	}
}

// diffTailSum sums the last n first-differences of the series. NaN terms
// are skipped, matching how the source feed aggregates partial windows.
func diffTailSum(values []float64, n int) float64 {
	sum := 0.0
	end := len(values)
	start := end - n
	if start < 1 {
		start = 1
	}
	for i := start; i < end; i++ {
		d := values[i] - values[i-1]
		if !math.IsNaN(d) {
			sum += d
		}
	}
	return sum
}

// ============================================================================
// CRITERIO 3 - VOLATILIDADE
// ============================================================================

// checkVolatility passes when ATR% stays at or below 6. The norm maps ATR%
// against a 25% ceiling, so calmer assets score closer to 1.0.
func checkVolatility(f *Frame) CriteriaResult {
	i := f.Last()
	if i < 0 {
		return failSafe("ATR% inválido")
	}

	atrPct := f.ATRPct[i]
	if math.IsNaN(atrPct) {
		return failSafe("ATR% inválido")
	}

	status := atrPct <= 6

	const maxATR = 25.0
	norm := utils.Clamp(1-atrPct/maxATR, 0.10, 1.0)

	return CriteriaResult{
		Status: status,
		Detail: fmt.Sprintf("ATR%%=%.2f", atrPct),
		Norm:   norm,
	}
}

// ============================================================================
// CRITERIO 4 - SINAL TECNICO
// ============================================================================

// checkTechnicalSignal passes when the close clears both the MA9 and the
// VWAP. The norm is the relative distance above the VWAP.
func checkTechnicalSignal(f *Frame) CriteriaResult {
	i := f.Last()
	if i < 0 {
		return failSafe("Valores inválidos para sinal técnico")
	}

	close := f.Close[i]
	ma9 := f.MA9[i]
	vwap := f.VWAP[i]

	if anyNaN(close, ma9, vwap) {
		return failSafe("Valores inválidos para sinal técnico")
	}

	status := close > ma9 && close > vwap

	norm := utils.Clamp((close-vwap)/vwap, 0.10, 1.0)
	if math.IsNaN(norm) {
		norm = 0.10
	}

	return CriteriaResult{
		Status: status,
		Detail: fmt.Sprintf("Close=%.2f | MA9=%.2f | VWAP=%.2f", close, ma9, vwap),
		Norm:   norm,
	}
}

// ============================================================================
// CRITERIO 5 - VOLUME
// ============================================================================

// checkVolume tolerates up to 2% below the 14-period volume average.
func checkVolume(f *Frame) CriteriaResult {
	i := f.Last()
	if i < 0 {
		return failSafe("MM14 inválida")
	}

	vol := f.Volume[i]
	mm14 := f.VolumeMM14[i]

	if math.IsNaN(vol) || math.IsNaN(mm14) || mm14 == 0 {
		return failSafe("MM14 inválida")
	}

	deviation := (vol - mm14) / mm14
	status := deviation >= -volumeTolerancia

	return CriteriaResult{
		Status: status,
		Detail: fmt.Sprintf("Volume=%.0f | MM14=%.0f | Dev=%.2f%%", vol, mm14, deviation*100),
		Norm:   normalizeVolume(vol, mm14),
	}
}

// normalizeVolume rescales the volume/MM14 ratio:
//
//	2x MM14 => 1.00, 1x => 0.43, 0.25x or less => floor
//
// with a hard 0.10 floor, never zero.
func normalizeVolume(vol, mm14 float64) float64 {
	if mm14 <= 0 {
		return 0.10
	}

	ratio := vol / mm14
	if ratio >= 2 {
		return 1.0
	}

	return utils.Clamp((ratio-0.25)/(2-0.25), 0.10, 1.0)
}
