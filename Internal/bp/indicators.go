package bp

import (
	"math"

	"github.com/fenixinvest/fenix/Internal/types"
)

// ============================================================================
// FRAME
// ============================================================================

// Frame holds a candle series plus every derived indicator as parallel
// columns. Cells with no defined value carry NaN, like the source feeds.
type Frame struct {
	Timestamp []string

	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64

	MA9   []float64
	MA21  []float64
	MA50  []float64
	MA200 []float64

	VWAP []float64
	RSI  []float64
	OBV  []float64
	AD   []float64

	ATR    []float64
	ATRPct []float64

	VolumeMM14   []float64
	VolumeDesvio []float64

	// per-candle norms written back by the criteria engine; NaN until set
	TendenciaNorm []float64
	MomentumNorm  []float64
}

func NewFrame(bars []types.Bar) *Frame {
	n := len(bars)
	f := &Frame{
		Timestamp: make([]string, n),
		Open:      make([]float64, n),
		High:      make([]float64, n),
		Low:       make([]float64, n),
		Close:     make([]float64, n),
		Volume:    make([]float64, n),
	}
	for i, b := range bars {
		f.Timestamp[i] = b.Timestamp
		f.Open[i] = b.Open
		f.High[i] = b.High
		f.Low[i] = b.Low
		f.Close[i] = b.Close
		f.Volume[i] = b.Volume
	}
	return f
}

func (f *Frame) Len() int { return len(f.Close) }

// Last returns the index of the newest row, or -1 on an empty frame.
func (f *Frame) Last() int { return len(f.Close) - 1 }

func (f *Frame) columns() []*[]float64 {
	return []*[]float64{
		&f.Open, &f.High, &f.Low, &f.Close, &f.Volume,
		&f.MA9, &f.MA21, &f.MA50, &f.MA200,
		&f.VWAP, &f.RSI, &f.OBV, &f.AD,
		&f.ATR, &f.ATRPct,
		&f.VolumeMM14, &f.VolumeDesvio,
		&f.TendenciaNorm, &f.MomentumNorm,
	}
}

// ============================================================================
// ROLLING HELPERS
// ============================================================================

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// rollingMean is a simple moving average with a full-window requirement:
// the first window-1 cells are NaN, and any NaN inside the window
// propagates.
func rollingMean(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// ============================================================================
// INDICATORS
// ============================================================================

const (
	rsiPeriod = 14
	atrPeriod = 14
	volPeriod = 14
	tailRows  = 20
)

// ApplyAllIndicators computes every indicator over the full history, then
// sanitizes infinities to NaN, drops rows with NaN close and keeps only the
// last 20 rows. The input frame is modified and returned for chaining.
func ApplyAllIndicators(f *Frame) *Frame {
	n := f.Len()
	if n == 0 {
		return f
	}

	f.MA9 = rollingMean(f.Close, 9)
	f.MA21 = rollingMean(f.Close, 21)
	f.MA50 = rollingMean(f.Close, 50)
	f.MA200 = rollingMean(f.Close, 200)

	f.VWAP = computeVWAP(f)
	f.RSI = computeRSI(f.Close, rsiPeriod)
	f.OBV = computeOBV(f.Close, f.Volume)
	f.AD = computeAD(f)

	tr := computeTrueRange(f)
	f.ATR = rollingMean(tr, atrPeriod)
	f.ATRPct = nanSlice(n)
	for i := 0; i < n; i++ {
		f.ATRPct[i] = 100 * f.ATR[i] / f.Close[i]
	}

	f.VolumeMM14 = rollingMean(f.Volume, volPeriod)
	f.VolumeDesvio = nanSlice(n)
	for i := 0; i < n; i++ {
		// percentual deviation from the 14-period average
		f.VolumeDesvio[i] = 100 * (f.Volume[i] - f.VolumeMM14[i]) / f.VolumeMM14[i]
	}

	f.TendenciaNorm = nanSlice(n)
	f.MomentumNorm = nanSlice(n)

	f.sanitize()
	f.dropNaNClose()
	f.tail(tailRows)
	return f
}

// computeVWAP is the cumulative session VWAP over the whole series:
// cumsum(typical*volume) / cumsum(volume).
func computeVWAP(f *Frame) []float64 {
	n := f.Len()
	out := nanSlice(n)
	cumPV, cumV := 0.0, 0.0
	for i := 0; i < n; i++ {
		typical := (f.High[i] + f.Low[i] + f.Close[i]) / 3
		cumPV += typical * f.Volume[i]
		cumV += f.Volume[i]
		out[i] = cumPV / cumV
	}
	return out
}

// computeRSI uses simple rolling means of gains and losses. A window with
// zero average loss yields NaN, not 100.
func computeRSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := nanSlice(n)
	losses := nanSlice(n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
			losses[i] = 0
		} else {
			gains[i] = 0
			losses[i] = -delta
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)

	out := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) || avgLoss[i] == 0 {
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// computeOBV accumulates volume signed by the close-to-close direction.
func computeOBV(closes, volumes []float64) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n == 0 {
		return out
	}
	out[0] = 0
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// computeAD is the accumulation/distribution line. CLV is defined as zero
// on candles where high equals low.
func computeAD(f *Frame) []float64 {
	n := f.Len()
	out := nanSlice(n)
	cum := 0.0
	for i := 0; i < n; i++ {
		clv := 0.0
		if f.High[i] != f.Low[i] {
			clv = ((f.Close[i] - f.Low[i]) - (f.High[i] - f.Close[i])) / (f.High[i] - f.Low[i])
		}
		cum += clv * f.Volume[i]
		out[i] = cum
	}
	return out
}

// computeTrueRange uses high-low on the first candle, where there is no
// previous close.
func computeTrueRange(f *Frame) []float64 {
	n := f.Len()
	out := nanSlice(n)
	if n == 0 {
		return out
	}
	out[0] = f.High[0] - f.Low[0]
	for i := 1; i < n; i++ {
		hl := f.High[i] - f.Low[i]
		hc := math.Abs(f.High[i] - f.Close[i-1])
		lc := math.Abs(f.Low[i] - f.Close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ============================================================================
// CLEANUP
// ============================================================================

// sanitize replaces +-Inf with NaN in every numeric column.
func (f *Frame) sanitize() {
	for _, col := range f.columns() {
		for i, v := range *col {
			if math.IsInf(v, 0) {
				(*col)[i] = math.NaN()
			}
		}
	}
}

// dropNaNClose removes rows whose close is NaN, compacting every column.
func (f *Frame) dropNaNClose() {
	keep := make([]int, 0, f.Len())
	for i, c := range f.Close {
		if !math.IsNaN(c) {
			keep = append(keep, i)
		}
	}
	if len(keep) == f.Len() {
		return
	}

	ts := make([]string, len(keep))
	for j, i := range keep {
		ts[j] = f.Timestamp[i]
	}
	f.Timestamp = ts

	for _, col := range f.columns() {
		if len(*col) == 0 {
			continue
		}
		compact := make([]float64, len(keep))
		for j, i := range keep {
			compact[j] = (*col)[i]
		}
		*col = compact
	}
}

// tail keeps only the newest n rows.
func (f *Frame) tail(n int) {
	if f.Len() <= n {
		return
	}
	start := f.Len() - n
	f.Timestamp = f.Timestamp[start:]
	for _, col := range f.columns() {
		if len(*col) >= n {
			*col = (*col)[len(*col)-n:]
		}
	}
}
