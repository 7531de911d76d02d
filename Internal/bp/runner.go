package bp

import (
	"log"

	"github.com/fenixinvest/fenix/Internal/types"
)

// ============================================================================
// CYCLE RUNNER
// ============================================================================

// CandleSource feeds historical candles for a ticker. A (nil, nil) return
// means the source has no data for the symbol.
type CandleSource interface {
	GetTickerCandles(ticker, period, interval string) ([]types.Bar, error)
}

// CycleResult is one full BP-Fênix pass over the universe.
type CycleResult struct {
	Results   map[string]*AssetAnalysis `json:"results"`
	TopAssets []RankedCandidate         `json:"top_assets"`

	Processed      int      `json:"processed"`
	Skipped        int      `json:"skipped"`
	SkippedTickers []string `json:"skipped_tickers"`
}

// CycleOptions tunes a run. Zero values fall back to the official
// defaults (score >= 3, top 5, 2y of daily candles).
type CycleOptions struct {
	Period   string
	Interval string
	ScoreMin int
	TopN     int
}

func (o *CycleOptions) applyDefaults() {
	if o.Period == "" {
		o.Period = "2y"
	}
	if o.Interval == "" {
		o.Interval = "1d"
	}
	if o.ScoreMin == 0 {
		o.ScoreMin = 3
	}
	if o.TopN == 0 {
		o.TopN = 5
	}
}

// RunCycle executes a complete cycle: download candles per ticker, apply
// indicators, evaluate criteria, score, then rank the survivors. Tickers
// with missing or invalid data are skipped, never fatal.
func RunCycle(source CandleSource, tickers []string, opts CycleOptions) *CycleResult {
	opts.applyDefaults()

	cycle := &CycleResult{
		Results:        map[string]*AssetAnalysis{},
		SkippedTickers: []string{},
	}

	log.Printf("🟦 INICIANDO CICLO BP-FÊNIX (%d tickers, %s/%s)", len(tickers), opts.Period, opts.Interval)

	for _, ticker := range tickers {
		bars, err := source.GetTickerCandles(ticker, opts.Period, opts.Interval)
		if err != nil {
			log.Printf("⚠️  Erro ao baixar %s: %v. Pulando...", ticker, err)
			cycle.Skipped++
			cycle.SkippedTickers = append(cycle.SkippedTickers, ticker)
			continue
		}
		if len(bars) == 0 {
			log.Printf("⚠️  Dados inválidos para %s. Pulando...", ticker)
			cycle.Skipped++
			cycle.SkippedTickers = append(cycle.SkippedTickers, ticker)
			continue
		}

		frame := ApplyAllIndicators(NewFrame(bars))
		criteria := EvaluateAllCriteria(frame)
		score := CalculateScore(criteria)

		cycle.Results[ticker] = &AssetAnalysis{
			Ticker: ticker,
			Score:  score,
			Frame:  frame,
		}
		cycle.Processed++

		log.Printf("➡️  Score %s: %d (fs=%.2f)", ticker, score.Score, score.FS)
	}

	cycle.TopAssets = SelectTopAssets(cycle.Results, opts.ScoreMin, opts.TopN)

	log.Printf("🟩 Ciclo completo: %d processados, %d pulados, %d selecionados",
		cycle.Processed, cycle.Skipped, len(cycle.TopAssets))

	return cycle
}
