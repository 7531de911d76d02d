package bp

import "sort"

// ============================================================================
// SELECTOR - ranking oficial por Fenix Strength
// ============================================================================

// AssetAnalysis is one ticker's full cycle output: indicator frame,
// criteria details and score.
type AssetAnalysis struct {
	Ticker string      `json:"ticker"`
	Score  ScoreResult `json:"score"`
	Frame  *Frame      `json:"-"`
}

// RankedCandidate is a selected asset plus its operational setup.
type RankedCandidate struct {
	Ticker string  `json:"ticker"`
	Score  int     `json:"score"`
	FS     float64 `json:"fs"`

	TendenciaNorm    float64 `json:"tendencia_norm"`
	MomentumNorm     float64 `json:"momentum_norm"`
	VolatilidadeNorm float64 `json:"volatilidade_norm"`
	SinalNorm        float64 `json:"sinal_norm"`
	VolumeNorm       float64 `json:"volume_norm"`

	Details CriteriaSet `json:"details"`
	Trade   *TradeSetup `json:"trade"`
}

// SelectTopAssets filters by the minimum binary score, generates the
// Modelo C setup for each survivor and ranks by FS, then momentum, trend
// and volume norms. Assets without a valid setup are dropped.
func SelectTopAssets(results map[string]*AssetAnalysis, scoreMin, topN int) []RankedCandidate {
	// deterministic walk, ranking ties keep ticker order
	tickers := make([]string, 0, len(results))
	for t := range results {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	candidates := []RankedCandidate{}
	for _, ticker := range tickers {
		info := results[ticker]
		if info == nil || info.Score.Score < scoreMin {
			continue
		}
		if len(info.Score.Details) == 0 {
			continue
		}
		if info.Frame == nil || info.Frame.Len() == 0 {
			continue
		}

		trade := GenerateTradeSetup(info.Frame, info.Score.FS)
		if trade == nil {
			continue
		}

		candidates = append(candidates, RankedCandidate{
			Ticker:           ticker,
			Score:            info.Score.Score,
			FS:               info.Score.FS,
			TendenciaNorm:    info.Score.TendenciaNorm,
			MomentumNorm:     info.Score.MomentumNorm,
			VolatilidadeNorm: info.Score.VolatilidadeNorm,
			SinalNorm:        info.Score.SinalNorm,
			VolumeNorm:       info.Score.VolumeNorm,
			Details:          info.Score.Details,
			Trade:            trade,
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.FS != cb.FS {
			return ca.FS > cb.FS
		}
		if ca.MomentumNorm != cb.MomentumNorm {
			return ca.MomentumNorm > cb.MomentumNorm
		}
		if ca.TendenciaNorm != cb.TendenciaNorm {
			return ca.TendenciaNorm > cb.TendenciaNorm
		}
		return ca.VolumeNorm > cb.VolumeNorm
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
