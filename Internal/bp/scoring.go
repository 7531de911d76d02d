package bp

// ============================================================================
// SCORING - score binario + Fenix Strength
// ============================================================================

// criteriaOrder keeps passed/failed listings deterministic.
var criteriaOrder = []string{"tendencia", "momentum", "volatilidade", "sinal_tecnico", "volume"}

// ScoreResult carries the binary score (0-5), the Fênix Strength (volume
// weighted twice, so fs peaks at 6.0) and the per-criterion norms.
type ScoreResult struct {
	Score  int      `json:"score"`
	FS     float64  `json:"fs"`
	Passed []string `json:"passed"`
	Failed []string `json:"failed"`

	TendenciaNorm    float64 `json:"tendencia_norm"`
	MomentumNorm     float64 `json:"momentum_norm"`
	VolatilidadeNorm float64 `json:"volatilidade_norm"`
	SinalNorm        float64 `json:"sinal_norm"`
	VolumeNorm       float64 `json:"volume_norm"`

	Details CriteriaSet `json:"details"`
}

// CalculateScore counts passing criteria and composes the Fênix Strength.
// Because every norm floors at 0.10, fs itself floors at 0.6.
func CalculateScore(criteria CriteriaSet) ScoreResult {
	result := ScoreResult{
		Passed:  []string{},
		Failed:  []string{},
		Details: criteria,

		TendenciaNorm:    criteria["tendencia"].Norm,
		MomentumNorm:     criteria["momentum"].Norm,
		VolatilidadeNorm: criteria["volatilidade"].Norm,
		SinalNorm:        criteria["sinal_tecnico"].Norm,
		VolumeNorm:       criteria["volume"].Norm,
	}

	for _, name := range criteriaOrder {
		if criteria[name].Status {
			result.Score++
			result.Passed = append(result.Passed, name)
		} else {
			result.Failed = append(result.Failed, name)
		}
	}

	// volume com peso 2
	result.FS = result.TendenciaNorm +
		result.MomentumNorm +
		result.VolatilidadeNorm +
		result.SinalNorm +
		2*result.VolumeNorm

	return result
}
