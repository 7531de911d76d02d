package bp

import "testing"

// analysisWith builds an AssetAnalysis whose frame will produce a LONG
// setup, with the given binary score and fs.
func analysisWith(ticker string, score int, fs, momNorm, tendNorm, volNorm float64) *AssetAnalysis {
	f := setupFrame(30, 0.8, 0.8)
	return &AssetAnalysis{
		Ticker: ticker,
		Frame:  f,
		Score: ScoreResult{
			Score:         score,
			FS:            fs,
			MomentumNorm:  momNorm,
			TendenciaNorm: tendNorm,
			VolumeNorm:    volNorm,
			Details: CriteriaSet{
				"tendencia": CriteriaResult{Norm: tendNorm},
			},
		},
	}
}

func TestSelectTopAssetsFiltersAndRanks(t *testing.T) {
	results := map[string]*AssetAnalysis{
		"PETR4": analysisWith("PETR4", 4, 4.2, 0.7, 0.8, 0.9),
		"VALE3": analysisWith("VALE3", 5, 5.1, 0.9, 0.9, 1.0),
		"ITUB4": analysisWith("ITUB4", 2, 3.0, 0.5, 0.5, 0.5), // below score_min
		"MGLU3": analysisWith("MGLU3", 3, 3.4, 0.4, 0.6, 0.3),
	}

	got := SelectTopAssets(results, 3, 5)

	if len(got) != 3 {
		t.Fatalf("selected %d assets, want 3", len(got))
	}

	wantOrder := []string{"VALE3", "PETR4", "MGLU3"}
	for i, want := range wantOrder {
		if got[i].Ticker != want {
			t.Errorf("rank %d = %s, want %s", i, got[i].Ticker, want)
		}
	}

	if got[0].Trade == nil {
		t.Fatal("selected asset must carry a trade setup")
	}
	if got[0].Trade.Operacao != "LONG" {
		t.Errorf("operacao = %q, want LONG", got[0].Trade.Operacao)
	}
}

func TestSelectTopAssetsTieBreaksByMomentum(t *testing.T) {
	results := map[string]*AssetAnalysis{
		"AAAA4": analysisWith("AAAA4", 4, 4.0, 0.5, 0.8, 0.9),
		"BBBB4": analysisWith("BBBB4", 4, 4.0, 0.9, 0.8, 0.9),
	}

	got := SelectTopAssets(results, 3, 5)
	if len(got) != 2 {
		t.Fatalf("selected %d, want 2", len(got))
	}
	if got[0].Ticker != "BBBB4" {
		t.Errorf("equal fs must rank by momentum norm, got %s first", got[0].Ticker)
	}
}

func TestSelectTopAssetsTruncatesToTopN(t *testing.T) {
	results := map[string]*AssetAnalysis{}
	for _, tk := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		results[tk] = analysisWith(tk, 4, 4.0, 0.7, 0.8, 0.9)
	}

	got := SelectTopAssets(results, 3, 5)
	if len(got) != 5 {
		t.Errorf("selected %d, want top_n = 5", len(got))
	}
}

func TestSelectTopAssetsSkipsInvalidEntries(t *testing.T) {
	noFrame := analysisWith("SEMF3", 5, 5.0, 0.9, 0.9, 1.0)
	noFrame.Frame = nil

	noDetails := analysisWith("SEMD3", 5, 5.0, 0.9, 0.9, 1.0)
	noDetails.Score.Details = CriteriaSet{}

	// trend and momentum disagree on the last candle: no setup
	noSetup := analysisWith("SEMS3", 5, 5.0, 0.9, 0.9, 1.0)
	i := noSetup.Frame.Last()
	noSetup.Frame.TendenciaNorm[i] = 0.8
	noSetup.Frame.MomentumNorm[i] = 0.2

	results := map[string]*AssetAnalysis{
		"SEMF3": noFrame,
		"SEMD3": noDetails,
		"SEMS3": noSetup,
		"OKOK3": analysisWith("OKOK3", 4, 4.0, 0.7, 0.8, 0.9),
	}

	got := SelectTopAssets(results, 3, 5)
	if len(got) != 1 || got[0].Ticker != "OKOK3" {
		t.Fatalf("got %v, want only OKOK3", got)
	}
}

func TestSelectTopAssetsEmptyInput(t *testing.T) {
	if got := SelectTopAssets(map[string]*AssetAnalysis{}, 3, 5); len(got) != 0 {
		t.Errorf("empty input should select nothing, got %v", got)
	}
}
