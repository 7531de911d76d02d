package bp

import (
	"math"
	"testing"
)

// setupFrame builds a frame wide enough for swing scans, with the norms
// already written on the last candle.
func setupFrame(n int, tendNorm, momNorm float64) *Frame {
	f := blankFrame(n)
	for i := 0; i < n; i++ {
		f.Close[i] = 100
		f.High[i] = 101
		f.Low[i] = 99
	}
	i := f.Last()
	f.TendenciaNorm[i] = tendNorm
	f.MomentumNorm[i] = momNorm
	f.ATR[i] = 2.0
	return f
}

func TestFindLastSwingHigh(t *testing.T) {
	tests := []struct {
		name     string
		highs    []float64
		minPrice float64
		want     float64
		wantOK   bool
	}{
		{"classic pattern", []float64{1, 2, 3, 2, 1}, 0, 3, true},
		{"pattern below min price rejected", []float64{1, 2, 3, 2, 1}, 5, 0, false},
		{"monotonic series has no swing", []float64{1, 2, 3, 4, 5}, 0, 0, false},
		{"too short", []float64{1, 2, 3}, 0, 0, false},
		{"newest swing wins", []float64{1, 2, 5, 2, 1, 2, 4, 2, 1}, 0, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findLastSwingHigh(tt.highs, maxLookbackSwings, tt.minPrice)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("got (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFindLastSwingLow(t *testing.T) {
	got, ok := findLastSwingLow([]float64{5, 4, 3, 4, 5}, maxLookbackSwings, 10)
	if !ok || got != 3 {
		t.Errorf("got (%v, %v), want (3, true)", got, ok)
	}

	if _, ok := findLastSwingLow([]float64{5, 4, 3, 4, 5}, maxLookbackSwings, 2); ok {
		t.Error("swing above max price must be rejected")
	}
}

func TestSwingLookbackWindow(t *testing.T) {
	// a single swing high far outside the 80-candle window
	highs := make([]float64, 120)
	for i := range highs {
		highs[i] = 1
	}
	highs[3] = 2
	highs[5] = 10
	highs[4], highs[6] = 5, 5
	// pattern at i=5: 2 < 5 < 10 > 5 > 1

	if _, ok := findLastSwingHigh(highs, maxLookbackSwings, 0); ok {
		t.Error("swing outside the lookback window must not be found")
	}
	if got, ok := findLastSwingHigh(highs, 200, 0); !ok || got != 10 {
		t.Errorf("wider lookback should find the swing, got (%v, %v)", got, ok)
	}
}

func TestGenerateTradeSetupDirection(t *testing.T) {
	tests := []struct {
		name     string
		tendNorm float64
		momNorm  float64
		want     string // "" means nil setup
	}{
		{"both strong goes long", 0.6, 0.7, "LONG"},
		{"both weak goes short", 0.4, 0.3, "SHORT"},
		{"disagreement yields nothing", 0.6, 0.4, ""},
		{"opposite disagreement yields nothing", 0.3, 0.8, ""},
		{"exact midpoint goes long", 0.5, 0.5, "LONG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFrame(30, tt.tendNorm, tt.momNorm)
			got := GenerateTradeSetup(f, 3)

			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected nil setup, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a setup, got nil")
			}
			if got.Operacao != tt.want {
				t.Errorf("operacao = %q, want %q", got.Operacao, tt.want)
			}
		})
	}
}

func TestGenerateTradeSetupDefaultNorms(t *testing.T) {
	// norms never written: both default to 0.5, which reads as LONG
	f := setupFrame(30, math.NaN(), math.NaN())
	got := GenerateTradeSetup(f, 3)
	if got == nil || got.Operacao != "LONG" {
		t.Fatalf("got %+v, want LONG from the 0.5 defaults", got)
	}
}

func TestGenerateTradeSetupDistances(t *testing.T) {
	const atr = 2.0

	t.Run("max strength caps rr at 3", func(t *testing.T) {
		f := setupFrame(30, 0.9, 0.9)
		got := GenerateTradeSetup(f, 5)
		if got == nil {
			t.Fatal("expected a setup")
		}
		// fs_norm = 1: stop 1.2 ATR, raw target 5 ATR capped at 3.6 ATR
		if !almostEqual(got.StopDistATR, 1.2, 1e-9) {
			t.Errorf("stop dist = %v ATR, want 1.2", got.StopDistATR)
		}
		if !almostEqual(got.TargetDistATR, 3.6, 1e-9) {
			t.Errorf("target dist = %v ATR, want 3.6 after the cap", got.TargetDistATR)
		}
		if !almostEqual(got.RR, 3.0, 1e-6) {
			t.Errorf("rr = %v, want 3.0", got.RR)
		}
		if !almostEqual(got.Stop, got.Entrada-1.2*atr, 1e-9) {
			t.Errorf("stop = %v with entrada %v", got.Stop, got.Entrada)
		}
	})

	t.Run("zero strength widens stop and shortens target", func(t *testing.T) {
		f := setupFrame(30, 0.9, 0.9)
		got := GenerateTradeSetup(f, 0)
		if got == nil {
			t.Fatal("expected a setup")
		}
		// fs_norm = 0: stop 3 ATR, target 2 ATR
		if !almostEqual(got.StopDistATR, 3.0, 1e-9) {
			t.Errorf("stop dist = %v ATR, want 3.0", got.StopDistATR)
		}
		if !almostEqual(got.TargetDistATR, 2.0, 1e-9) {
			t.Errorf("target dist = %v ATR, want 2.0", got.TargetDistATR)
		}
		if !almostEqual(got.RR, 2.0/3.0, 1e-6) {
			t.Errorf("rr = %v, want 0.667", got.RR)
		}
	})
}

func TestGenerateTradeSetupEntryFallback(t *testing.T) {
	// flat highs: no swing pattern, LONG falls back to max(high, close)
	f := setupFrame(30, 0.8, 0.8)
	got := GenerateTradeSetup(f, 4)
	if got == nil {
		t.Fatal("expected a setup")
	}
	if got.Entrada != 101 {
		t.Errorf("entrada = %v, want the last high 101", got.Entrada)
	}
}

func TestGenerateTradeSetupUsesSwingEntry(t *testing.T) {
	f := setupFrame(40, 0.8, 0.8)
	// carve a swing high at 110 a few candles back
	n := f.Len()
	f.High[n-8] = 103
	f.High[n-7] = 106
	f.High[n-6] = 110
	f.High[n-5] = 106
	f.High[n-4] = 103

	got := GenerateTradeSetup(f, 4)
	if got == nil {
		t.Fatal("expected a setup")
	}
	if got.Entrada != 110 {
		t.Errorf("entrada = %v, want the swing high 110", got.Entrada)
	}
}

func TestGenerateTradeSetupShortEntryClamp(t *testing.T) {
	f := setupFrame(30, 0.2, 0.2)
	got := GenerateTradeSetup(f, 2)
	if got == nil {
		t.Fatal("expected a setup")
	}
	// flat lows at 99, close 100: fallback entry min(low, close) = 99
	if got.Entrada != 99 {
		t.Errorf("entrada = %v, want 99", got.Entrada)
	}
	if got.Stop <= got.Entrada {
		t.Errorf("short stop %v must sit above entrada %v", got.Stop, got.Entrada)
	}
	if got.Alvo >= got.Entrada {
		t.Errorf("short alvo %v must sit below entrada %v", got.Alvo, got.Entrada)
	}
}

func TestGenerateTradeSetupATRFallback(t *testing.T) {
	f := setupFrame(30, 0.8, 0.8)
	f.ATR[f.Last()] = math.NaN()

	got := GenerateTradeSetup(f, 5)
	if got == nil {
		t.Fatal("expected a setup")
	}
	// fallback ATR = max(1.5% of 100, 0.10) = 1.5; stop dist 1.2 ATR
	wantStop := got.Entrada - 1.2*1.5
	if !almostEqual(got.Stop, wantStop, 1e-9) {
		t.Errorf("stop = %v, want %v from the fallback ATR", got.Stop, wantStop)
	}
}

func TestGenerateTradeSetupEmptyFrame(t *testing.T) {
	if got := GenerateTradeSetup(NewFrame(nil), 3); got != nil {
		t.Errorf("empty frame should yield nil, got %+v", got)
	}
	if got := GenerateTradeSetup(nil, 3); got != nil {
		t.Errorf("nil frame should yield nil, got %+v", got)
	}
}
