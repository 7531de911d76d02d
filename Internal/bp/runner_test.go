package bp

import (
	"errors"
	"sort"
	"testing"

	"github.com/fenixinvest/fenix/Internal/types"
)

type fakeSource struct {
	bars map[string][]types.Bar
	errs map[string]error
}

func (s *fakeSource) GetTickerCandles(ticker, period, interval string) ([]types.Bar, error) {
	if err := s.errs[ticker]; err != nil {
		return nil, err
	}
	return s.bars[ticker], nil
}

func TestRunCycle(t *testing.T) {
	source := &fakeSource{
		bars: map[string][]types.Bar{
			"PETR4": syntheticBars(250),
			"VALE3": syntheticBars(250),
			"SEMD3": nil, // feed has no data
		},
		errs: map[string]error{
			"ERRO3": errors.New("timeout"),
		},
	}

	cycle := RunCycle(source, []string{"PETR4", "VALE3", "SEMD3", "ERRO3"}, CycleOptions{})

	if cycle.Processed != 2 {
		t.Errorf("processed = %d, want 2", cycle.Processed)
	}
	if cycle.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", cycle.Skipped)
	}

	sort.Strings(cycle.SkippedTickers)
	if len(cycle.SkippedTickers) != 2 || cycle.SkippedTickers[0] != "ERRO3" || cycle.SkippedTickers[1] != "SEMD3" {
		t.Errorf("skipped tickers = %v", cycle.SkippedTickers)
	}

	for _, ticker := range []string{"PETR4", "VALE3"} {
		info, ok := cycle.Results[ticker]
		if !ok {
			t.Fatalf("missing result for %s", ticker)
		}
		if info.Frame == nil || info.Frame.Len() == 0 {
			t.Errorf("%s has an empty frame", ticker)
		}
		if info.Score.Score < 0 || info.Score.Score > 5 {
			t.Errorf("%s score out of range: %d", ticker, info.Score.Score)
		}
	}
}

func TestRunCycleDefaults(t *testing.T) {
	opts := CycleOptions{}
	opts.applyDefaults()

	if opts.Period != "2y" || opts.Interval != "1d" {
		t.Errorf("period/interval defaults = %s/%s", opts.Period, opts.Interval)
	}
	if opts.ScoreMin != 3 || opts.TopN != 5 {
		t.Errorf("score_min/top_n defaults = %d/%d", opts.ScoreMin, opts.TopN)
	}
}

func TestRunCycleEmptyUniverse(t *testing.T) {
	cycle := RunCycle(&fakeSource{}, nil, CycleOptions{})

	if cycle.Processed != 0 || cycle.Skipped != 0 {
		t.Errorf("empty universe: processed=%d skipped=%d", cycle.Processed, cycle.Skipped)
	}
	if len(cycle.TopAssets) != 0 {
		t.Errorf("top assets = %v, want none", cycle.TopAssets)
	}
}
