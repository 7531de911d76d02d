package datafeed

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fenixinvest/fenix/Internal/types"
	"github.com/fenixinvest/fenix/Internal/utils"
)

// ============================================================================
// YAHOO FINANCE - fonte de candles historicos
// ============================================================================

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooSource downloads historical candles from the Yahoo chart endpoint.
// It satisfies the bp.CandleSource contract: (nil, nil) means no usable
// data for the symbol.
type YahooSource struct {
	BaseURL string
	Client  *http.Client
	Retry   utils.RetryConfig
}

func NewYahooSource() *YahooSource {
	return &YahooSource{
		BaseURL: yahooBaseURL,
		Client:  &http.Client{Timeout: 20 * time.Second},
		Retry:   utils.DefaultRetryConfig(),
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetTickerCandles fetches period/interval candles for a B3 ticker. Bare
// tickers get the ".SA" suffix appended.
func (y *YahooSource) GetTickerCandles(ticker, period, interval string) ([]types.Bar, error) {
	symbol := normalizeTicker(ticker)
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s", y.BaseURL, symbol, period, interval)

	var body []byte
	var notFound bool

	err := utils.RetryWithBackoff(func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		req.Header.Set("Accept", "application/json")

		resp, err := y.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			notFound = true
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("yahoo status %d para %s", resp.StatusCode, symbol)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}, y.Retry)

	if err != nil {
		return nil, fmt.Errorf("baixar candles de %s: %w", symbol, err)
	}
	if notFound {
		return nil, nil
	}

	var parsed yahooChartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decodificar resposta de %s: %w", symbol, err)
	}

	if parsed.Chart.Error != nil || len(parsed.Chart.Result) == 0 {
		return nil, nil
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}

	return sanitizeBars(result.Timestamp, result.Indicators.Quote[0].Open,
		result.Indicators.Quote[0].High, result.Indicators.Quote[0].Low,
		result.Indicators.Quote[0].Close, result.Indicators.Quote[0].Volume, symbol), nil
}

func normalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t != "" && !strings.Contains(t, ".") {
		t += ".SA"
	}
	return t
}

// sanitizeBars rebuilds a clean series: rows with a missing close are
// dropped, timestamps must strictly increase (duplicates are skipped), and
// a series with fewer than 30 candles or zero total volume is rejected.
func sanitizeBars(timestamps []int64, open, high, low, closes, volume []*float64, symbol string) []types.Bar {
	bars := make([]types.Bar, 0, len(timestamps))
	totalVolume := 0.0
	lastTS := int64(0)

	for i, ts := range timestamps {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		if ts <= lastTS {
			continue
		}
		lastTS = ts

		bar := types.Bar{
			Timestamp: time.Unix(ts, 0).UTC().Format(time.RFC3339),
			Close:     *closes[i],
		}
		if i < len(open) && open[i] != nil {
			bar.Open = *open[i]
		}
		if i < len(high) && high[i] != nil {
			bar.High = *high[i]
		}
		if i < len(low) && low[i] != nil {
			bar.Low = *low[i]
		}
		if i < len(volume) && volume[i] != nil {
			bar.Volume = *volume[i]
		}

		totalVolume += bar.Volume
		bars = append(bars, bar)
	}

	if len(bars) < 30 {
		log.Printf("⚠️  %s: poucos candles (%d)", symbol, len(bars))
		return nil
	}
	if totalVolume == 0 {
		log.Printf("⚠️  %s: volume zerado, ignorado", symbol)
		return nil
	}

	return bars
}
