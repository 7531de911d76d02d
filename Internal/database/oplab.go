package datafeed

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fenixinvest/fenix/Internal/utils"
)

// ============================================================================
// OPLAB - cotacao de opcoes
// ============================================================================

// OplabSource resolves option premiums from the Oplab market API. It
// satisfies the opcoes.QuoteSource contract: (0, nil) means no usable
// price right now.
type OplabSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Retry   utils.RetryConfig
}

func NewOplabSource() *OplabSource {
	base := os.Getenv("OPLAB_BASE_URL")
	if base == "" {
		base = "https://api.oplab.com.br/v3"
	}
	return &OplabSource{
		BaseURL: strings.TrimRight(base, "/"),
		APIKey:  os.Getenv("OPLAB_API_KEY"),
		Client:  &http.Client{Timeout: 20 * time.Second},
		Retry:   utils.DefaultRetryConfig(),
	}
}

type oplabOption struct {
	Bid   *float64 `json:"bid"`
	Ask   *float64 `json:"ask"`
	Last  *float64 `json:"last"`
	Close *float64 `json:"close"`
}

// GetOptionPrice picks the best available premium: last trade first, then
// the bid/ask midpoint, then the previous close.
func (o *OplabSource) GetOptionPrice(symbol string) (float64, error) {
	url := fmt.Sprintf("%s/market/options/%s", o.BaseURL, strings.ToUpper(symbol))

	var body []byte
	err := utils.RetryWithBackoff(func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Access-Token", o.APIKey)
		req.Header.Set("accept", "application/json")

		resp, err := o.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("oplab status %d para %s", resp.StatusCode, symbol)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}, o.Retry)
	if err != nil {
		return 0, fmt.Errorf("cotação de %s: %w", symbol, err)
	}

	opt, err := parseOplabBody(body)
	if err != nil {
		return 0, fmt.Errorf("decodificar cotação de %s: %w", symbol, err)
	}
	if opt == nil {
		return 0, nil
	}

	return pickOptionPrice(opt), nil
}

// parseOplabBody accepts both response shapes: a bare array or an object
// wrapping a "data" array.
func parseOplabBody(body []byte) (*oplabOption, error) {
	var asList []oplabOption
	if err := json.Unmarshal(body, &asList); err == nil {
		if len(asList) == 0 {
			return nil, nil
		}
		return &asList[0], nil
	}

	var wrapped struct {
		Data []oplabOption `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Data) == 0 {
		return nil, nil
	}
	return &wrapped.Data[0], nil
}

func pickOptionPrice(opt *oplabOption) float64 {
	if opt.Last != nil && *opt.Last > 0 {
		return *opt.Last
	}
	if opt.Bid != nil && opt.Ask != nil && *opt.Bid > 0 && *opt.Ask > 0 {
		return (*opt.Bid + *opt.Ask) / 2
	}
	if opt.Close != nil && *opt.Close > 0 {
		return *opt.Close
	}
	return 0
}
