package types

// Bar is a single OHLCV candle. Timestamps are RFC3339 strings, oldest-first
// after datafeed sanitization.
type Bar struct {
	Timestamp string  `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// Assinante is a subscriber record resolved from an access token.
type Assinante struct {
	Nome     string   `json:"nome"`
	Token    string   `json:"-"`
	Produtos []string `json:"produtos"`
	Ativo    bool     `json:"ativo"`
}

// TemProduto reports whether the subscriber is entitled to a product
// ("bp_fenix", "fenix_opcoes", ...).
func (a *Assinante) TemProduto(produto string) bool {
	for _, p := range a.Produtos {
		if p == produto {
			return true
		}
	}
	return false
}
