package opcoes

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// OPERACAO - uma operacao de opcao (CALL/PUT) com stop movel por milestones
// ============================================================================

const (
	StatusAberta    = "aberta"
	StatusEncerrada = "encerrada"

	TipoCall = "CALL"
	TipoPut  = "PUT"

	LadoCompra = "COMPRA"
	LadoVenda  = "VENDA"
)

// ValidarTipoELado rejects anything outside the CALL/PUT and COMPRA/VENDA
// domains. An unknown lado would zero every return calculation and leave
// the trade exitable only at D-3, so it never reaches the store.
func ValidarTipoELado(tipo, lado string) error {
	switch strings.ToUpper(tipo) {
	case TipoCall, TipoPut:
	default:
		return fmt.Errorf("tipo inválido: %q (use CALL ou PUT)", tipo)
	}
	switch strings.ToUpper(lado) {
	case LadoCompra, LadoVenda:
	default:
		return fmt.Errorf("lado inválido: %q (use COMPRA ou VENDA)", lado)
	}
	return nil
}

// Both knobs can be overridden from config at startup.
var (
	// initial protective stop, before the first milestone
	StopInicialPct = -25.0

	// close everything this many calendar days before expiry (D-3)
	DiasLimiteEncerramento = 3
)

// Operacao is an options trade tracked by the monitor. Exit fields stay
// nil while the trade is open.
type Operacao struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Underlying string    `json:"underlying"`
	Tipo       string    `json:"tipo"` // CALL / PUT
	Strike     float64   `json:"strike"`
	Vencimento time.Time `json:"vencimento"`

	LadoEntrada  string  `json:"lado_entrada"` // COMPRA / VENDA
	PrecoEntrada float64 `json:"preco_entrada"`

	PrecoAtual      *float64 `json:"preco_atual,omitempty"`
	RetornoAtualPct *float64 `json:"retorno_atual_pct,omitempty"`
	StopProtecaoPct float64  `json:"stop_protecao_pct"` // starts at -25
	AlvoAtualPct    float64  `json:"alvo_atual_pct"`    // 0 / 25 / 50 / 75 / 100
	Status          string   `json:"status"`

	LadoSaida       *string  `json:"lado_saida,omitempty"`
	PrecoSaida      *float64 `json:"preco_saida,omitempty"`
	TimestampSaida  *string  `json:"timestamp_saida,omitempty"`
	RetornoFinalPct *float64 `json:"retorno_final_pct,omitempty"`
	MotivoSaida     *string  `json:"motivo_saida,omitempty"`
}

// NovaOperacao fills the dynamic defaults for a freshly opened trade.
func NovaOperacao(id, symbol, underlying, tipo string, strike float64, vencimento time.Time, ladoEntrada string, precoEntrada float64) *Operacao {
	return &Operacao{
		ID:              id,
		Symbol:          symbol,
		Underlying:      underlying,
		Tipo:            tipo,
		Strike:          strike,
		Vencimento:      vencimento,
		LadoEntrada:     ladoEntrada,
		PrecoEntrada:    precoEntrada,
		StopProtecaoPct: StopInicialPct,
		AlvoAtualPct:    0,
		Status:          StatusAberta,
	}
}

// ============================================================================
// RETORNO
// ============================================================================

// CalcularRetornoPct is the side-adjusted percentual return. A sold option
// profits when the premium falls, so VENDA inverts the ratio.
func CalcularRetornoPct(precoAtual, precoEntrada float64, ladoEntrada string) float64 {
	if precoEntrada <= 0 {
		return 0
	}

	switch strings.ToUpper(ladoEntrada) {
	case LadoCompra:
		return (precoAtual/precoEntrada - 1) * 100
	case LadoVenda:
		if precoAtual <= 0 {
			return 0
		}
		return (precoEntrada/precoAtual - 1) * 100
	}
	return 0
}

// ============================================================================
// STOP MOVEL (MILESTONES)
// ============================================================================

// AtualizarStopEAlvo ratchets the milestone and protective stop. Triggers
// fire from the highest threshold down and at most one per check, so the
// pair only ever moves forward.
func AtualizarStopEAlvo(op *Operacao, retornoPct float64) {
	switch {
	case retornoPct >= 100 && op.AlvoAtualPct < 100:
		op.AlvoAtualPct = 100
		op.StopProtecaoPct = 75
	case retornoPct >= 75 && op.AlvoAtualPct < 75:
		op.AlvoAtualPct = 75
		op.StopProtecaoPct = 50
	case retornoPct >= 50 && op.AlvoAtualPct < 50:
		op.AlvoAtualPct = 50
		op.StopProtecaoPct = 25
	case retornoPct >= 25 && op.AlvoAtualPct < 25:
		op.AlvoAtualPct = 25
		op.StopProtecaoPct = 5
	}
}

// ============================================================================
// ENCERRAMENTO
// ============================================================================

// exit reason codes persisted with the operation
const (
	MotivoDMenos3      = "d_menos_3"
	MotivoStopInicial  = "stop_inicial"
	MotivoStopProtecao = "stop_protecao"
)

// DecidirEncerramento applies the exit rules in priority order: expiry
// window first, then the initial -25% stop for trades that never reached
// a milestone, then the trailing stop.
func DecidirEncerramento(op *Operacao, retornoPct float64, hoje time.Time) (bool, string) {
	diasParaVenc := diasEntre(hoje, op.Vencimento)

	if diasParaVenc <= DiasLimiteEncerramento {
		return true, MotivoDMenos3
	}

	if op.AlvoAtualPct == 0 && retornoPct <= StopInicialPct {
		return true, MotivoStopInicial
	}

	if retornoPct <= op.StopProtecaoPct {
		return true, MotivoStopProtecao
	}

	return false, ""
}

// diasEntre counts whole calendar days from a to b, ignoring clock time.
func diasEntre(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ============================================================================
// PROCESSAMENTO
// ============================================================================

// ProcessResult is the outcome of one monitoring pass on one operation.
type ProcessResult struct {
	Encerrar   bool
	Motivo     string
	RetornoPct float64
	StopPct    float64
	AlvoPct    float64
}

// ProcessarOperacao runs the full per-check pipeline: return calculation,
// milestone ratchet, then the exit decision against the updated stop.
func ProcessarOperacao(op *Operacao, precoAtual float64, hoje time.Time) ProcessResult {
	retornoPct := CalcularRetornoPct(precoAtual, op.PrecoEntrada, op.LadoEntrada)

	op.PrecoAtual = &precoAtual
	op.RetornoAtualPct = &retornoPct

	AtualizarStopEAlvo(op, retornoPct)

	encerrar, motivo := DecidirEncerramento(op, retornoPct, hoje)

	return ProcessResult{
		Encerrar:   encerrar,
		Motivo:     motivo,
		RetornoPct: retornoPct,
		StopPct:    op.StopProtecaoPct,
		AlvoPct:    op.AlvoAtualPct,
	}
}

// DefinirLadoSaida is always the opposite of the entry side.
func DefinirLadoSaida(ladoEntrada string) string {
	if strings.ToUpper(ladoEntrada) == LadoVenda {
		return LadoCompra
	}
	return LadoVenda
}
