package opcoes

import (
	"fmt"
	"log"
	"time"
)

// ============================================================================
// MONITORAMENTO - varre as operacoes abertas contra o preco de mercado
// ============================================================================

// QuoteSource resolves the current premium for an option symbol. A (0, nil)
// return means the source has no usable price right now.
type QuoteSource interface {
	GetOptionPrice(symbol string) (float64, error)
}

// Store persists the operation lifecycle.
type Store interface {
	CarregarOperacoesAbertas() ([]*Operacao, error)
	AtualizarOperacao(op *Operacao) error
	EncerrarOperacao(op *Operacao, precoSaida float64, motivo string) error
}

// Notifier broadcasts lifecycle events to the configured channels.
type Notifier interface {
	Enviar(assunto, mensagem string) error
}

// Resultado is the per-operation outcome of a monitoring pass. Erro is set
// (and the numeric fields left zero) when the quote could not be obtained.
type Resultado struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	PrecoAtual float64 `json:"preco_atual,omitempty"`
	RetornoPct float64 `json:"retorno_pct,omitempty"`
	StopPct    float64 `json:"stop_pct,omitempty"`
	AlvoPct    float64 `json:"alvo_pct,omitempty"`
	Encerrar   bool    `json:"encerrar,omitempty"`
	Motivo     string  `json:"motivo,omitempty"`
	Erro       string  `json:"erro,omitempty"`
}

// Monitor wires the quote source, the store and the notifier.
type Monitor struct {
	Quotes   QuoteSource
	Store    Store
	Notifier Notifier

	// Now is swappable for tests; defaults to time.Now
	Now func() time.Time
}

func NewMonitor(quotes QuoteSource, store Store, notifier Notifier) *Monitor {
	return &Monitor{Quotes: quotes, Store: store, Notifier: notifier, Now: time.Now}
}

// ProcessarTodas loads every open operation, prices it, runs the stop and
// milestone logic and persists the outcome. A missing quote skips that
// operation only; the batch always finishes.
func (m *Monitor) ProcessarTodas() ([]Resultado, error) {
	hoje := m.Now()

	abertas, err := m.Store.CarregarOperacoesAbertas()
	if err != nil {
		return nil, fmt.Errorf("carregar operações abertas: %w", err)
	}

	log.Printf("🔍 Monitorando %d operações abertas", len(abertas))

	resultados := make([]Resultado, 0, len(abertas))

	for _, op := range abertas {
		preco, err := m.Quotes.GetOptionPrice(op.Symbol)
		if err != nil || preco <= 0 {
			log.Printf("⚠️  Sem preço para %s, pulando", op.Symbol)
			resultados = append(resultados, Resultado{
				ID:     op.ID,
				Symbol: op.Symbol,
				Erro:   "Não foi possível obter preço da opção.",
			})
			continue
		}

		r := ProcessarOperacao(op, preco, hoje)

		if r.Encerrar {
			if err := m.Store.EncerrarOperacao(op, preco, r.Motivo); err != nil {
				log.Printf("❌ Erro ao encerrar %s: %v", op.Symbol, err)
			} else {
				m.notificarEncerramento(op, preco, r)
			}
		} else {
			if err := m.Store.AtualizarOperacao(op); err != nil {
				log.Printf("❌ Erro ao atualizar %s: %v", op.Symbol, err)
			}
		}

		resultados = append(resultados, Resultado{
			ID:         op.ID,
			Symbol:     op.Symbol,
			PrecoAtual: preco,
			RetornoPct: r.RetornoPct,
			StopPct:    r.StopPct,
			AlvoPct:    r.AlvoPct,
			Encerrar:   r.Encerrar,
			Motivo:     r.Motivo,
		})
	}

	return resultados, nil
}

// ChecarManual is the on-demand variant of the automatic sweep. Same
// logic, just triggered by the operator.
func (m *Monitor) ChecarManual() ([]Resultado, error) {
	return m.ProcessarTodas()
}

func (m *Monitor) notificarEncerramento(op *Operacao, preco float64, r ProcessResult) {
	if m.Notifier == nil {
		return
	}

	lado := DefinirLadoSaida(op.LadoEntrada)
	msg := fmt.Sprintf(
		"Operação encerrada: %s (%s)\nLado de saída: %s\nPreço: %.2f\nRetorno: %+.2f%%\nMotivo: %s",
		op.Symbol, op.Underlying, lado, preco, r.RetornoPct, r.Motivo,
	)
	if err := m.Notifier.Enviar("Fênix Opções - Encerramento", msg); err != nil {
		log.Printf("⚠️  Falha ao notificar encerramento de %s: %v", op.Symbol, err)
	}
}
