package datafeed

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fenixinvest/fenix/Internal/opcoes"
)

// ============================================================================
// OPERACAO STORE - persistencia do ciclo de vida em Postgres
// ============================================================================

// OperacaoStore implements opcoes.Store on top of the opcoes_operacoes
// table. Monetary values go through decimal so the database never sees
// float noise like 1.3000000000000001.
type OperacaoStore struct {
	db *sql.DB
}

func NewOperacaoStore() *OperacaoStore {
	return &OperacaoStore{db: DB}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).Round(6).String()
}

func (s *OperacaoStore) CarregarOperacoesAbertas() ([]*opcoes.Operacao, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol, underlying, tipo, strike, vencimento,
		       lado_entrada, preco_entrada,
		       preco_atual, retorno_atual_pct, stop_protecao_pct, alvo_atual_pct, status
		FROM opcoes_operacoes
		WHERE status = 'aberta'
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("consultar operações abertas: %w", err)
	}
	defer rows.Close()

	var abertas []*opcoes.Operacao
	for rows.Next() {
		op := &opcoes.Operacao{}
		var precoAtual, retornoAtual sql.NullFloat64

		if err := rows.Scan(
			&op.ID, &op.Symbol, &op.Underlying, &op.Tipo, &op.Strike, &op.Vencimento,
			&op.LadoEntrada, &op.PrecoEntrada,
			&precoAtual, &retornoAtual, &op.StopProtecaoPct, &op.AlvoAtualPct, &op.Status,
		); err != nil {
			return nil, fmt.Errorf("ler operação: %w", err)
		}

		if precoAtual.Valid {
			op.PrecoAtual = &precoAtual.Float64
		}
		if retornoAtual.Valid {
			op.RetornoAtualPct = &retornoAtual.Float64
		}

		abertas = append(abertas, op)
	}
	return abertas, rows.Err()
}

// InserirOperacao persists a freshly opened trade and returns its id,
// generating one when the caller left it empty.
func (s *OperacaoStore) InserirOperacao(op *opcoes.Operacao) (string, error) {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}

	_, err := s.db.Exec(`
		INSERT INTO opcoes_operacoes
			(id, symbol, underlying, tipo, strike, vencimento,
			 lado_entrada, preco_entrada, stop_protecao_pct, alvo_atual_pct, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		op.ID, op.Symbol, op.Underlying, op.Tipo, money(op.Strike), op.Vencimento,
		op.LadoEntrada, money(op.PrecoEntrada), op.StopProtecaoPct, op.AlvoAtualPct, op.Status,
	)
	if err != nil {
		return "", fmt.Errorf("inserir operação %s: %w", op.Symbol, err)
	}
	return op.ID, nil
}

func (s *OperacaoStore) AtualizarOperacao(op *opcoes.Operacao) error {
	var precoAtual, retornoAtual any
	if op.PrecoAtual != nil {
		precoAtual = money(*op.PrecoAtual)
	}
	if op.RetornoAtualPct != nil {
		retornoAtual = money(*op.RetornoAtualPct)
	}

	_, err := s.db.Exec(`
		UPDATE opcoes_operacoes
		SET preco_atual = $2, retorno_atual_pct = $3,
		    stop_protecao_pct = $4, alvo_atual_pct = $5,
		    updated_at = $6
		WHERE id = $1`,
		op.ID, precoAtual, retornoAtual, op.StopProtecaoPct, op.AlvoAtualPct, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("atualizar operação %s: %w", op.ID, err)
	}
	return nil
}

// EncerrarOperacao closes the trade: flips the status, records the exit
// side (always the opposite of the entry) and the final return.
func (s *OperacaoStore) EncerrarOperacao(op *opcoes.Operacao, precoSaida float64, motivo string) error {
	ladoSaida := opcoes.DefinirLadoSaida(op.LadoEntrada)
	retornoFinal := opcoes.CalcularRetornoPct(precoSaida, op.PrecoEntrada, op.LadoEntrada)
	agora := time.Now().UTC()

	_, err := s.db.Exec(`
		UPDATE opcoes_operacoes
		SET status = 'encerrada', preco_saida = $2, lado_saida = $3,
		    timestamp_saida = $4, retorno_final_pct = $5, motivo_saida = $6,
		    updated_at = $4
		WHERE id = $1`,
		op.ID, money(precoSaida), ladoSaida, agora, money(retornoFinal), motivo,
	)
	if err != nil {
		return fmt.Errorf("encerrar operação %s: %w", op.ID, err)
	}

	op.Status = opcoes.StatusEncerrada
	op.PrecoSaida = &precoSaida
	op.LadoSaida = &ladoSaida
	op.RetornoFinalPct = &retornoFinal
	ts := agora.Format(time.RFC3339)
	op.TimestampSaida = &ts
	op.MotivoSaida = &motivo
	return nil
}
