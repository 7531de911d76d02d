package handlers

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fenixinvest/fenix/Internal/bp"
	datafeed "github.com/fenixinvest/fenix/Internal/database"
	"github.com/fenixinvest/fenix/Internal/opcoes"
	"github.com/fenixinvest/fenix/Internal/utils/config"
	"github.com/fenixinvest/fenix/Internal/utils/formatting"
)

// ============================================================================
// HANDLERS DO MENU CLI
// ============================================================================

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptFloat(label string) float64 {
	v, _ := strconv.ParseFloat(prompt(label), 64)
	return v
}

// HandleRunScan executes one full cycle and prints the ranked selection.
func HandleRunScan(candles bp.CandleSource, universe func() []string, cfg *config.Config, scanLog *datafeed.ScanLogStore, profileName string) {
	profile := cfg.GetProfile(profileName)
	if profile == nil {
		fmt.Printf("Perfil desconhecido: %s\n", profileName)
		return
	}

	tickers := universe()
	if len(tickers) == 0 {
		fmt.Println("Universo de tickers vazio. Tente atualizar a lista do IBOV.")
		return
	}

	startedAt := time.Now()
	cycle := bp.RunCycle(candles, tickers, bp.CycleOptions{
		Period:   profile.Period,
		Interval: profile.Interval,
		ScoreMin: profile.ScoreMin,
		TopN:     profile.TopN,
	})

	if scanLog != nil {
		if err := scanLog.RegistrarCiclo(profileName, cycle, startedAt); err != nil {
			fmt.Printf("Aviso: ciclo não registrado no banco: %v\n", err)
		}
	}

	PrintTopAssets(cycle.TopAssets)
}

// PrintTopAssets renders the ranked candidates with their Modelo C setup.
func PrintTopAssets(topAssets []bp.RankedCandidate) {
	formatting.Separator(60)
	if len(topAssets) == 0 {
		fmt.Println("Nenhum ativo selecionado neste ciclo.")
		formatting.Separator(60)
		return
	}

	fmt.Println("ATIVOS SELECIONADOS PELO BP-FÊNIX")
	formatting.Separator(60)
	for i, asset := range topAssets {
		fmt.Printf("%d. %s | Score %d | FS %.2f\n", i+1, asset.Ticker, asset.Score, asset.FS)
		if asset.Trade != nil {
			fmt.Printf("   %s | Entrada %s | Stop %s | Alvo %s | R/R %.2f\n",
				asset.Trade.Operacao,
				formatting.FormatBRL(asset.Trade.Entrada),
				formatting.FormatBRL(asset.Trade.Stop),
				formatting.FormatBRL(asset.Trade.Alvo),
				asset.Trade.RR)
		}
	}
	formatting.Separator(60)
}

// HandleRefreshUniverse forces a rebuild of the IBOV CSV.
func HandleRefreshUniverse(cfg *config.Config) {
	if err := datafeed.UpdateTickerFile(cfg.Global.UniverseCSV); err != nil {
		fmt.Printf("Falha ao atualizar universo: %v\n", err)
		return
	}
	tickers := datafeed.LoadUniverse(cfg.Global.UniverseCSV)
	fmt.Printf("Universo atualizado: %d tickers.\n", len(tickers))
}

// HandleListOperacoes prints the open option trades.
func HandleListOperacoes(store *datafeed.OperacaoStore) {
	abertas, err := store.CarregarOperacoesAbertas()
	if err != nil {
		fmt.Printf("Falha ao carregar operações: %v\n", err)
		return
	}
	if len(abertas) == 0 {
		fmt.Println("Nenhuma operação aberta.")
		return
	}

	formatting.Separator(60)
	for _, op := range abertas {
		retorno := "-"
		if op.RetornoAtualPct != nil {
			retorno = formatting.FormatPct(*op.RetornoAtualPct)
		}
		fmt.Printf("%s | %s %s | Entrada %s | Retorno %s | Stop %+.0f%% | Alvo %.0f%%\n",
			op.Symbol, op.LadoEntrada, op.Tipo,
			formatting.FormatBRL(op.PrecoEntrada), retorno,
			op.StopProtecaoPct, op.AlvoAtualPct)
	}
	formatting.Separator(60)
}

// HandleNovaOperacao collects a new trade from the operator and persists it.
func HandleNovaOperacao(store *datafeed.OperacaoStore) {
	symbol := prompt("Símbolo da opção (ex: PETRA240): ")
	underlying := prompt("Ativo-objeto (ex: PETR4): ")
	tipo := strings.ToUpper(prompt("Tipo (CALL/PUT): "))
	strike := promptFloat("Strike: ")
	vencStr := prompt("Vencimento (dd/mm/aaaa): ")
	lado := strings.ToUpper(prompt("Lado (COMPRA/VENDA): "))
	preco := promptFloat("Preço de entrada: ")

	vencimento, err := formatting.ParseDate(vencStr)
	if err != nil {
		fmt.Printf("Vencimento inválido: %v\n", err)
		return
	}
	if symbol == "" || underlying == "" || preco <= 0 {
		fmt.Println("Símbolo, ativo-objeto e preço de entrada são obrigatórios.")
		return
	}
	if err := opcoes.ValidarTipoELado(tipo, lado); err != nil {
		fmt.Printf("%v\n", err)
		return
	}

	op := opcoes.NovaOperacao("", symbol, underlying, tipo, strike, vencimento, lado, preco)
	id, err := store.InserirOperacao(op)
	if err != nil {
		fmt.Printf("Falha ao registrar operação: %v\n", err)
		return
	}
	fmt.Printf("Operação registrada (%s).\n", id)
}

// HandleChecarOpcoes runs the manual sweep and prints each outcome.
func HandleChecarOpcoes(monitor *opcoes.Monitor) {
	resultados, err := monitor.ChecarManual()
	if err != nil {
		fmt.Printf("Falha no monitoramento: %v\n", err)
		return
	}
	if len(resultados) == 0 {
		fmt.Println("Nenhuma operação aberta para checar.")
		return
	}

	formatting.Separator(60)
	for _, r := range resultados {
		if r.Erro != "" {
			fmt.Printf("%s | ERRO: %s\n", r.Symbol, r.Erro)
			continue
		}
		estado := "aberta"
		if r.Encerrar {
			estado = "ENCERRADA (" + r.Motivo + ")"
		}
		fmt.Printf("%s | Preço %s | Retorno %s | Stop %+.0f%% | Alvo %.0f%% | %s\n",
			r.Symbol, formatting.FormatBRL(r.PrecoAtual), formatting.FormatPct(r.RetornoPct),
			r.StopPct, r.AlvoPct, estado)
	}
	formatting.Separator(60)
}
