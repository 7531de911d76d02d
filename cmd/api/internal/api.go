package internal

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fenixinvest/fenix/Internal/bp"
	datafeed "github.com/fenixinvest/fenix/Internal/database"
	"github.com/fenixinvest/fenix/Internal/opcoes"
	"github.com/fenixinvest/fenix/Internal/utils/config"
	"github.com/fenixinvest/fenix/Internal/utils/formatting"
)

type API struct {
	JWT        *JWTManager
	Config     *config.Config
	Candles    bp.CandleSource
	Assinantes *datafeed.AssinanteStore
	ScanLog    *datafeed.ScanLogStore
	Operacoes  *datafeed.OperacaoStore
	Monitor    *opcoes.Monitor

	// Universe resolves the current ticker list per request, so a refresh
	// of the IBOV CSV is picked up without a restart
	Universe func() []string
}

// ============================================================================
// HEALTH / TOKEN
// ============================================================================

func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := datafeed.HealthCheck(); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleToken exchanges a subscriber access token for a JWT carrying the
// subscribed products.
func (api *API) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		WriteError(w, http.StatusBadRequest, "Token de acesso obrigatório")
		return
	}

	assinante, err := api.Assinantes.BuscarPorToken(req.Token)
	if err != nil {
		log.Printf("❌ Erro ao consultar assinante: %v", err)
		WriteError(w, http.StatusInternalServerError, "Falha ao validar token")
		return
	}
	if assinante == nil {
		WriteError(w, http.StatusUnauthorized, "Token inválido ou assinatura inativa")
		return
	}

	jwtToken, err := api.JWT.GenerateToken(assinante.Nome, assinante.Produtos, 24)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Falha ao gerar token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":     jwtToken,
		"assinante": assinante.Nome,
		"produtos":  assinante.Produtos,
	})
}

// ============================================================================
// BP-FENIX
// ============================================================================

func (api *API) profileFrom(r *http.Request) (string, *config.ProfileConfig) {
	name := r.URL.Query().Get("profile")
	if name == "" {
		name = "default"
	}
	return name, api.Config.GetProfile(name)
}

// HandleGetScan returns the last recorded cycle for a profile.
func (api *API) HandleGetScan(w http.ResponseWriter, r *http.Request) {
	name, profile := api.profileFrom(r)
	if profile == nil {
		WriteError(w, http.StatusBadRequest, "Perfil desconhecido: "+name)
		return
	}

	entry, err := api.ScanLog.UltimoCiclo(name)
	if err != nil {
		log.Printf("❌ Erro ao consultar scan log: %v", err)
		WriteError(w, http.StatusInternalServerError, "Falha ao consultar histórico")
		return
	}
	if entry == nil {
		WriteError(w, http.StatusNotFound, "Nenhum ciclo registrado para "+name)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

// HandleRunScan executes a full cycle synchronously and records it.
func (api *API) HandleRunScan(w http.ResponseWriter, r *http.Request) {
	name, profile := api.profileFrom(r)
	if profile == nil {
		WriteError(w, http.StatusBadRequest, "Perfil desconhecido: "+name)
		return
	}

	tickers := api.Universe()
	if len(tickers) == 0 {
		WriteError(w, http.StatusServiceUnavailable, "Universo de tickers indisponível")
		return
	}

	startedAt := time.Now()
	cycle := bp.RunCycle(api.Candles, tickers, bp.CycleOptions{
		Period:   profile.Period,
		Interval: profile.Interval,
		ScoreMin: profile.ScoreMin,
		TopN:     profile.TopN,
	})

	if err := api.ScanLog.RegistrarCiclo(name, cycle, startedAt); err != nil {
		log.Printf("⚠️  Falha ao registrar ciclo: %v", err)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profile":    name,
		"processed":  cycle.Processed,
		"skipped":    cycle.Skipped,
		"top_assets": cycle.TopAssets,
	})
}

// HandleTopAssets returns the ranked selection of the last recorded cycle.
func (api *API) HandleTopAssets(w http.ResponseWriter, r *http.Request) {
	name, profile := api.profileFrom(r)
	if profile == nil {
		WriteError(w, http.StatusBadRequest, "Perfil desconhecido: "+name)
		return
	}

	entry, err := api.ScanLog.UltimoCiclo(name)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Falha ao consultar histórico")
		return
	}
	if entry == nil {
		WriteError(w, http.StatusNotFound, "Nenhum ciclo registrado para "+name)
		return
	}

	var topAssets []bp.RankedCandidate
	if err := json.Unmarshal([]byte(entry.TopAssets), &topAssets); err != nil {
		WriteError(w, http.StatusInternalServerError, "Histórico corrompido")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profile":     name,
		"finished_at": entry.FinishedAt,
		"top_assets":  topAssets,
	})
}

// ============================================================================
// FENIX OPCOES
// ============================================================================

func (api *API) HandleGetOperacoes(w http.ResponseWriter, r *http.Request) {
	abertas, err := api.Operacoes.CarregarOperacoesAbertas()
	if err != nil {
		log.Printf("❌ Erro ao carregar operações: %v", err)
		WriteError(w, http.StatusInternalServerError, "Falha ao carregar operações")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"operacoes": abertas})
}

func (api *API) HandleCreateOperacao(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol       string  `json:"symbol"`
		Underlying   string  `json:"underlying"`
		Tipo         string  `json:"tipo"`
		Strike       float64 `json:"strike"`
		Vencimento   string  `json:"vencimento"`
		LadoEntrada  string  `json:"lado_entrada"`
		PrecoEntrada float64 `json:"preco_entrada"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Corpo inválido")
		return
	}

	if req.Symbol == "" || req.Underlying == "" || req.LadoEntrada == "" || req.PrecoEntrada <= 0 {
		WriteError(w, http.StatusBadRequest, "Campos obrigatórios: symbol, underlying, lado_entrada, preco_entrada")
		return
	}

	req.Tipo = strings.ToUpper(strings.TrimSpace(req.Tipo))
	req.LadoEntrada = strings.ToUpper(strings.TrimSpace(req.LadoEntrada))
	if err := opcoes.ValidarTipoELado(req.Tipo, req.LadoEntrada); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	vencimento, err := formatting.ParseDate(req.Vencimento)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Vencimento inválido (use dd/mm/aaaa)")
		return
	}

	op := opcoes.NovaOperacao("", req.Symbol, req.Underlying, req.Tipo,
		req.Strike, vencimento, req.LadoEntrada, req.PrecoEntrada)

	id, err := api.Operacoes.InserirOperacao(op)
	if err != nil {
		log.Printf("❌ Erro ao inserir operação: %v", err)
		WriteError(w, http.StatusInternalServerError, "Falha ao registrar operação")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "operacao": op})
}

// HandleChecarOpcoes triggers the same sweep the scheduler runs.
func (api *API) HandleChecarOpcoes(w http.ResponseWriter, r *http.Request) {
	resultados, err := api.Monitor.ChecarManual()
	if err != nil {
		log.Printf("❌ Erro no monitoramento manual: %v", err)
		WriteError(w, http.StatusInternalServerError, "Falha ao processar operações")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"resultados": resultados})
}
