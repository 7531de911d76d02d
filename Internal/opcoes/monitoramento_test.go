package opcoes

import (
	"errors"
	"testing"
	"time"
)

type fakeQuotes struct {
	prices map[string]float64
	errs   map[string]error
}

func (q *fakeQuotes) GetOptionPrice(symbol string) (float64, error) {
	if err := q.errs[symbol]; err != nil {
		return 0, err
	}
	return q.prices[symbol], nil
}

type fakeStore struct {
	abertas []*Operacao
	loadErr error

	atualizadas []string
	encerradas  []string
	motivos     map[string]string
}

func (s *fakeStore) CarregarOperacoesAbertas() ([]*Operacao, error) {
	return s.abertas, s.loadErr
}

func (s *fakeStore) AtualizarOperacao(op *Operacao) error {
	s.atualizadas = append(s.atualizadas, op.ID)
	return nil
}

func (s *fakeStore) EncerrarOperacao(op *Operacao, precoSaida float64, motivo string) error {
	s.encerradas = append(s.encerradas, op.ID)
	if s.motivos == nil {
		s.motivos = map[string]string{}
	}
	s.motivos[op.ID] = motivo
	return nil
}

type fakeNotifier struct {
	enviadas []string
}

func (n *fakeNotifier) Enviar(assunto, mensagem string) error {
	n.enviadas = append(n.enviadas, assunto)
	return nil
}

func fixedMonitor(quotes QuoteSource, store Store, notifier Notifier) *Monitor {
	m := NewMonitor(quotes, store, notifier)
	m.Now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestProcessarTodas(t *testing.T) {
	hoje := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	vencLonge := hoje.AddDate(0, 0, 45)

	viva := abertaOperacao("COMPRA", 1.0, vencLonge)
	viva.ID = "viva"
	viva.Symbol = "VIVA11"

	stopada := abertaOperacao("COMPRA", 1.0, vencLonge)
	stopada.ID = "stopada"
	stopada.Symbol = "STOP11"

	semPreco := abertaOperacao("COMPRA", 1.0, vencLonge)
	semPreco.ID = "sem-preco"
	semPreco.Symbol = "SEMP11"

	store := &fakeStore{abertas: []*Operacao{viva, stopada, semPreco}}
	quotes := &fakeQuotes{
		prices: map[string]float64{
			"VIVA11": 1.10, // +10%, stays open
			"STOP11": 0.70, // -30%, initial stop
		},
		errs: map[string]error{
			"SEMP11": errors.New("oplab indisponível"),
		},
	}
	notifier := &fakeNotifier{}

	m := fixedMonitor(quotes, store, notifier)
	resultados, err := m.ProcessarTodas()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resultados) != 3 {
		t.Fatalf("got %d resultados, want 3", len(resultados))
	}

	byID := map[string]Resultado{}
	for _, r := range resultados {
		byID[r.ID] = r
	}

	if r := byID["viva"]; r.Encerrar || r.Erro != "" {
		t.Errorf("viva should stay open: %+v", r)
	}
	if r := byID["stopada"]; !r.Encerrar || r.Motivo != MotivoStopInicial {
		t.Errorf("stopada should close on initial stop: %+v", r)
	}
	if r := byID["sem-preco"]; r.Erro == "" {
		t.Errorf("missing quote must surface an erro: %+v", r)
	}

	if len(store.atualizadas) != 1 || store.atualizadas[0] != "viva" {
		t.Errorf("atualizadas = %v, want [viva]", store.atualizadas)
	}
	if len(store.encerradas) != 1 || store.encerradas[0] != "stopada" {
		t.Errorf("encerradas = %v, want [stopada]", store.encerradas)
	}
	if store.motivos["stopada"] != MotivoStopInicial {
		t.Errorf("motivo = %q", store.motivos["stopada"])
	}

	// only the close triggers a notification
	if len(notifier.enviadas) != 1 {
		t.Errorf("notificações = %v, want exactly one", notifier.enviadas)
	}
}

func TestProcessarTodasLoadError(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("db down")}
	m := fixedMonitor(&fakeQuotes{}, store, nil)

	if _, err := m.ProcessarTodas(); err == nil {
		t.Fatal("expected an error when the store fails to load")
	}
}

func TestProcessarTodasZeroPriceSkips(t *testing.T) {
	hoje := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	op := abertaOperacao("COMPRA", 1.0, hoje.AddDate(0, 0, 45))
	op.ID = "zerada"
	op.Symbol = "ZERO11"

	store := &fakeStore{abertas: []*Operacao{op}}
	quotes := &fakeQuotes{prices: map[string]float64{"ZERO11": 0}}

	m := fixedMonitor(quotes, store, nil)
	resultados, err := m.ProcessarTodas()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultados[0].Erro == "" {
		t.Error("zero price must be treated as missing quote")
	}
	if len(store.atualizadas) != 0 || len(store.encerradas) != 0 {
		t.Error("skipped operation must not be persisted")
	}
}

func TestChecarManualMatchesAutomatic(t *testing.T) {
	hoje := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	op := abertaOperacao("COMPRA", 1.0, hoje.AddDate(0, 0, 45))
	op.ID = "man"
	op.Symbol = "MANU11"

	store := &fakeStore{abertas: []*Operacao{op}}
	quotes := &fakeQuotes{prices: map[string]float64{"MANU11": 1.05}}

	m := fixedMonitor(quotes, store, nil)
	resultados, err := m.ChecarManual()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resultados) != 1 || resultados[0].Encerrar {
		t.Errorf("got %+v", resultados)
	}
}

func TestMultiNotifierFansOut(t *testing.T) {
	a := &fakeNotifier{}
	b := &fakeNotifier{}
	multi := &MultiNotifier{Canais: []Notifier{a, b}}

	if err := multi.Enviar("teste", "corpo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.enviadas) != 1 || len(b.enviadas) != 1 {
		t.Error("every channel must receive the message")
	}
}
