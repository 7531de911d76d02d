package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/fenixinvest/fenix/Internal/bp"
	"github.com/fenixinvest/fenix/Internal/opcoes"
	"github.com/fenixinvest/fenix/Internal/utils"
	"github.com/fenixinvest/fenix/Internal/utils/config"
)

// ============================================================================
// SCHEDULER - ciclos automaticos durante o pregao
// ============================================================================

// Scheduler drives the periodic BP-Fênix scans and the option monitoring
// sweeps. Both only run while the B3 session is open.
type Scheduler struct {
	Cfg      *config.Config
	Candles  bp.CandleSource
	Universe func() []string
	Monitor  *opcoes.Monitor

	// OnCycle receives every finished scan (persistence, notification)
	OnCycle func(profile string, cycle *bp.CycleResult, startedAt time.Time)

	// Now is swappable for tests
	Now func() time.Time
}

func New(cfg *config.Config, candles bp.CandleSource, universe func() []string, monitor *opcoes.Monitor) *Scheduler {
	return &Scheduler{
		Cfg:      cfg,
		Candles:  candles,
		Universe: universe,
		Monitor:  monitor,
		Now:      time.Now,
	}
}

// RunScans blocks, executing one scan per interval for the given profile
// until the context is cancelled. Outside market hours the tick is skipped.
func (s *Scheduler) RunScans(ctx context.Context, profileName string) {
	profile := s.Cfg.GetProfile(profileName)
	if profile == nil {
		log.Printf("❌ Perfil desconhecido no scheduler: %s", profileName)
		return
	}

	interval := time.Duration(profile.ScanIntervalMins) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	log.Printf("⏰ Scheduler de scans ativo (perfil %s, a cada %v)", profileName, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.runScanOnce(profileName, profile)

		select {
		case <-ctx.Done():
			log.Println("⏹️  Scheduler de scans encerrado")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runScanOnce(profileName string, profile *config.ProfileConfig) {
	status, open := utils.CheckMarketStatus(s.Now(), s.Cfg)
	if !open {
		log.Printf("💤 %s, scan adiado", status)
		return
	}

	tickers := s.Universe()
	if len(tickers) == 0 {
		log.Println("⚠️  Universo vazio, scan adiado")
		return
	}

	startedAt := s.Now()
	cycle := bp.RunCycle(s.Candles, tickers, bp.CycleOptions{
		Period:   profile.Period,
		Interval: profile.Interval,
		ScoreMin: profile.ScoreMin,
		TopN:     profile.TopN,
	})

	if s.OnCycle != nil {
		s.OnCycle(profileName, cycle, startedAt)
	}
}

// RunMonitor blocks, firing the option sweep at each configured time of
// day (e.g. 11:00, 14:00, 16:00), at most once per slot per day.
func (s *Scheduler) RunMonitor(ctx context.Context) {
	horarios := s.Cfg.Opcoes.MonitorHorarios
	if len(horarios) == 0 {
		log.Println("⚠️  Nenhum horário de monitoramento configurado")
		return
	}

	log.Printf("⏰ Monitor de opções ativo nos horários %v", horarios)

	fired := map[string]string{} // horario -> last date fired

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️  Monitor de opções encerrado")
			return
		case <-ticker.C:
			s.fireDue(horarios, fired)
		}
	}
}

func (s *Scheduler) fireDue(horarios []string, fired map[string]string) {
	now := s.Now()
	hhmm := now.Format("15:04")
	today := now.Format("2006-01-02")

	for _, horario := range horarios {
		if horario != hhmm || fired[horario] == today {
			continue
		}
		fired[horario] = today

		if _, open := utils.CheckMarketStatus(now, s.Cfg); !open {
			log.Printf("💤 Pregão fechado às %s, monitoramento adiado", horario)
			continue
		}

		log.Printf("🔔 Monitoramento das %s", horario)
		if _, err := s.Monitor.ProcessarTodas(); err != nil {
			log.Printf("❌ Erro no monitoramento das %s: %v", horario, err)
		}
	}
}
