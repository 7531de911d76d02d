package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fenixinvest/fenix/Internal/cache"
	datafeed "github.com/fenixinvest/fenix/Internal/database"
	"github.com/fenixinvest/fenix/Internal/opcoes"
	"github.com/fenixinvest/fenix/Internal/scheduler"
	"github.com/fenixinvest/fenix/Internal/utils/config"
	"github.com/fenixinvest/fenix/cmd/api/internal"

	bppkg "github.com/fenixinvest/fenix/Internal/bp"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../../.env")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Opcoes.StopInicialPct != 0 {
		opcoes.StopInicialPct = cfg.Opcoes.StopInicialPct
	}
	if cfg.Opcoes.DiasEncerramento > 0 {
		opcoes.DiasLimiteEncerramento = cfg.Opcoes.DiasEncerramento
	}

	if err := datafeed.InitDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer datafeed.CloseDatabase()

	// candle source with the Redis layer in front of Yahoo
	var candles bppkg.CandleSource = datafeed.NewYahooSource()
	candleCache := cache.NewCandleCache(candles)
	candles = candleCache
	defer candleCache.Close()

	universe := func() []string {
		return datafeed.LoadUniverse(cfg.Global.UniverseCSV)
	}

	operacoes := datafeed.NewOperacaoStore()
	scanLog := datafeed.NewScanLogStore()

	monitor := opcoes.NewMonitor(datafeed.NewOplabSource(), operacoes, buildNotifier(cfg))

	api := &internal.API{
		JWT:        internal.NewJWTManager(),
		Config:     cfg,
		Candles:    candles,
		Assinantes: datafeed.NewAssinanteStore(),
		ScanLog:    scanLog,
		Operacoes:  operacoes,
		Monitor:    monitor,
		Universe:   universe,
	}

	// background schedulers share the API wiring
	sched := scheduler.New(cfg, candles, universe, monitor)
	sched.OnCycle = func(profile string, cycle *bppkg.CycleResult, startedAt time.Time) {
		if err := scanLog.RegistrarCiclo(profile, cycle, startedAt); err != nil {
			log.Printf("⚠️  Falha ao registrar ciclo: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.RunScans(ctx, "default")
	go sched.RunMonitor(ctx)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(internal.CorsMiddleware)

	r.Get("/health", api.HandleHealth)
	r.Post("/api/token", api.HandleToken)

	r.Group(func(r chi.Router) {
		r.Use(internal.JWTAuthMiddleware(api.JWT))

		r.Group(func(r chi.Router) {
			r.Use(internal.RequireProduct("bp_fenix"))
			r.Get("/api/scan", api.HandleGetScan)
			r.Post("/api/scan/run", api.HandleRunScan)
			r.Get("/api/top-assets", api.HandleTopAssets)
		})

		r.Group(func(r chi.Router) {
			r.Use(internal.RequireProduct("fenix_opcoes"))
			r.Get("/api/opcoes", api.HandleGetOperacoes)
			r.Post("/api/opcoes", api.HandleCreateOperacao)
			r.Post("/api/opcoes/checar", api.HandleChecarOpcoes)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 API Fênix ouvindo em :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// buildNotifier assembles the channels enabled in config, always keeping
// the console.
func buildNotifier(cfg *config.Config) opcoes.Notifier {
	canais := []opcoes.Notifier{}
	if cfg.Notifications.Channels.Console {
		canais = append(canais, opcoes.ConsoleNotifier{})
	}
	if cfg.Notifications.Channels.Telegram {
		canais = append(canais, opcoes.NewTelegramNotifier())
	}
	if cfg.Notifications.Channels.Email {
		canais = append(canais, opcoes.NewEmailNotifier())
	}
	if len(canais) == 0 {
		canais = append(canais, opcoes.ConsoleNotifier{})
	}
	return &opcoes.MultiNotifier{Canais: canais}
}
