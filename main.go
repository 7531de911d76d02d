package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/fenixinvest/fenix/Internal/bp"
	"github.com/fenixinvest/fenix/Internal/cache"
	datafeed "github.com/fenixinvest/fenix/Internal/database"
	"github.com/fenixinvest/fenix/Internal/handlers"
	"github.com/fenixinvest/fenix/Internal/opcoes"
	"github.com/fenixinvest/fenix/Internal/scheduler"
	"github.com/fenixinvest/fenix/Internal/utils"
	"github.com/fenixinvest/fenix/Internal/utils/config"
)

func main() {
	_ = godotenv.Load()

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

	var candles bp.CandleSource = datafeed.NewYahooSource()
	candleCache := cache.NewCandleCache(candles)
	candles = candleCache
	defer candleCache.Close()

	universe := func() []string {
		return datafeed.LoadUniverse(cfg.Global.UniverseCSV)
	}

	operacoes := datafeed.NewOperacaoStore()
	scanLog := datafeed.NewScanLogStore()
	monitor := opcoes.NewMonitor(datafeed.NewOplabSource(), operacoes, opcoes.ConsoleNotifier{})

	status, isOpen := utils.CheckMarketStatus(time.Now(), cfg)
	fmt.Printf("Mercado: %s (aberto: %v)\n\n", status, isOpen)

	sched := scheduler.New(cfg, candles, universe, monitor)
	sched.OnCycle = func(profile string, cycle *bp.CycleResult, startedAt time.Time) {
		if err := scanLog.RegistrarCiclo(profile, cycle, startedAt); err != nil {
			log.Printf("⚠️  Falha ao registrar ciclo: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.RunScans(ctx, "default")
	go sched.RunMonitor(ctx)

	for {
		fmt.Println("\n--- Fênix Premium ---")
		fmt.Println("1. Rodar scan BP-Fênix agora")
		fmt.Println("2. Atualizar universo IBOV")
		fmt.Println("3. Operações de opções abertas")
		fmt.Println("4. Registrar nova operação de opção")
		fmt.Println("5. Checar operações (monitoramento manual)")
		fmt.Println("6. Status do mercado")
		fmt.Println("7. Sair")
		fmt.Print("Escolha (1-7): ")

		var choice int
		_, err := fmt.Scanln(&choice)
		if err != nil {
			fmt.Println("Entrada inválida. Tente novamente.")
			continue
		}

		switch choice {
		case 1:
			handlers.HandleRunScan(candles, universe, cfg, scanLog, "default")
		case 2:
			handlers.HandleRefreshUniverse(cfg)
		case 3:
			handlers.HandleListOperacoes(operacoes)
		case 4:
			handlers.HandleNovaOperacao(operacoes)
		case 5:
			handlers.HandleChecarOpcoes(monitor)
		case 6:
			status, isOpen := utils.CheckMarketStatus(time.Now(), cfg)
			fmt.Printf("Mercado: %s (aberto: %v)\n", status, isOpen)
		case 7:
			fmt.Println("Até logo!")
			return
		default:
			fmt.Println("Opção inválida. Tente novamente.")
		}
	}
}
