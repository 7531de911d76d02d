package config

import "testing"

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	def := cfg.GetProfile("default")
	if def == nil {
		t.Fatal("default profile missing")
	}
	if def.ScoreMin != 3 || def.TopN != 5 {
		t.Errorf("default profile = %+v, want score_min 3 / top_n 5", def)
	}
	if def.Period != "2y" || def.Interval != "1d" {
		t.Errorf("default candles = %s/%s", def.Period, def.Interval)
	}

	if cfg.Opcoes.StopInicialPct != -25 {
		t.Errorf("stop_inicial_pct = %v, want -25", cfg.Opcoes.StopInicialPct)
	}
	if cfg.Opcoes.DiasEncerramento != 3 {
		t.Errorf("dias_encerramento = %v, want 3", cfg.Opcoes.DiasEncerramento)
	}
}

func TestGetProfileUnknown(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.GetProfile("nao-existe") != nil {
		t.Error("unknown profile must return nil")
	}
}

func TestApplyDefaultsOnEmptyConfig(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	def := cfg.GetProfile("default")
	if def == nil || def.ScoreMin != 3 || def.TopN != 5 || def.ScanIntervalMins != 15 {
		t.Errorf("defaults not applied: %+v", def)
	}
	if cfg.Opcoes.StopInicialPct != -25 || cfg.Opcoes.DiasEncerramento != 3 {
		t.Errorf("opcoes defaults not applied: %+v", cfg.Opcoes)
	}
	if cfg.Global.UniverseCSV == "" {
		t.Error("universe csv default missing")
	}
}
