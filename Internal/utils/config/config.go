package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Global struct {
		MarketHours struct {
			RegularOpen  string `yaml:"regular_open"`
			RegularClose string `yaml:"regular_close"`
			Timezone     string `yaml:"timezone"`
		} `yaml:"market_hours"`
		UniverseCSV string `yaml:"universe_csv"`
	} `yaml:"global"`

	Notifications struct {
		Channels struct {
			Console  bool `yaml:"console"`
			Telegram bool `yaml:"telegram"`
			Email    bool `yaml:"email"`
		} `yaml:"channels"`
	} `yaml:"notifications"`

	Profiles map[string]ProfileConfig `yaml:"profiles"`

	Opcoes struct {
		StopInicialPct   float64  `yaml:"stop_inicial_pct"`  // -25
		DiasEncerramento int      `yaml:"dias_encerramento"` // 3 (D-3)
		MonitorHorarios  []string `yaml:"monitor_horarios"`  // "11:00", "14:00", "16:00"
	} `yaml:"opcoes"`
}

type ProfileConfig struct {
	ScoreMin         int    `yaml:"score_min"`
	TopN             int    `yaml:"top_n"`
	Period           string `yaml:"period"`
	Interval         string `yaml:"interval"`
	ScanIntervalMins int    `yaml:"scan_interval_mins"`
}

// LoadConfig resolves config.yaml relative to this source file first, then
// falls back to the working directory. The cwd moves between the CLI, the
// API binary and tests, so we try a few known locations.
func LoadConfig() (*Config, error) {
	_, filePath, _, ok := runtime.Caller(0)
	var basePath string
	if ok {
		basePath = filepath.Dir(filePath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	possiblePaths := []string{}
	if basePath != "" {
		possiblePaths = append(possiblePaths, filepath.Join(basePath, "config.yaml"))
	}
	possiblePaths = append(possiblePaths,
		filepath.Join(cwd, "Internal", "utils", "config", "config.yaml"),
		"Internal/utils/config/config.yaml",
		"config.yaml",
	)

	var data []byte
	for _, path := range possiblePaths {
		data, err = os.ReadFile(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]ProfileConfig{}
	}
	if _, ok := cfg.Profiles["default"]; !ok {
		cfg.Profiles["default"] = ProfileConfig{
			ScoreMin:         3,
			TopN:             5,
			Period:           "2y",
			Interval:         "1d",
			ScanIntervalMins: 15,
		}
	}
	if cfg.Opcoes.StopInicialPct == 0 {
		cfg.Opcoes.StopInicialPct = -25
	}
	if cfg.Opcoes.DiasEncerramento == 0 {
		cfg.Opcoes.DiasEncerramento = 3
	}
	if cfg.Global.UniverseCSV == "" {
		cfg.Global.UniverseCSV = "data/tickers_ibov.csv"
	}
}

func (c *Config) GetProfile(profileName string) *ProfileConfig {
	if profile, exists := c.Profiles[profileName]; exists {
		return &profile
	}
	return nil
}

func SaveConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile("Internal/utils/config/config.yaml", data, 0644)
}
