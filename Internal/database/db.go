package datafeed

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

var DB *sql.DB

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func InitDatabase() error {
	config := DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"), // Required - no default
		DBName:   getEnvOrDefault("DB_NAME", "fenix"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = initializeSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	fmt.Println("Database connected successfully!")
	return nil
}

// initializeSchema creates the lifecycle tables if they don't exist
func initializeSchema() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS opcoes_operacoes (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		underlying TEXT NOT NULL,
		tipo TEXT NOT NULL,
		strike NUMERIC NOT NULL,
		vencimento DATE NOT NULL,
		lado_entrada TEXT NOT NULL,
		preco_entrada NUMERIC NOT NULL,
		preco_atual NUMERIC,
		retorno_atual_pct NUMERIC,
		stop_protecao_pct NUMERIC NOT NULL DEFAULT -25,
		alvo_atual_pct NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'aberta',
		lado_saida TEXT,
		preco_saida NUMERIC,
		timestamp_saida TIMESTAMP,
		retorno_final_pct NUMERIC,
		motivo_saida TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_opcoes_status ON opcoes_operacoes(status);

	CREATE TABLE IF NOT EXISTS scan_log (
		id SERIAL PRIMARY KEY,
		profile TEXT NOT NULL,
		processed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		selected INTEGER NOT NULL,
		top_assets TEXT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS assinantes (
		id SERIAL PRIMARY KEY,
		nome TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		produtos TEXT NOT NULL DEFAULT '',
		ativo BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

func HealthCheck() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return DB.Ping()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
