package datafeed

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fenixinvest/fenix/Internal/utils"
)

// ============================================================================
// UNIVERSO IBOV - composicao oficial da B3 com cache em CSV
// ============================================================================

const b3IndexURL = "https://sistemaswebb3-listados.b3.com.br/indexProxy/indexCall/GetDetailIndex?language=pt-BR&index=IBOV"

type b3IndexResponse struct {
	Results []struct {
		CodNegociacao string `json:"codNegociacao"`
	} `json:"results"`
}

// FetchIBOVFromB3 pulls the official IBOV composition. Tickers come back
// sorted, deduplicated and with the ".SA" suffix.
func FetchIBOVFromB3() ([]string, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	var body []byte
	err := utils.RetryWithBackoff(func() error {
		req, err := http.NewRequest(http.MethodGet, b3IndexURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("b3 status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}, utils.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("capturar IBOV da B3: %w", err)
	}

	var parsed b3IndexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decodificar resposta da B3: %w", err)
	}

	seen := map[string]bool{}
	tickers := []string{}
	for _, item := range parsed.Results {
		code := strings.ToUpper(strings.TrimSpace(item.CodNegociacao))
		if code == "" {
			continue
		}
		t := code + ".SA"
		if !seen[t] {
			seen[t] = true
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

// UpdateTickerFile refreshes the local CSV cache. When the B3 call fails
// the current file is left untouched.
func UpdateTickerFile(csvPath string) error {
	tickers, err := FetchIBOVFromB3()
	if err != nil || len(tickers) == 0 {
		log.Printf("⚠️  IBOV não carregado, mantendo CSV atual: %v", err)
		return err
	}

	if dir := filepath.Dir(csvPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("criar diretório do CSV: %w", err)
		}
	}

	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("criar CSV de tickers: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"ticker"}); err != nil {
		return err
	}
	for _, t := range tickers {
		if err := w.Write([]string{t}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Printf("✅ Lista do IBOV atualizada com %d ativos", len(tickers))
	return nil
}

// LoadUniverse reads the ticker list, rebuilding the CSV from the B3 when
// it is missing, empty or unreadable. It never fails hard: the worst case
// is an empty list.
func LoadUniverse(csvPath string) []string {
	if !csvUsable(csvPath) {
		log.Printf("⚠️  CSV de tickers ausente ou vazio, recriando de %s", csvPath)
		if err := UpdateTickerFile(csvPath); err != nil {
			return []string{}
		}
	}

	tickers, err := readTickerCSV(csvPath)
	if err != nil || len(tickers) == 0 {
		log.Printf("⚠️  CSV inválido (%v), reconstruindo", err)
		if err := UpdateTickerFile(csvPath); err != nil {
			return []string{}
		}
		tickers, err = readTickerCSV(csvPath)
		if err != nil {
			return []string{}
		}
	}
	return tickers
}

func csvUsable(csvPath string) bool {
	info, err := os.Stat(csvPath)
	return err == nil && info.Size() > 0
}

func readTickerCSV(csvPath string) ([]string, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	tickers := []string{}
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		value := strings.TrimSpace(record[0])
		if i == 0 && strings.EqualFold(value, "ticker") {
			continue
		}
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		tickers = append(tickers, value)
	}
	return tickers, nil
}
