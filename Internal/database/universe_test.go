package datafeed

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickers.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTickerCSV(t *testing.T) {
	path := writeTempCSV(t, "ticker\nPETR4.SA\nVALE3.SA\nPETR4.SA\n\nITUB4.SA\n")

	got, err := readTickerCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"PETR4.SA", "VALE3.SA", "ITUB4.SA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v (header skipped, duplicates removed)", got, want)
	}
}

func TestReadTickerCSVWithoutHeader(t *testing.T) {
	path := writeTempCSV(t, "PETR4.SA\nVALE3.SA\n")

	got, err := readTickerCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %v, want both tickers kept", got)
	}
}

func TestCSVUsable(t *testing.T) {
	if csvUsable(filepath.Join(t.TempDir(), "missing.csv")) {
		t.Error("missing file must not be usable")
	}

	empty := writeTempCSV(t, "")
	if csvUsable(empty) {
		t.Error("empty file must not be usable")
	}

	ok := writeTempCSV(t, "ticker\nPETR4.SA\n")
	if !csvUsable(ok) {
		t.Error("non-empty file must be usable")
	}
}
