package datafeed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fenixinvest/fenix/Internal/utils"
)

func testOplabSource(handler http.HandlerFunc) (*OplabSource, *httptest.Server) {
	server := httptest.NewServer(handler)
	source := NewOplabSource()
	source.BaseURL = server.URL
	source.APIKey = "test-key"
	source.Retry = utils.RetryConfig{MaxAttempts: 1}
	return source, server
}

func TestGetOptionPricePrefersLast(t *testing.T) {
	source, server := testOplabSource(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"bid": 1.0, "ask": 1.2, "last": 1.15, "close": 0.9}]`)
	})
	defer server.Close()

	got, err := source.GetOptionPrice("petra240")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.15 {
		t.Errorf("price = %v, want the last trade 1.15", got)
	}
}

func TestGetOptionPriceFallsBackToMid(t *testing.T) {
	source, server := testOplabSource(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"bid": 1.0, "ask": 1.2, "last": 0, "close": 0.9}]`)
	})
	defer server.Close()

	got, err := source.GetOptionPrice("PETRA240")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.1 {
		t.Errorf("price = %v, want the bid/ask midpoint 1.1", got)
	}
}

func TestGetOptionPriceFallsBackToClose(t *testing.T) {
	source, server := testOplabSource(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"bid": 0, "ask": 1.2, "close": 0.9}]`)
	})
	defer server.Close()

	got, err := source.GetOptionPrice("PETRA240")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.9 {
		t.Errorf("price = %v, want the close 0.9", got)
	}
}

func TestGetOptionPriceNoUsableFields(t *testing.T) {
	source, server := testOplabSource(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"bid": 0, "ask": 0}]`)
	})
	defer server.Close()

	got, err := source.GetOptionPrice("PETRA240")
	if err != nil || got != 0 {
		t.Errorf("got (%v, %v), want (0, nil) when nothing is usable", got, err)
	}
}

func TestGetOptionPriceWrappedPayload(t *testing.T) {
	source, server := testOplabSource(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Access-Token") != "test-key" {
			t.Errorf("missing Access-Token header")
		}
		fmt.Fprint(w, `{"data":[{"last": 2.5}]}`)
	})
	defer server.Close()

	got, err := source.GetOptionPrice("VALEB270")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2.5 {
		t.Errorf("price = %v, want 2.5 from the wrapped payload", got)
	}
}

func TestGetOptionPriceEmptyList(t *testing.T) {
	source, server := testOplabSource(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	defer server.Close()

	got, err := source.GetOptionPrice("SEMDADOS")
	if err != nil || got != 0 {
		t.Errorf("got (%v, %v), want (0, nil) for an empty list", got, err)
	}
}

func TestGetOptionPriceServerError(t *testing.T) {
	source, server := testOplabSource(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	if _, err := source.GetOptionPrice("PETRA240"); err == nil {
		t.Fatal("expected an error on HTTP 502")
	}
}
