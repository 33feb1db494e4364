package chaco

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

var fixedNow = time.Date(2025, 8, 11, 10, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{APIURL: srv.URL + "/exchange", Timeout: time.Second}, nil)
	c.now = func() time.Time { return fixedNow }
	return c
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestParseQuotes_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"items", `{"items":[{"isoCode":"USD","purchasePrice":7263.48,"salePrice":7270}]}`},
		{"list", `[{"iso":"usd","purchase_price":"7263.48","sale_price":"7270.00"}]`},
		{"keyed object", `{"USD":{"buy":7263.48,"sell":7270}}`},
		{"currency code", `{"items":[{"currencyCode":"USD","purchase":7263.48,"sale":7270}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			quotes, err := ParseQuotes([]byte(tc.body), fixedNow)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(quotes) != 1 {
				t.Fatalf("expected 1 quote, got %d", len(quotes))
			}
			q := quotes[0]
			if q.Currency != "USD" || *q.Bid != 7263.48 || *q.Ask != 7270 {
				t.Errorf("unexpected quote %+v", q)
			}
			if q.Source != SourceName || !q.Timestamp.Equal(fixedNow) {
				t.Errorf("unexpected source/timestamp %q %v", q.Source, q.Timestamp)
			}
		})
	}
}

func TestParseQuotes_SkipsAndFills(t *testing.T) {
	body := `{"items":[
		{"isoCode":"JPY","salePrice":49.24},
		{"purchasePrice":1,"salePrice":2},
		{"isoCode":"EUR"},
		{"isoCode":"BRL","purchasePrice":"n/a","salePrice":null},
		"garbage",
		{"code":"ARS","purchasePrice":0,"buy":5.2,"sell":6.1}
	]}`

	quotes, err := ParseQuotes([]byte(body), fixedNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected JPY and ARS only, got %+v", quotes)
	}
	if quotes[0].Currency != "JPY" || *quotes[0].Bid != 49.24 || *quotes[0].Ask != 49.24 {
		t.Errorf("single price should fill both sides: %+v", quotes[0])
	}
	if quotes[1].Currency != "ARS" || *quotes[1].Bid != 5.2 {
		t.Errorf("zero price should fall through to the next key: %+v", quotes[1])
	}
}

func TestParseQuotes_Invalid(t *testing.T) {
	for _, body := range []string{`not json`, `"just a string"`, `42`} {
		if _, err := ParseQuotes([]byte(body), fixedNow); !errors.Is(err, domain.ErrQuoteFetch) {
			t.Errorf("%s: expected ErrQuoteFetch, got %v", body, err)
		}
	}
}

func TestAPISource_LiveQuote(t *testing.T) {
	var gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		jsonHandler(`{"items":[{"isoCode":"USD","purchasePrice":7263.48,"salePrice":7270}]}`)(w, r)
	})
	src := NewAPISource(c)

	snap, ok := src.LiveQuote(context.Background(), "dólar")
	if !ok {
		t.Fatal("expected a quote for dólar")
	}
	if snap.Currency != "USD" || *snap.Ask != 7270 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("unexpected user agent %q", gotUA)
	}

	if _, ok := src.LiveQuote(context.Background(), "EUR"); ok {
		t.Error("expected absence for a currency missing from the payload")
	}
}

func TestAPISource_FailuresDegradeToAbsence(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"invalid json", jsonHandler(`{"items": [`)},
		{"slow upstream", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)
			c.http.Timeout = 100 * time.Millisecond
			if _, ok := NewAPISource(c).LiveQuote(context.Background(), "USD"); ok {
				t.Error("expected absence")
			}
		})
	}
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(`[]`))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, RatePerSecond: 0.001, Burst: 1}, nil)
	if _, err := c.get(context.Background(), srv.URL); err != nil {
		t.Fatalf("first request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.get(ctx, srv.URL); !errors.Is(err, domain.ErrQuoteFetch) {
		t.Errorf("expected throttled request to fail with ErrQuoteFetch, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{}, nil)
	if c.cfg.APIURL != DefaultAPIURL || c.cfg.PDFURL != DefaultAPIURL+"/pdf" {
		t.Errorf("unexpected urls %q %q", c.cfg.APIURL, c.cfg.PDFURL)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("unexpected timeout %v", c.http.Timeout)
	}
}
