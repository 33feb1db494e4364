package chaco

import (
	"context"
	"net/http"
	"testing"
)

const boardText = `COTIZACIONES Casa Central
Moneda Compra Venta
Dólar Americano 7.263,48 7.270,00
Euro 8.400,00 8.550,50
Peso Argentino 5,20 6,10
Real 1.300,00 1.350,00
`

func TestParseBoard(t *testing.T) {
	rows := ParseBoard(boardText)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %+v", len(rows), rows)
	}

	first := rows[0]
	if first.Name != "Dólar Americano" || *first.Bid != 7263.48 || *first.Ask != 7270.00 {
		t.Errorf("unexpected first row %+v", first)
	}
	if rows[2].Name != "Peso Argentino" || *rows[2].Bid != 5.20 || *rows[2].Ask != 6.10 {
		t.Errorf("unexpected ARS row %+v", rows[2])
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]float64{
		"7.263,48": 7263.48,
		"49,07":    49.07,
		"1.300":    1300,
		"12":       12,
	}
	for in, want := range tests {
		got := parseAmount(in)
		if got == nil || *got != want {
			t.Errorf("parseAmount(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPDFSource_InvalidDocumentIsAbsent(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte("%PDF-1.4 definitely not a pdf"))
	})

	if _, ok := NewPDFSource(c).LiveQuote(context.Background(), "USD"); ok {
		t.Error("expected absence for an unreadable PDF")
	}
	if path != "/exchange/pdf" {
		t.Errorf("expected the PDF endpoint, got %q", path)
	}
}
