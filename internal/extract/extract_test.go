package extract

import (
	"testing"
	"time"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"¿Cuál es la cotización del dólar hoy?", "USD"},
		{"cotizacion del dolar", "USD"},
		{"precio de los dólares ayer", "USD"},
		{"Cotización del dólar canadiense", "CAD"},
		{"dólar australiano el 11 de agosto", "AUD"},
		{"¿Cuánto está el euro?", "EUR"},
		{"cotización EUR 2025-08-09", "EUR"},
		{"yen japonés", "JPY"},
		{"peso argentino", "ARS"},
		{"real brasileño hoy", "BRL"},
		{"onza de oro", "XAU"},
		{"derechos especiales de giro", "XDR"},
		{"cuantos gs por dólar", "USD"},
		{"guaraníes", "PYG"},
		{"cotización sin moneda", "USD"},
		{"pendiente de copiar", "USD"},
	}

	for _, tc := range tests {
		t.Run(tc.question, func(t *testing.T) {
			if got := Currency(tc.question); got != tc.want {
				t.Errorf("Currency(%q) = %s, want %s", tc.question, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"dólar":  "USD",
		"Dolar":  "USD",
		" usd ":  "USD",
		"euro":   "EUR",
		"hkd":    "HKD",
		"yuan":   "CNY",
		"libras": "GBP",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNamesAndKnown(t *testing.T) {
	names := Names("CAD")
	if len(names) != 2 || names[0] != "dolar canadiense" || names[1] != "cad" {
		t.Errorf("unexpected CAD names: %v", names)
	}
	if !Known("PYG") || Known("HKD") {
		t.Error("Known mismatch")
	}
}

func TestDate(t *testing.T) {
	clock := domain.FixedClock(time.Date(2025, 8, 11, 15, 30, 0, 0, time.UTC))
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		question string
		want     time.Time
		ok       bool
	}{
		{"dólar hoy", day(2025, 8, 11), true},
		{"¿Y ayer?", day(2025, 8, 10), true},
		{"HOY", day(2025, 8, 11), true},
		{"cotización del 09/08/2025", day(2025, 8, 9), true},
		{"cotización del 9-8-2025", day(2025, 8, 9), true},
		{"dólar el 2025-08-09", day(2025, 8, 9), true},
		{"dólar el 08/08", day(2025, 8, 8), true},
		{"dólar el 11 de agosto", day(2025, 8, 11), true},
		{"dólar el 7 agosto", day(2025, 8, 7), true},
		{"dólar el 1 de septiembre de 2024", day(2024, 9, 1), true},
		{"1 de setiembre", day(2025, 9, 1), true},
		{"agosto 8", day(2025, 8, 8), true},
		{"euro 2 veces el 8 de agosto", day(2025, 8, 8), true},
		{"31/02/2025", time.Time{}, false},
		{"2025-13-01", time.Time{}, false},
		{"30 de febrero", time.Time{}, false},
		{"cotización del dólar", time.Time{}, false},
		{"ahoyo", time.Time{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.question, func(t *testing.T) {
			got, ok := Date(tc.question, clock)
			if ok != tc.ok {
				t.Fatalf("Date(%q) ok = %v, want %v", tc.question, ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Errorf("Date(%q) = %s, want %s", tc.question, got.Format(domain.ISODateLayout), tc.want.Format(domain.ISODateLayout))
			}
		})
	}
}

func TestDate_UsesClockLocation(t *testing.T) {
	asuncion := time.FixedZone("PYT", -3*60*60)
	// 01:00 UTC on the 12th is still the 11th in Asunción
	clock := domain.FixedClock(time.Date(2025, 8, 12, 1, 0, 0, 0, time.UTC).In(asuncion))

	got, ok := Date("hoy", clock)
	if !ok || got.Format(domain.ISODateLayout) != "2025-08-11" {
		t.Errorf("got %v %v, want 2025-08-11", got, ok)
	}
}
