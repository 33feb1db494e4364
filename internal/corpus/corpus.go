// Package corpus holds the seed historical quotes published by the
// Banco Central del Paraguay and turns them into index documents.
package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// Rate is the guaraní value of one unit of a currency.
type Rate struct {
	Currency string
	Value    float64
}

// Sheet is one published rate sheet.
type Sheet struct {
	Date  string // YYYY-MM-DD
	Rates []Rate
}

// Documents renders sheets as index documents, one per currency and date,
// with id "{date}_{currency}".
func Documents(sheets []Sheet) ([]domain.Document, error) {
	var docs []domain.Document
	seen := make(map[string]struct{})
	for _, sh := range sheets {
		if _, err := domain.ParseISODate(sh.Date); err != nil {
			return nil, fmt.Errorf("sheet date %q: %w", sh.Date, err)
		}
		for _, r := range sh.Rates {
			ccy := strings.ToUpper(strings.TrimSpace(r.Currency))
			id := sh.Date + "_" + ccy
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("duplicate rate %s", id)
			}
			seen[id] = struct{}{}

			docs = append(docs, domain.Document{
				ID:   id,
				Text: Text(sh.Date, ccy, r.Value),
				Metadata: map[string]any{
					domain.MetaDate:     sh.Date,
					domain.MetaCurrency: ccy,
					domain.MetaValuePYG: r.Value,
				},
			})
		}
	}
	return docs, nil
}

// Text is the sentence indexed for a single rate.
func Text(date, currency string, value float64) string {
	return fmt.Sprintf(
		"El %s la cotización de %s fue %s guaraníes por unidad, según el Banco Central del Paraguay.",
		date, currency, formatValue(value),
	)
}

// formatValue prints the shortest exact decimal, keeping one fractional digit
// on whole numbers (708 -> "708.0").
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
