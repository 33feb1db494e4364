package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/tools"
)

func liveReport(q Quote) string {
	return fmt.Sprintf("Cotización actual de %s (fuente %s): Compra %s | Venta %s",
		q.Currency, tools.OrMissing(q.Source), tools.FormatPrice(q.Compra), tools.FormatPrice(q.Venta))
}

func exactReport(currency string, date time.Time, text string) string {
	return fmt.Sprintf("Datos históricos para %s el %s:\n%s", currency, domain.FormatISODate(date), text)
}

func approximateReport(requested, found time.Time, text string) string {
	return fmt.Sprintf("No hay datos exactos para %s, mostrando el más cercano (%s):\n%s",
		domain.FormatISODate(requested), domain.FormatISODate(found), text)
}

func recentReport(currency string, texts []string) string {
	return fmt.Sprintf("Cotizaciones recientes de %s:\n%s", currency, strings.Join(texts, "\n\n"))
}

func joinTexts(results []domain.QueryResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Doc.Text
	}
	return strings.Join(texts, "\n\n")
}
