package chaco

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/extract"
	"github.com/kailas-cloud/quoterag/internal/metrics"
)

// BoardRow is one currency line of the published quote board.
type BoardRow struct {
	Name string
	Bid  *float64
	Ask  *float64
}

// amounts use the Paraguayan format: "." groups thousands, "," marks decimals
const amount = `\d{1,3}(?:\.\d{3})*(?:,\d+)?`

var boardRowRe = regexp.MustCompile(`([\p{L}][\p{L} .()]*?)\s*(` + amount + `)\s+(` + amount + `)`)

// PDFSource reads quotes from the PDF quote board.
type PDFSource struct {
	client *Client
}

// NewPDFSource creates the PDF quote source.
func NewPDFSource(c *Client) *PDFSource {
	return &PDFSource{client: c}
}

// LiveQuote implements tools.QuoteSource.
func (s *PDFSource) LiveQuote(ctx context.Context, currency string) (domain.QuoteSnapshot, bool) {
	iso := extract.Normalize(currency)
	start := time.Now()
	snap, err := s.lookup(ctx, iso)
	metrics.QuoteFetchDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.QuoteFetchTotal.WithLabelValues("pdf", "error").Inc()
		s.client.logger.Warn("Quote PDF lookup failed", zap.String("currency", iso), zap.Error(err))
		return domain.QuoteSnapshot{}, false
	case snap == nil:
		metrics.QuoteFetchTotal.WithLabelValues("pdf", "absent").Inc()
		return domain.QuoteSnapshot{}, false
	default:
		metrics.QuoteFetchTotal.WithLabelValues("pdf", "found").Inc()
		return *snap, true
	}
}

func (s *PDFSource) lookup(ctx context.Context, iso string) (*domain.QuoteSnapshot, error) {
	body, err := s.client.get(ctx, s.client.cfg.PDFURL)
	if err != nil {
		return nil, err
	}
	text, err := plainText(body)
	if err != nil {
		return nil, err
	}

	for _, row := range ParseBoard(text) {
		if extract.Normalize(row.Name) != iso {
			continue
		}
		return &domain.QuoteSnapshot{
			Currency:  iso,
			Bid:       row.Bid,
			Ask:       row.Ask,
			Source:    SourceNamePDF,
			Timestamp: s.client.now(),
		}, nil
	}
	return nil, nil
}

func plainText(body []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %w", domain.ErrQuoteFetch, err)
	}
	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract pdf text: %w", domain.ErrQuoteFetch, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rd); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %w", domain.ErrQuoteFetch, err)
	}
	return buf.String(), nil
}

// ParseBoard extracts "NAME BID ASK" rows from the board's plain text.
func ParseBoard(text string) []BoardRow {
	var rows []BoardRow
	for _, m := range boardRowRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		rows = append(rows, BoardRow{
			Name: name,
			Bid:  parseAmount(m[2]),
			Ask:  parseAmount(m[3]),
		})
	}
	return rows
}

// parseAmount reads "7.263,48" as 7263.48.
func parseAmount(s string) *float64 {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
