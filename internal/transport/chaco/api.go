package chaco

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/extract"
	"github.com/kailas-cloud/quoterag/internal/metrics"
)

// Field names seen across versions of the exchange API, in lookup order.
var (
	isoKeys = []string{"isoCode", "iso", "currencyCode", "code"}
	bidKeys = []string{"purchasePrice", "purchase_price", "purchase", "buy"}
	askKeys = []string{"salePrice", "sale_price", "sale", "sell"}
)

var errNoQuotes = errors.New("no quotes in payload")

// APISource reads quotes from the JSON exchange endpoint.
type APISource struct {
	client *Client
}

// NewAPISource creates the JSON API quote source.
func NewAPISource(c *Client) *APISource {
	return &APISource{client: c}
}

// LiveQuote implements tools.QuoteSource. Transport and parse failures are
// logged and reported as absence.
func (s *APISource) LiveQuote(ctx context.Context, currency string) (domain.QuoteSnapshot, bool) {
	iso := extract.Normalize(currency)
	start := time.Now()
	snap, err := s.lookup(ctx, iso)
	metrics.QuoteFetchDuration.WithLabelValues("api").Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.QuoteFetchTotal.WithLabelValues("api", "error").Inc()
		s.client.logger.Warn("Quote API lookup failed", zap.String("currency", iso), zap.Error(err))
		return domain.QuoteSnapshot{}, false
	case snap == nil:
		metrics.QuoteFetchTotal.WithLabelValues("api", "absent").Inc()
		return domain.QuoteSnapshot{}, false
	default:
		metrics.QuoteFetchTotal.WithLabelValues("api", "found").Inc()
		return *snap, true
	}
}

func (s *APISource) lookup(ctx context.Context, iso string) (*domain.QuoteSnapshot, error) {
	body, err := s.client.get(ctx, s.client.cfg.APIURL)
	if err != nil {
		return nil, err
	}
	quotes, err := ParseQuotes(body, s.client.now())
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		if quotes[i].Currency == iso {
			return &quotes[i], nil
		}
	}
	return nil, nil
}

// ParseQuotes decodes an exchange payload. It accepts {"items": [...]}, a bare
// list, or an object keyed by ISO code. Entries without a code or without any
// price are skipped; a single price fills both sides.
func ParseQuotes(body []byte, now time.Time) ([]domain.QuoteSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrQuoteFetch)
	}
	root := gjson.ParseBytes(body)

	var out []domain.QuoteSnapshot
	add := func(key string, item gjson.Result) {
		if !item.IsObject() {
			return
		}
		if q, ok := parseItem(key, item, now); ok {
			out = append(out, q)
		}
	}

	switch items := root.Get("items"); {
	case items.IsArray():
		items.ForEach(func(_, v gjson.Result) bool { add("", v); return true })
	case root.IsArray():
		root.ForEach(func(_, v gjson.Result) bool { add("", v); return true })
	case root.IsObject():
		root.ForEach(func(k, v gjson.Result) bool { add(k.String(), v); return true })
	default:
		return nil, fmt.Errorf("%w: %w", domain.ErrQuoteFetch, errNoQuotes)
	}
	return out, nil
}

func parseItem(key string, item gjson.Result, now time.Time) (domain.QuoteSnapshot, bool) {
	iso := firstString(item, isoKeys)
	if iso == "" {
		iso = key
	}
	if iso == "" {
		return domain.QuoteSnapshot{}, false
	}

	bid := firstNumber(item, bidKeys)
	ask := firstNumber(item, askKeys)
	if bid == nil {
		bid = ask
	}
	if ask == nil {
		ask = bid
	}
	if bid == nil {
		return domain.QuoteSnapshot{}, false
	}

	return domain.QuoteSnapshot{
		Currency:  strings.ToUpper(iso),
		Bid:       bid,
		Ask:       ask,
		Source:    SourceName,
		Timestamp: now,
	}, true
}

func firstString(item gjson.Result, keys []string) string {
	for _, k := range keys {
		if v := item.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// firstNumber returns the first key holding a non-zero number or numeric string.
func firstNumber(item gjson.Result, keys []string) *float64 {
	for _, k := range keys {
		v := item.Get(k)
		var f float64
		switch v.Type {
		case gjson.Number:
			f = v.Float()
		case gjson.String:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		if f != 0 {
			return &f
		}
	}
	return nil
}
