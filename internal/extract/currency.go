// Package extract pulls the currency and the requested date out of a
// Spanish natural-language question.
package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCurrency is assumed when a question names no known currency.
const DefaultCurrency = "USD"

type currency struct {
	iso string
	// names match at a word start so plurals ("dólares", "euros") still count
	names []string
	// codes match as whole words only
	codes []string
}

var currencies = []currency{
	{"USD", []string{"dólar", "dollar", "dólar usa", "dólar americano"}, []string{"usd"}},
	{"JPY", []string{"yen", "yen japonés"}, []string{"jpy"}},
	{"GBP", []string{"libra", "libra esterlina"}, []string{"gbp"}},
	{"CHF", []string{"franco suizo"}, []string{"chf"}},
	{"SEK", []string{"corona sueca"}, []string{"sek"}},
	{"DKK", []string{"corona danesa"}, []string{"dkk"}},
	{"NOK", []string{"corona noruega"}, []string{"nok"}},
	{"BRL", []string{"real", "real brasileño"}, []string{"brl"}},
	{"ARS", []string{"peso argentino"}, []string{"ars"}},
	{"CAD", []string{"dólar canadiense"}, []string{"cad"}},
	{"ZAR", []string{"rand"}, []string{"zar"}},
	{"XDR", []string{"derechos especiales de giro"}, []string{"deg", "xdr"}},
	{"XAU", []string{"onza de oro", "oro"}, []string{"xau"}},
	{"CLP", []string{"peso chileno"}, []string{"clp"}},
	{"EUR", []string{"euro"}, []string{"eur"}},
	{"UYU", []string{"peso uruguayo"}, []string{"uyu"}},
	{"AUD", []string{"dólar australiano"}, []string{"aud"}},
	{"CNY", []string{"yuan", "yuan chino", "renminbi"}, []string{"cny"}},
	{"SGD", []string{"dólar de singapur"}, []string{"sgd"}},
	{"BOB", []string{"boliviano"}, []string{"bob"}},
	{"PEN", []string{"sol peruano"}, []string{"pen"}},
	{"NZD", []string{"dólar neozelandés"}, []string{"nzd"}},
	{"MXN", []string{"peso mexicano"}, []string{"mxn"}},
	{"COP", []string{"peso colombiano"}, []string{"cop"}},
	{"TWD", []string{"dólar taiwanés"}, []string{"twd"}},
	{"AED", []string{"dirham", "emiratos"}, []string{"aed"}},
	{"PYG", []string{"guaraní"}, []string{"gs", "pyg"}},
}

type alias struct {
	iso  string
	text string
	re   *regexp.Regexp
}

// aliases is sorted longest first so "dólar canadiense" wins over "dólar".
var aliases = buildAliases()

func buildAliases() []alias {
	var out []alias
	for _, c := range currencies {
		for _, n := range c.names {
			f := fold(n)
			out = append(out, alias{iso: c.iso, text: f, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(f))})
		}
		for _, code := range c.codes {
			out = append(out, alias{iso: c.iso, text: code, re: regexp.MustCompile(`\b` + code + `\b`)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].text) > len(out[j].text) })
	return out
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases s and strips diacritics, so "Dólar" and "dolar" compare equal.
func fold(s string) string {
	out, _, err := transform.String(accentFolder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Currency returns the ISO code of the currency named in question,
// or DefaultCurrency when none is recognized.
func Currency(question string) string {
	if iso, ok := lookup(question); ok {
		return iso
	}
	return DefaultCurrency
}

// Normalize maps a currency name or code to its ISO code. Unknown input is
// returned trimmed and upper-cased, on the assumption it already is a code.
func Normalize(name string) string {
	if iso, ok := lookup(name); ok {
		return iso
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

// Names returns the folded aliases of iso, longest first.
func Names(iso string) []string {
	var out []string
	for _, a := range aliases {
		if a.iso == iso {
			out = append(out, a.text)
		}
	}
	return out
}

// Known reports whether iso is one of the supported currency codes.
func Known(iso string) bool {
	for _, c := range currencies {
		if c.iso == iso {
			return true
		}
	}
	return false
}

func lookup(text string) (string, bool) {
	f := fold(text)
	for _, a := range aliases {
		if a.re.MatchString(f) {
			return a.iso, true
		}
	}
	return "", false
}
