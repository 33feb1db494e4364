package domain

import "time"

// QuoteSnapshot is a point-in-time live bid/ask quote for one currency.
// Bid and Ask are nil when the source did not report them.
type QuoteSnapshot struct {
	Currency  string    `json:"currency"`
	Bid       *float64  `json:"bid,omitempty"`
	Ask       *float64  `json:"ask,omitempty"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// HasPrices reports whether at least one side of the quote is known.
func (q QuoteSnapshot) HasPrices() bool {
	return q.Bid != nil || q.Ask != nil
}

// Float returns a pointer to v. Handy for building snapshots.
func Float(v float64) *float64 { return &v }
