package agent

import (
	"time"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// Branch names the decision that produced a report.
type Branch string

// Decision branches, in evaluation order.
const (
	BranchToday       Branch = "today"
	BranchExact       Branch = "exact"
	BranchApproximate Branch = "approximate"
	BranchRecent      Branch = "recent"
	BranchAnalysis    Branch = "analysis"
)

// Stage is a step of a run. Runs move strictly forward through the stages.
type Stage string

// Stages of a run.
const (
	StageFetch    Stage = "fetch"
	StageProcess  Stage = "process"
	StageRetrieve Stage = "retrieve"
	StageDecide   Stage = "decide"
)

// Request is one question already reduced to a currency and an optional date.
type Request struct {
	Question   string
	Currency   string
	TargetDate *time.Time
}

// Quote is the normalized live quote. The zero value is the empty shape used
// when no snapshot was obtained.
type Quote struct {
	Currency string   `json:"moneda,omitempty"`
	Compra   *float64 `json:"compra,omitempty"`
	Venta    *float64 `json:"venta,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// Empty reports whether q carries no live data.
func (q Quote) Empty() bool {
	return q.Currency == "" && q.Compra == nil && q.Venta == nil && q.Source == ""
}

func normalize(snap *domain.QuoteSnapshot, currency string) Quote {
	if snap == nil {
		return Quote{}
	}
	q := Quote{
		Currency: snap.Currency,
		Compra:   snap.Bid,
		Venta:    snap.Ask,
		Source:   snap.Source,
	}
	if q.Currency == "" {
		q.Currency = currency
	}
	return q
}

// RequestContext accumulates the state of a single run. It is owned by that
// run and never shared.
type RequestContext struct {
	RunID      string
	Question   string
	Currency   string
	TargetDate *time.Time

	Snapshot  *domain.QuoteSnapshot
	Quote     Quote
	Retrieved []domain.QueryResult
	// Retrieval is false when the retrieve stage was skipped.
	Retrieval bool

	Stage  Stage
	Branch Branch
	Report string
}
