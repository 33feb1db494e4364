package domain

import "time"

// Document is a historical quote document held by the embedding index.
// Documents are immutable once inserted; the index hands out copies only.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Clone returns a copy that shares no mutable state with d.
func (d Document) Clone() Document {
	out := Document{ID: d.ID, Text: d.Text}
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Date returns the quote date of the document.
// The YYYY-MM-DD substring of the text wins; the structured "date" metadata
// field is consulted only when the text carries no parseable date.
func (d Document) Date() (time.Time, bool) {
	if t, ok := ExtractISODate(d.Text); ok {
		return t, true
	}
	if s, ok := d.Metadata[MetaDate].(string); ok {
		if t, err := ParseISODate(s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Metadata keys written by the corpus loader.
const (
	MetaDate     = "date"
	MetaCurrency = "currency"
	MetaValuePYG = "value_pyg"
)

// QueryResult is a single nearest-neighbor hit. Score is the cosine similarity in [-1, 1].
type QueryResult struct {
	Score float64  `json:"score"`
	Doc   Document `json:"doc"`
}
