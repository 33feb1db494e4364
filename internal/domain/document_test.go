package domain

import "testing"

func TestDocument_Date_TextWins(t *testing.T) {
	d := Document{
		ID:       "2025-08-11_USD",
		Text:     "El 2025-08-11 la cotización de USD fue 7263.48 guaraníes",
		Metadata: map[string]any{MetaDate: "2025-08-08"},
	}
	got, ok := d.Date()
	if !ok {
		t.Fatal("expected a date")
	}
	if got.Format(ISODateLayout) != "2025-08-11" {
		t.Errorf("expected text date to win, got %s", got.Format(ISODateLayout))
	}
}

func TestDocument_Date_MetadataFallback(t *testing.T) {
	d := Document{Text: "USD sin fecha", Metadata: map[string]any{MetaDate: "2025-08-08"}}
	got, ok := d.Date()
	if !ok || got.Format(ISODateLayout) != "2025-08-08" {
		t.Errorf("expected metadata date, got %v %v", got, ok)
	}
}

func TestDocument_Date_None(t *testing.T) {
	d := Document{Text: "USD sin fecha", Metadata: map[string]any{MetaDate: 20250808}}
	if _, ok := d.Date(); ok {
		t.Error("expected no date")
	}
}

func TestDocument_Clone_Independent(t *testing.T) {
	orig := Document{ID: "a", Text: "t", Metadata: map[string]any{"k": "v"}}
	cp := orig.Clone()
	cp.Metadata["k"] = "changed"

	if orig.Metadata["k"] != "v" {
		t.Errorf("clone shares metadata with original")
	}
}
