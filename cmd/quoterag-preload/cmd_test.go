package main

import (
	"bytes"
	"context"
	"hash/fnv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/quoterag/internal/corpus"
	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/index"
)

// hashEmbedder maps each text to a deterministic 4-dim vector.
type hashEmbedder struct {
	calls int
}

func (e *hashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	s := h.Sum32()
	return domain.EmbeddingResult{Embedding: []float32{
		float32(s&0xff) + 1, float32(s>>8&0xff) + 1, float32(s>>16&0xff) + 1, float32(s>>24) + 1,
	}}, nil
}

func seedDocs(t *testing.T) []domain.Document {
	t.Helper()
	docs, err := corpus.Documents(corpus.BCP())
	if err != nil {
		t.Fatal(err)
	}
	return docs
}

func TestPreload_WritesSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "index.qrag")
	docs := seedDocs(t)

	idx := index.New(&hashEmbedder{})
	added, err := preload(ctx, idx, docs, preloadOptions{out: path})
	if err != nil {
		t.Fatalf("preload: %v", err)
	}
	if added != 78 || idx.Len() != 78 {
		t.Fatalf("added=%d len=%d, want 78", added, idx.Len())
	}

	reloaded := index.New(&hashEmbedder{})
	if err := reloaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Len() != 78 {
		t.Errorf("reloaded %d documents", reloaded.Len())
	}
}

func TestPreload_AppendSkipsExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.qrag")
	docs := seedDocs(t)

	if _, err := preload(ctx, index.New(&hashEmbedder{}), docs[:26], preloadOptions{out: path}); err != nil {
		t.Fatalf("first preload: %v", err)
	}

	emb := &hashEmbedder{}
	idx := index.New(emb)
	added, err := preload(ctx, idx, docs, preloadOptions{out: path, append: true})
	if err != nil {
		t.Fatalf("append preload: %v", err)
	}
	if added != 52 {
		t.Errorf("added %d, want 52", added)
	}
	if emb.calls != 52 {
		t.Errorf("embedded %d texts, want 52", emb.calls)
	}
	if idx.Len() != 78 {
		t.Errorf("len %d, want 78", idx.Len())
	}
}

func TestPreload_AppendWithoutSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.qrag")
	added, err := preload(context.Background(), index.New(&hashEmbedder{}), seedDocs(t)[:3],
		preloadOptions{out: path, append: true})
	if err != nil {
		t.Fatalf("preload: %v", err)
	}
	if added != 3 {
		t.Errorf("added %d, want 3", added)
	}
}

func TestMissing(t *testing.T) {
	existing := []domain.Document{{ID: "a"}, {ID: "b"}}
	docs := []domain.Document{{ID: "b"}, {ID: "c"}, {ID: "a"}, {ID: "d"}}

	got := missing(existing, docs)
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "d" {
		t.Errorf("got %v", got)
	}
}

func TestPrintDocuments(t *testing.T) {
	var buf bytes.Buffer
	if err := printDocuments(&buf, seedDocs(t)[:2]); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "2025-08-11_USD\tEl 2025-08-11 la cotización de USD fue 7263.48") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.HasSuffix(out, "2 documents\n") {
		t.Errorf("missing summary line:\n%s", out)
	}
}
