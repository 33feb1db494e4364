package index

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// Snapshot layout, little-endian:
//
//	magic    [8]byte  "QRAGIDX2"
//	rows     uint32   matrix row count
//	dim      uint32   embedding dimension
//	docsLen  uint32   length of the document block
//	docs     []byte   gob-encoded []domain.Document
//	matrix   rows*dim float32
//
// Documents are gob-encoded so text bytes and metadata value types
// (int64 stays int64, invalid UTF-8 stays as is) survive a round trip.
var snapshotMagic = [8]byte{'Q', 'R', 'A', 'G', 'I', 'D', 'X', '2'}

// Metadata value types beyond the gob built-ins. Any other concrete type in
// metadata makes Save fail with domain.ErrPersistence.
func init() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(time.Time{})
}

const headerSize = 8 + 4 + 4 + 4

// Save writes the whole index to path as one snapshot.
// The file is written next to path and renamed into place, so a concurrent
// reader (or the reload watcher) never sees a half-written snapshot.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	data, err := encodeSnapshot(ix.docs, ix.vectors, ix.dim)
	rows := len(ix.docs)
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w: %w", domain.ErrPersistence, err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write snapshot %s: %w: %w", path, domain.ErrPersistence, err)
	}

	ix.logger.Info("Index snapshot saved",
		zap.String("path", path),
		zap.Int("documents", rows),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Load replaces the in-memory state with the snapshot at path.
// On any failure the current state is kept and the error wraps domain.ErrPersistence.
func (ix *Index) Load(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w: %w", path, domain.ErrPersistence, err)
	}

	docs, vectors, dim, err := decodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("decode snapshot %s: %w: %w", path, domain.ErrPersistence, err)
	}

	ix.replace(docs, vectors, dim)

	ix.logger.Info("Index snapshot loaded",
		zap.String("path", path),
		zap.Int("documents", len(docs)),
		zap.Int("dimensions", dim),
	)
	return nil
}

func encodeSnapshot(docs []domain.Document, vectors [][]float32, dim int) ([]byte, error) {
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("%d documents but %d vectors", len(docs), len(vectors))
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	var block bytes.Buffer
	if err := gob.NewEncoder(&block).Encode(docs); err != nil {
		return nil, fmt.Errorf("encode documents: %w", err)
	}
	docsBlock := block.Bytes()

	buf := make([]byte, headerSize, headerSize+len(docsBlock)+len(vectors)*dim*4)
	copy(buf, snapshotMagic[:])
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(vectors)))
	binary.LittleEndian.PutUint32(buf[12:], uint32(dim))
	binary.LittleEndian.PutUint32(buf[16:], uint32(len(docsBlock)))
	buf = append(buf, docsBlock...)

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(v), dim)
		}
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf, nil
}

var errCorrupt = errors.New("corrupt snapshot")

func decodeSnapshot(data []byte) ([]domain.Document, [][]float32, int, error) {
	if len(data) < headerSize {
		return nil, nil, 0, fmt.Errorf("%w: %d bytes is shorter than the header", errCorrupt, len(data))
	}
	if !bytes.Equal(data[:8], snapshotMagic[:]) {
		return nil, nil, 0, fmt.Errorf("%w: bad magic %q", errCorrupt, data[:8])
	}

	rows := uint64(binary.LittleEndian.Uint32(data[8:]))
	dim := uint64(binary.LittleEndian.Uint32(data[12:]))
	docsLen := uint64(binary.LittleEndian.Uint32(data[16:]))
	body := data[headerSize:]

	if docsLen > uint64(len(body)) {
		return nil, nil, 0, fmt.Errorf("%w: document block truncated", errCorrupt)
	}
	if rows > 0 && dim == 0 {
		return nil, nil, 0, fmt.Errorf("%w: %d rows with zero dimension", errCorrupt, rows)
	}

	var docs []domain.Document
	if err := gob.NewDecoder(bytes.NewReader(body[:docsLen])).Decode(&docs); err != nil {
		return nil, nil, 0, fmt.Errorf("%w: documents: %w", errCorrupt, err)
	}
	if uint64(len(docs)) != rows {
		return nil, nil, 0, fmt.Errorf("%w: matrix has %d rows but %d documents", errCorrupt, rows, len(docs))
	}

	matrix := body[docsLen:]
	if want := rows * dim * 4; uint64(len(matrix)) != want {
		return nil, nil, 0, fmt.Errorf("%w: matrix is %d bytes, want %d", errCorrupt, len(matrix), want)
	}

	vectors := make([][]float32, rows)
	r := bytes.NewReader(matrix)
	for i := range vectors {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, nil, 0, fmt.Errorf("%w: row %d: %w", errCorrupt, i, err)
		}
		vectors[i] = row
	}
	if r.Len() != 0 {
		return nil, nil, 0, fmt.Errorf("%w: %d trailing bytes", errCorrupt, r.Len())
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, vectors, int(dim), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
