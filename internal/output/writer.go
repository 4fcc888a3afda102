// Package output writes the solved dataset in the formats the puzzle
// presentation app consumes: a single problems file or per-chunk files.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// WriteProblems writes all results as one {"problems": [...]} document.
// A .zst suffix enables zstd compression.
func WriteProblems(path string, results []puzzle.Result) error {
	doc := struct {
		Problems []puzzle.Result `json:"problems"`
	}{Problems: results}
	return writeJSON(path, doc)
}

// WriteChunks writes results as chunk-N.json files, the layout the
// presentation app loads lazily. The chunk number is derived from the
// puzzle id ((id-1)/chunkSize), matching the reader's lookup, so a batch
// covering ids 201-300 lands in chunk-2.json regardless of slice offset.
func WriteChunks(dir string, results []puzzle.Result, chunkSize int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	chunks := map[int][]puzzle.Result{}
	for _, r := range results {
		n := (r.ID - 1) / chunkSize
		chunks[n] = append(chunks[n], r)
	}
	for n, group := range chunks {
		path := filepath.Join(dir, fmt.Sprintf("chunk-%d.json", n))
		if err := writeJSON(path, group); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("zstd writer %s: %w", path, err)
		}
		defer enc.Close()
		w = enc
	}

	je := json.NewEncoder(w)
	je.SetIndent("", "  ")
	if err := je.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
