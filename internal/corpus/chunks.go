package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// ChunkSize is the number of puzzles per published chunk file.
const ChunkSize = 100

// problemRecord mirrors one entry of the published dataset files.
type problemRecord struct {
	ProblemID int    `json:"problemid"`
	First     string `json:"first"`
	Type      string `json:"type"`
	FEN       string `json:"fen"`
	Moves     string `json:"moves"` // "e2-e4;e7-e5;..." reference line
}

// LoadChunk loads the one puzzle with the given id from its chunk file
// (chunk-N.json holds puzzles N*100+1 .. N*100+100).
func LoadChunk(dir string, id int) (puzzle.Puzzle, error) {
	records, err := readChunkFile(chunkPath(dir, (id-1)/ChunkSize))
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	for _, rec := range records {
		if rec.ProblemID == id {
			return rec.toPuzzle()
		}
	}
	return puzzle.Puzzle{}, fmt.Errorf("puzzle %d not found in %s", id, dir)
}

// LoadChunks loads every chunk file in the directory, sorted by puzzle id.
func LoadChunks(dir string) ([]puzzle.Puzzle, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "chunk-*.json*"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no chunk files in %s", dir)
	}

	var puzzles []puzzle.Puzzle
	for _, path := range matches {
		records, err := readChunkFile(path)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			p, err := rec.toPuzzle()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			puzzles = append(puzzles, p)
		}
	}
	sort.Slice(puzzles, func(i, j int) bool { return puzzles[i].ID < puzzles[j].ID })
	return puzzles, nil
}

func (rec problemRecord) toPuzzle() (puzzle.Puzzle, error) {
	reference, err := puzzle.ParseLine(rec.Moves)
	if err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle %d: %w", rec.ProblemID, err)
	}
	return puzzle.Puzzle{
		ID:        rec.ProblemID,
		FEN:       rec.FEN,
		Type:      rec.Type,
		First:     rec.First,
		Reference: reference,
	}, nil
}

func chunkPath(dir string, n int) string {
	path := filepath.Join(dir, fmt.Sprintf("chunk-%d.json", n))
	if _, err := os.Stat(path); err != nil {
		if zst := path + ".zst"; fileExists(zst) {
			return zst
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readChunkFile decodes one chunk file, transparently decompressing .zst.
func readChunkFile(path string) ([]problemRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd reader %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	var records []problemRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}
