package solve

import (
	"reflect"
	"testing"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

func TestParseSearchKeepsOnlyMaxDepth(t *testing.T) {
	// The depth-4 line reports the same mate score as the final lines;
	// it is superseded by the deeper pass and must be discarded anyway.
	lines := []string{
		"info depth 4 seldepth 5 multipv 1 score mate 2 nodes 100 pv a1a2 h8h7 a2a3",
		"info depth 6 seldepth 7 multipv 1 score cp 350 nodes 2000 pv e2e4 e7e5",
		"info depth 8 seldepth 9 multipv 1 score mate 2 nodes 9000 time 12 pv d5c6 b7c6 f1b5",
		"info depth 8 seldepth 9 multipv 2 score mate 2 nodes 9000 time 12 pv d5e6 b7c6 f1b5",
		"bestmove d5c6 ponder b7c6",
	}

	cands, maxDepth := ParseSearch(lines, 2)
	if maxDepth != 8 {
		t.Errorf("maxDepth = %d, want 8", maxDepth)
	}
	if len(cands) != 2 {
		t.Fatalf("candidates = %d, want 2", len(cands))
	}
	if _, ok := cands[puzzle.MustParseMove("a1a2")]; ok {
		t.Error("shallow depth-4 candidate should have been discarded")
	}
	want := []puzzle.Move{
		puzzle.MustParseMove("d5c6"),
		puzzle.MustParseMove("b7c6"),
		puzzle.MustParseMove("f1b5"),
	}
	if got := cands[puzzle.MustParseMove("d5c6")]; !reflect.DeepEqual(got, want) {
		t.Errorf("pv = %v, want %v", got, want)
	}
}

func TestParseSearchFiltersScores(t *testing.T) {
	lines := []string{
		"info depth 10 multipv 1 score cp 900 pv e2e4 e7e5",        // positional, not mate
		"info depth 10 multipv 2 score mate 3 pv a1a2 h8h7 a2a3",   // wrong mate distance
		"info depth 10 multipv 3 score mate 2 pv d5c6 b7c6 f1b5",   // keep
		"info depth 10 multipv 4 score mate -2 pv h1h2 a8a7 h2h3",  // getting mated, not mating
	}

	cands, _ := ParseSearch(lines, 2)
	if len(cands) != 1 {
		t.Fatalf("candidates = %d, want 1", len(cands))
	}
	if _, ok := cands[puzzle.MustParseMove("d5c6")]; !ok {
		t.Error("mate-2 candidate missing")
	}
}

func TestParseSearchDedupesByFirstMove(t *testing.T) {
	lines := []string{
		"info depth 8 multipv 1 score mate 1 pv a7a8q h8h7",
		"info depth 8 multipv 1 score mate 1 pv a7a8q",
	}

	cands, _ := ParseSearch(lines, 1)
	got := cands[puzzle.MustParseMove("a7a8q")]
	if len(got) != 1 {
		t.Errorf("later line should win, got pv %v", got)
	}
}

func TestParseSearchIgnoresNoise(t *testing.T) {
	lines := []string{
		"Stockfish 16 by the Stockfish developers (see AUTHORS file)",
		"info string NNUE evaluation using nn-5af11540bbfe.nnue",
		"info depth 5 currmove e2e4 currmovenumber 1", // no score, no pv
		"info nodes 12345 time 6789",                  // no depth
		"info depth notanumber score mate 1 pv a7a8q",
		"bestmove (none)",
		"",
	}

	cands, maxDepth := ParseSearch(lines, 1)
	if len(cands) != 0 {
		t.Errorf("noise lines produced candidates: %v", cands)
	}
	if maxDepth != 5 {
		t.Errorf("maxDepth = %d, want 5", maxDepth)
	}
}

func TestParseSearchIdempotent(t *testing.T) {
	lines := []string{
		"info depth 8 multipv 1 score mate 2 pv d5c6 b7c6 f1b5",
		"info depth 8 multipv 2 score mate 2 pv d5e6 b7c6 f1b5",
		"bestmove d5c6",
	}

	first, d1 := ParseSearch(lines, 2)
	second, d2 := ParseSearch(lines, 2)
	if d1 != d2 || !reflect.DeepEqual(first, second) {
		t.Errorf("re-parsing identical input diverged: %v vs %v", first, second)
	}
}

func TestParseSearchEmpty(t *testing.T) {
	cands, maxDepth := ParseSearch(nil, 2)
	if len(cands) != 0 || maxDepth != 0 {
		t.Errorf("ParseSearch(nil) = %v, %d, want empty", cands, maxDepth)
	}
}
