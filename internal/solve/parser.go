// Package solve extracts verified mate solutions from engine search
// output: parsing MultiPV results, escalating search depth, merging lines
// into solution trees, and validating declared mate counts.
package solve

import (
	"strconv"
	"strings"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// Candidates maps a mating first move to its full principal variation
// (first move included).
type Candidates map[puzzle.Move][]puzzle.Move

// ParseSearch extracts mate candidates from the raw output of one search.
// Only info lines reporting the maximum depth seen in this output are
// considered; the engine streams shallower intermediate results first and
// those are superseded. Of the max-depth lines, only those scored as mate
// in exactly mateIn survive. Duplicate first moves keep the line seen
// last. Malformed or irrelevant lines are protocol noise and are skipped.
//
// Returns the candidates and the maximum depth reported.
func ParseSearch(lines []string, mateIn int) (Candidates, int) {
	maxDepth := 0
	for _, line := range lines {
		if d, ok := infoDepth(line); ok && d > maxDepth {
			maxDepth = d
		}
	}

	cands := Candidates{}
	for _, line := range lines {
		d, ok := infoDepth(line)
		if !ok || d != maxDepth {
			continue
		}
		fields := strings.Fields(line)
		mate, ok := mateScore(fields)
		if !ok || mate != mateIn {
			continue
		}
		pv := variation(fields)
		if len(pv) == 0 {
			continue
		}
		cands[pv[0]] = pv
	}
	return cands, maxDepth
}

// infoDepth returns the depth field of a search-progress line.
func infoDepth(line string) (int, bool) {
	if !strings.HasPrefix(line, "info ") {
		return 0, false
	}
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "depth" && i+1 < len(fields) {
			d, err := strconv.Atoi(fields[i+1])
			if err != nil || d <= 0 {
				return 0, false
			}
			return d, true
		}
	}
	return 0, false
}

// mateScore returns the mate distance if the line's score is a mate
// score. Positional (cp) scores report no mate and are rejected.
func mateScore(fields []string) (int, bool) {
	for i, f := range fields {
		if f != "score" {
			continue
		}
		if i+2 >= len(fields) || fields[i+1] != "mate" {
			return 0, false
		}
		n, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// variation returns the principal variation following the pv marker.
// A malformed move truncates the variation at that point.
func variation(fields []string) []puzzle.Move {
	for i, f := range fields {
		if f != "pv" {
			continue
		}
		pv := make([]puzzle.Move, 0, len(fields)-i-1)
		for _, tok := range fields[i+1:] {
			m, err := puzzle.ParseMove(tok)
			if err != nil {
				break
			}
			pv = append(pv, m)
		}
		return pv
	}
	return nil
}
