// Package puzzle defines the core records of the mate-solving pipeline:
// input puzzles, moves, solution trees, and per-puzzle results.
package puzzle

import (
	"strconv"
	"strings"
	"unicode"
)

// Puzzle is one immutable problem record from the corpus.
type Puzzle struct {
	ID    int    // unique, 1-based corpus ordinal
	FEN   string // starting position
	Type  string // declared label, e.g. "Mate in two"
	First string // side-to-move label, e.g. "White to move"

	// Reference is the curated solution line from the dataset, if any.
	// Empty when solving fresh from PGN.
	Reference []Move
}

// MateCount returns the declared mate count parsed from the type label,
// or 0 if the label carries no recognizable count.
func (p Puzzle) MateCount() int {
	return ParseMateCount(p.Type)
}

// Result is the solver's output for one puzzle.
type Result struct {
	ID    int          `json:"problemid"`
	First string       `json:"first"`
	Type  string       `json:"type"`
	FEN   string       `json:"fen"`
	Tree  SolutionTree `json:"moves"`

	// SearchDepth is the engine depth the solution was found at (diagnostic).
	SearchDepth int `json:"-"`
	// Warning is set when the solution exists but disagrees with the
	// declared mate count.
	Warning string `json:"-"`
	// Err is set when the puzzle could not be solved at all.
	Err error `json:"-"`
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// ParseMateCount extracts the mate count from a free-text label like
// "Mate in two" or "mate in 3". Number words one through ten and literal
// digit tokens are recognized, case-insensitively; the first match wins.
// Returns 0 if no count is found.
func ParseMateCount(label string) int {
	for _, word := range strings.Fields(strings.ToLower(label)) {
		if n, ok := numberWords[word]; ok {
			return n
		}
		if n, err := strconv.Atoi(word); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// TitleCase normalizes a label like "mate in two" to "Mate in two".
// The connectives "in" and "to" stay lowercase unless they lead.
func TitleCase(label string) string {
	words := strings.Fields(label)
	for i, word := range words {
		lower := strings.ToLower(word)
		if i > 0 && (lower == "in" || lower == "to") {
			words[i] = lower
			continue
		}
		r := []rune(lower)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
