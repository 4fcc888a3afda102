package puzzle

import (
	"fmt"
	"strings"
)

// PromotionPieces are the four pieces a pawn may promote to, in engine
// notation.
var PromotionPieces = []byte{'q', 'r', 'b', 'n'}

// Move is a single half-move: origin square, destination square, and an
// optional promotion piece. Equality is structural.
//
// Two textual forms exist: the engine form used on the UCI wire ("e2e4",
// "a7a8q") and the dataset form used in the published puzzle files
// ("e2-e4", "a7-a8q").
type Move struct {
	From      string
	To        string
	Promotion byte // 'q', 'r', 'b', 'n', or 0
}

// ParseMove parses a move in either engine form or dataset form.
func ParseMove(s string) (Move, error) {
	raw := strings.ToLower(strings.Replace(s, "-", "", 1))
	if len(raw) != 4 && len(raw) != 5 {
		return Move{}, fmt.Errorf("malformed move %q", s)
	}
	m := Move{From: raw[0:2], To: raw[2:4]}
	if !validSquare(m.From) || !validSquare(m.To) {
		return Move{}, fmt.Errorf("malformed move %q", s)
	}
	if len(raw) == 5 {
		p := raw[4]
		if p != 'q' && p != 'r' && p != 'b' && p != 'n' {
			return Move{}, fmt.Errorf("invalid promotion piece in %q", s)
		}
		m.Promotion = p
	}
	return m, nil
}

// MustParseMove is like ParseMove but panics on malformed input. For
// constants and tests.
func MustParseMove(s string) Move {
	m, err := ParseMove(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseLine parses a semicolon-separated move sequence in dataset form,
// e.g. "e2-e4;e7-e5". An empty string yields an empty line.
func ParseLine(s string) ([]Move, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	line := make([]Move, 0, len(parts))
	for _, part := range parts {
		m, err := ParseMove(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		line = append(line, m)
	}
	return line, nil
}

// String returns the dataset form ("e2-e4", "a7-a8q").
func (m Move) String() string {
	s := m.From + "-" + m.To
	if m.Promotion != 0 {
		s += string(m.Promotion)
	}
	return s
}

// UCI returns the engine form ("e2e4", "a7a8q").
func (m Move) UCI() string {
	s := m.From + m.To
	if m.Promotion != 0 {
		s += string(m.Promotion)
	}
	return s
}

// IsPromotion reports whether the move carries a promotion piece.
func (m Move) IsPromotion() bool { return m.Promotion != 0 }

// WithPromotion returns a copy of the move promoting to piece p instead.
func (m Move) WithPromotion(p byte) Move {
	m.Promotion = p
	return m
}

func validSquare(sq string) bool {
	return len(sq) == 2 && sq[0] >= 'a' && sq[0] <= 'h' && sq[1] >= '1' && sq[1] <= '8'
}
