// Package corpus loads puzzle records: fresh problems from the Polgár
// PGN book, or previously-published dataset chunks for re-verification.
package corpus

import (
	"fmt"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// LoadPGN reads puzzles from the book PGN (supports .zst). Each game
// carries the position in its FEN header, the puzzle type in the White
// header ("Mate in two") and the side to move in the Black header
// ("White to move"). The first game is the book's credits page and is
// skipped; puzzle ids are 1-based ordinals after it.
//
// start and end bound the id range; end = 0 means no upper bound.
func LoadPGN(path string, start, end int, log zerolog.Logger) ([]puzzle.Puzzle, error) {
	parser := pgn.Games(path)

	var puzzles []puzzle.Puzzle
	seen := 0
	for game := range parser.Games {
		seen++
		if seen == 1 {
			continue // credits game
		}
		id := seen - 1
		if end > 0 && id > end {
			parser.Stop()
			break
		}
		if id < start {
			continue
		}

		fen := game.Tags["FEN"]
		if fen == "" {
			log.Warn().Int("puzzle", id).Msg("no FEN header, skipping")
			continue
		}
		puzzles = append(puzzles, puzzle.Puzzle{
			ID:    id,
			FEN:   fen,
			Type:  puzzle.TitleCase(game.Tags["White"]),
			First: puzzle.TitleCase(game.Tags["Black"]),
		})
	}
	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return puzzles, nil
}
