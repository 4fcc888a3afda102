package solve

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/casvannoort/4462-chess-problems/internal/engine"
)

// ladderFor returns the escalating search depths tried for a mate-in-n
// puzzle. Most puzzles resolve at the first rung; deeper rungs only run
// on demonstrated need. The n=2 and n=3 rungs are tuned empirically
// against Stockfish and are policy, not law.
func ladderFor(n int) []int {
	switch {
	case n <= 1:
		return []int{4, 6, 8}
	case n == 2:
		return []int{8, 12, 16, 20}
	case n == 3:
		return []int{14, 18, 24, 30}
	default:
		return []int{4*n + 4, 6*n + 8, 8*n + 12, 10*n + 16}
	}
}

// breadthFor returns the MultiPV breadth for a mate-in-n search. Mate in
// one has little fan-out; deeper puzzles need a wide net so that every
// genuinely mating first move surfaces, not just the engine's best line.
func breadthFor(n int) int {
	if n == 1 {
		return 12
	}
	return 50
}

// controller drives one backend through the depth ladder for one puzzle.
type controller struct {
	backend engine.Backend
	log     zerolog.Logger
}

// run searches the position at each ladder depth until some candidate
// carries a full-length mating continuation: 2(n-1) plies after the first
// move, i.e. a line the engine has actually verified to the mate rather
// than cut off at the horizon. A search timeout yields whatever partial
// output was collected and the ladder moves on. If the ladder is
// exhausted the last parse result is returned as-is, which may include
// under-verified short lines; the validator downstream flags those.
func (c *controller) run(ctx context.Context, fen string, mateIn int) (Candidates, int, error) {
	fullLine := 2*mateIn - 1

	var (
		cands     Candidates
		depthUsed int
	)
	for _, depth := range ladderFor(mateIn) {
		lines, err := c.backend.Search(ctx, fen, depth)
		if err != nil && !errors.Is(err, engine.ErrSearchTimeout) {
			return nil, depthUsed, err
		}
		if errors.Is(err, engine.ErrSearchTimeout) {
			c.log.Warn().Int("depth", depth).Int("lines", len(lines)).Msg("search timed out, parsing partial output")
		}

		var reached int
		cands, reached = ParseSearch(lines, mateIn)
		depthUsed = depth
		c.log.Debug().
			Int("depth", depth).
			Int("reached", reached).
			Int("candidates", len(cands)).
			Msg("ladder step")

		for _, pv := range cands {
			if len(pv) >= fullLine {
				return cands, depthUsed, nil
			}
		}
	}
	return cands, depthUsed, nil
}
