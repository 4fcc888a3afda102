package solve

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// ValidationSummary counts the post-hoc checks over a finished batch.
type ValidationSummary struct {
	Solved        int // tree depth matches the declared mate count
	DepthMismatch int // solution exists but at a different mate count
	Unsolved      int // empty tree: no mating line found
}

// Validate compares every result's actual tree depth against its declared
// mate count (2N-1 plies for mate in N). A mismatch is a warning: the
// type label is rewritten to carry both the observed and the declared
// count. An empty tree is an error, distinct from a mismatched-but-present
// solution. Results are annotated in place; the batch never aborts.
func Validate(results []puzzle.Result, log zerolog.Logger) ValidationSummary {
	var sum ValidationSummary
	for i := range results {
		r := &results[i]

		if len(r.Tree) == 0 {
			if r.Err == nil {
				r.Err = ErrNoSolution
			}
			sum.Unsolved++
			log.Error().
				Int("puzzle", r.ID).
				Str("type", r.Type).
				Err(r.Err).
				Msg("puzzle unsolved")
			continue
		}

		declared := puzzle.ParseMateCount(r.Type)
		depth := r.Tree.Depth()
		if declared > 0 && depth != 2*declared-1 {
			observed := (depth + 1) / 2
			r.Warning = fmt.Sprintf("tree depth %d plies: mate in %d, declared mate in %d", depth, observed, declared)
			r.Type = fmt.Sprintf("Mate in %d (declared %s)", observed, r.Type)
			sum.DepthMismatch++
			log.Warn().
				Int("puzzle", r.ID).
				Int("declared", declared).
				Int("observed", observed).
				Msg("mate count mismatch")
			continue
		}
		sum.Solved++
	}
	return sum
}
