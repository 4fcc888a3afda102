package solve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/casvannoort/4462-chess-problems/internal/engine"
	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// ErrNoSolution marks a puzzle for which no mating line was found at any
// ladder depth.
var ErrNoSolution = errors.New("no mating line found")

// WorkerConfig configures the per-puzzle solve pipeline.
type WorkerConfig struct {
	EnginePath    string
	HashMB        int           // engine hash size per session
	MultiPV       int           // 0 = choose by mate count
	SearchTimeout time.Duration // per search call
	Logger        zerolog.Logger
}

// Solve runs the full pipeline for one puzzle: spawn an engine session,
// handshake, walk the depth ladder, build the solution tree. The session
// is shut down on every exit path so no engine process leaks.
//
// Per-puzzle failures are contained in the result: a launch or handshake
// failure yields an empty tree with the error attached, and an exhausted
// ladder yields an empty tree with no error (absence of a solution is a
// reportable outcome, not a failure).
func Solve(ctx context.Context, cfg WorkerConfig, p puzzle.Puzzle) puzzle.Result {
	res := puzzle.Result{
		ID:    p.ID,
		First: puzzle.TitleCase(p.First),
		Type:  puzzle.TitleCase(p.Type),
		FEN:   p.FEN,
		Tree:  puzzle.NewSolutionTree(),
	}

	mateIn := p.MateCount()
	if mateIn == 0 {
		res.Err = fmt.Errorf("unrecognized mate count in type %q", p.Type)
		return res
	}

	breadth := cfg.MultiPV
	if breadth == 0 {
		breadth = breadthFor(mateIn)
	}

	log := cfg.Logger.With().Int("puzzle", p.ID).Logger()
	sess := engine.NewSession(engine.Config{
		Path:          cfg.EnginePath,
		MultiPV:       breadth,
		HashMB:        cfg.HashMB,
		SearchTimeout: cfg.SearchTimeout,
		Logger:        log,
	})
	if err := sess.Start(); err != nil {
		res.Err = err
		return res
	}
	defer sess.Shutdown()

	tree, depthUsed, err := solveWith(ctx, sess, p, mateIn, log)
	res.Tree = tree
	res.SearchDepth = depthUsed
	res.Err = err
	return res
}

// solveWith runs handshake, ladder, and tree build against any backend.
func solveWith(ctx context.Context, b engine.Backend, p puzzle.Puzzle, mateIn int, log zerolog.Logger) (puzzle.SolutionTree, int, error) {
	if err := b.Handshake(ctx); err != nil {
		return puzzle.NewSolutionTree(), 0, err
	}

	ctrl := &controller{backend: b, log: log}
	cands, depthUsed, err := ctrl.run(ctx, p.FEN, mateIn)
	if err != nil {
		return puzzle.NewSolutionTree(), depthUsed, err
	}

	tree := BuildTree(p.FEN, cands, p.Reference, mateIn)
	log.Debug().
		Int("mate_in", mateIn).
		Int("depth_used", depthUsed).
		Int("first_moves", len(tree)).
		Msg("puzzle solved")
	return tree, depthUsed, nil
}
