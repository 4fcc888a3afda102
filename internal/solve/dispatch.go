package solve

import (
	"context"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// DispatcherConfig configures the batch solve pool.
type DispatcherConfig struct {
	Workers int // parallel engine sessions; 0 = available parallelism - 1
	Worker  WorkerConfig
	Logger  zerolog.Logger
}

// Dispatcher fans puzzles out across a bounded pool of workers, each
// owning its own engine session, and collects results in puzzle order.
type Dispatcher struct {
	cfg   DispatcherConfig
	log   zerolog.Logger
	solve func(context.Context, WorkerConfig, puzzle.Puzzle) puzzle.Result

	done int64
}

// NewDispatcher creates a dispatcher. Zero config fields get defaults.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU() - 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Dispatcher{
		cfg:   cfg,
		log:   cfg.Logger,
		solve: Solve,
	}
}

// Run solves all puzzles and returns their results sorted by puzzle id,
// so consumers see deterministic order regardless of completion order.
// Per-puzzle failures are carried inside their results; Run only returns
// an error when the whole batch is cancelled.
func (d *Dispatcher) Run(ctx context.Context, puzzles []puzzle.Puzzle) ([]puzzle.Result, error) {
	start := time.Now()
	d.log.Info().
		Int("puzzles", len(puzzles)).
		Int("workers", d.cfg.Workers).
		Msg("batch solve started")

	jobs := make(chan puzzle.Puzzle)
	out := make(chan puzzle.Result, len(puzzles))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		g.Go(func() error {
			for p := range jobs {
				out <- d.solve(gctx, d.cfg.Worker, p)
				atomic.AddInt64(&d.done, 1)
			}
			return nil
		})
	}

	progressDone := make(chan struct{})
	go d.reportProgress(gctx, len(puzzles), progressDone)

feed:
	for _, p := range puzzles {
		select {
		case <-gctx.Done():
			break feed
		case jobs <- p:
		}
	}
	close(jobs)

	err := g.Wait()
	close(out)
	close(progressDone)

	results := make([]puzzle.Result, 0, len(puzzles))
	for res := range out {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })

	d.log.Info().
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("batch solve finished")

	if err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// reportProgress logs solve progress every 10 seconds until the batch
// finishes.
func (d *Dispatcher) reportProgress(ctx context.Context, total int, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			d.log.Info().
				Int64("solved", atomic.LoadInt64(&d.done)).
				Int("total", total).
				Msg("solve progress")
		}
	}
}
