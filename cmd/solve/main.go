package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/casvannoort/4462-chess-problems/internal/corpus"
	"github.com/casvannoort/4462-chess-problems/internal/logx"
	"github.com/casvannoort/4462-chess-problems/internal/output"
	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
	"github.com/casvannoort/4462-chess-problems/internal/solve"
)

func main() {
	defaultStockfish := "stockfish"
	if envPath := os.Getenv("STOCKFISH_PATH"); envPath != "" {
		defaultStockfish = envPath
	}
	defaultWorkers := 0
	if envWorkers := os.Getenv("SOLVER_WORKERS"); envWorkers != "" {
		if n, err := strconv.Atoi(envWorkers); err == nil {
			defaultWorkers = n
		}
	}

	var (
		pgnPath       = flag.String("pgn", "", "Path to book PGN file (supports .zst)")
		chunksDir     = flag.String("chunks", "", "Directory of published chunk-N.json files to re-solve")
		stockfishPath = flag.String("stockfish", defaultStockfish, "Path to the engine binary")
		workers       = flag.Int("workers", defaultWorkers, "Parallel engine sessions (0 = CPUs-1)")
		startID       = flag.Int("start", 1, "First puzzle id (inclusive)")
		endID         = flag.Int("end", 0, "Last puzzle id (inclusive, 0 = all)")
		outputPath    = flag.String("output", "problems.json", "Output file ({\"problems\":[...]}, .zst supported)")
		chunkDir      = flag.String("chunk-dir", "", "Also write chunk-N.json files into this directory")
		multiPV       = flag.Int("multipv", 0, "Search breadth override (0 = choose by mate count)")
		hashMB        = flag.Int("hash-mb", 256, "Engine hash table size per session, MB")
		searchTimeout = flag.Duration("search-timeout", 30*time.Second, "Wall-clock limit per engine search")
		logLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if (*pgnPath == "") == (*chunksDir == "") {
		fmt.Fprintln(os.Stderr, "Usage: solve --pgn <book.pgn[.zst]> | --chunks <dir> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger(*logLevel)
	logger.Info().
		Str("stockfish", *stockfishPath).
		Str("output", *outputPath).
		Msg("starting batch solve")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		puzzles []puzzle.Puzzle
		err     error
	)
	if *pgnPath != "" {
		puzzles, err = corpus.LoadPGN(*pgnPath, *startID, *endID, logger)
	} else {
		puzzles, err = corpus.LoadChunks(*chunksDir)
		puzzles = filterRange(puzzles, *startID, *endID)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("load puzzle corpus")
	}
	if len(puzzles) == 0 {
		logger.Fatal().Msg("no puzzles in selected range")
	}

	dispatcher := solve.NewDispatcher(solve.DispatcherConfig{
		Workers: *workers,
		Worker: solve.WorkerConfig{
			EnginePath:    *stockfishPath,
			HashMB:        *hashMB,
			MultiPV:       *multiPV,
			SearchTimeout: *searchTimeout,
			Logger:        logger,
		},
		Logger: logger,
	})

	start := time.Now()
	results, err := dispatcher.Run(ctx, puzzles)
	if err != nil {
		logger.Error().Err(err).Int("partial_results", len(results)).Msg("batch interrupted")
	}

	summary := solve.Validate(results, logger)

	if err := output.WriteProblems(*outputPath, results); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}
	if *chunkDir != "" {
		if err := output.WriteChunks(*chunkDir, results, corpus.ChunkSize); err != nil {
			logger.Fatal().Err(err).Msg("write chunks")
		}
	}

	logger.Info().
		Int("puzzles", len(results)).
		Int("solved", summary.Solved).
		Int("depth_mismatch", summary.DepthMismatch).
		Int("unsolved", summary.Unsolved).
		Dur("elapsed", time.Since(start)).
		Msg("batch solve complete")
}

func filterRange(puzzles []puzzle.Puzzle, start, end int) []puzzle.Puzzle {
	out := puzzles[:0]
	for _, p := range puzzles {
		if p.ID < start {
			continue
		}
		if end > 0 && p.ID > end {
			continue
		}
		out = append(out, p)
	}
	return out
}
