// check-puzzle verifies one published puzzle: it finds every first move
// that forces mate in the declared count and compares them against the
// dataset's expected solution.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/casvannoort/4462-chess-problems/internal/corpus"
	"github.com/casvannoort/4462-chess-problems/internal/logx"
	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
	"github.com/casvannoort/4462-chess-problems/internal/solve"
)

func main() {
	defaultStockfish := "stockfish"
	if envPath := os.Getenv("STOCKFISH_PATH"); envPath != "" {
		defaultStockfish = envPath
	}

	var (
		chunksDir     = flag.String("chunks", "public/puzzles", "Directory of chunk-N.json files")
		stockfishPath = flag.String("stockfish", defaultStockfish, "Path to the engine binary")
		multiPV       = flag.Int("multipv", 0, "Search breadth override (0 = choose by mate count)")
		hashMB        = flag.Int("hash-mb", 256, "Engine hash table size, MB")
		logLevel      = flag.String("log-level", "warn", "Log level")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: check-puzzle [options] <puzzle-id>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	id, err := strconv.Atoi(flag.Arg(0))
	if err != nil || id < 1 {
		fmt.Fprintf(os.Stderr, "invalid puzzle id %q\n", flag.Arg(0))
		os.Exit(1)
	}

	logger := logx.NewLogger(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := corpus.LoadChunk(*chunksDir, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load puzzle: %v\n", err)
		os.Exit(1)
	}

	mateIn := p.MateCount()
	fmt.Printf("Puzzle #%d\n", p.ID)
	fmt.Printf("Type: %s\n", p.Type)
	fmt.Printf("FEN: %s\n", p.FEN)
	if len(p.Reference) > 0 {
		fmt.Printf("Solution: %s\n", lineString(p.Reference))
	}
	if mateIn == 0 {
		fmt.Fprintf(os.Stderr, "unknown mate type: %s\n", p.Type)
		os.Exit(1)
	}
	fmt.Printf("\nSearching for all moves that force mate in %d...\n\n", mateIn)

	res := solve.Solve(ctx, solve.WorkerConfig{
		EnginePath:    *stockfishPath,
		HashMB:        *hashMB,
		MultiPV:       *multiPV,
		SearchTimeout: 30 * time.Second,
		Logger:        logger,
	}, p)
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "solve: %v\n", res.Err)
		os.Exit(1)
	}

	firsts := make([]string, 0, len(res.Tree))
	for move := range res.Tree {
		firsts = append(firsts, move)
	}
	sort.Strings(firsts)

	fmt.Printf("Found %d move(s) that force mate in %d:\n", len(firsts), mateIn)
	for _, move := range firsts {
		fmt.Printf("  %s\n", continuation(res.Tree, move))
	}

	if len(p.Reference) == 0 {
		return
	}
	expected := p.Reference[0].String()
	fmt.Printf("\nPuzzle's expected first move: %s\n", expected)

	_, hasExpected := res.Tree[expected]
	switch {
	case len(firsts) == 0:
		fmt.Println("no mate found (puzzle may be incorrect)")
		os.Exit(1)
	case !hasExpected:
		fmt.Printf("puzzle solution %s not among valid moves!\n", expected)
		os.Exit(1)
	case len(firsts) > 1:
		fmt.Println("multiple valid first moves exist")
	default:
		fmt.Println("puzzle has unique solution")
	}
}

func lineString(moves []puzzle.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, ";")
}

// continuation renders one root-to-leaf line starting at the given first
// move, picking the alphabetically first reply at each branch.
func continuation(tree puzzle.SolutionTree, first string) string {
	parts := []string{first}
	node := tree[first]
	for len(node) > 0 {
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts = append(parts, keys[0])
		node = node[keys[0]]
	}
	return strings.Join(parts, ";")
}
