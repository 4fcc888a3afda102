package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

var _ Backend = (*Session)(nil)

// fakeEngine speaks just enough UCI over pipes to exercise the session.
type fakeEngine struct {
	onGo   func(w io.Writer, depth string)
	onStop func(w io.Writer)
}

// newTestSession wires a session to an in-process fake engine instead of
// a spawned binary.
func newTestSession(t *testing.T, cfg Config, fake *fakeEngine) *Session {
	t.Helper()
	cmdR, cmdW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		scanner := bufio.NewScanner(cmdR)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "uci":
				fmt.Fprintln(outW, "id name faketofish")
				fmt.Fprintln(outW, "uciok")
			case "isready":
				fmt.Fprintln(outW, "readyok")
			case "go":
				if fake.onGo != nil {
					fake.onGo(outW, fields[len(fields)-1])
				}
			case "stop":
				if fake.onStop != nil {
					fake.onStop(outW)
				}
			case "quit":
				outW.Close()
				return
			}
		}
	}()

	s := NewSession(cfg)
	s.stdin = cmdW
	s.startListener(outR)
	return s
}

func TestHandshakeAndSearch(t *testing.T) {
	fake := &fakeEngine{onGo: func(w io.Writer, depth string) {
		fmt.Fprintln(w, "info depth "+depth+" multipv 1 score mate 1 pv a7a8q")
		fmt.Fprintln(w, "bestmove a7a8q")
	}}
	s := newTestSession(t, Config{}, fake)
	defer s.Shutdown()

	ctx := context.Background()
	if err := s.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	lines, err := s.Search(ctx, "8/8/8/8/8/5K1k/8/6R1 w - - 0 1", 4)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want info + sentinel", lines)
	}
	if !strings.HasPrefix(lines[len(lines)-1], "bestmove") {
		t.Errorf("last line = %q, want the bestmove sentinel", lines[len(lines)-1])
	}
}

func TestHandshakeTimeout(t *testing.T) {
	// An engine that accepts commands but never acknowledges.
	cmdR, cmdW := io.Pipe()
	go io.Copy(io.Discard, cmdR)
	outR, _ := io.Pipe()

	s := NewSession(Config{HandshakeTimeout: 50 * time.Millisecond})
	s.stdin = cmdW
	s.startListener(outR)

	err := s.Handshake(context.Background())
	if !errors.Is(err, ErrHandshakeTimeout) {
		t.Errorf("err = %v, want ErrHandshakeTimeout", err)
	}
}

func TestSearchTimeoutReturnsPartialOutput(t *testing.T) {
	fake := &fakeEngine{
		onGo: func(w io.Writer, depth string) {
			fmt.Fprintln(w, "info depth 4 score cp 10 pv e2e4")
			// no bestmove: the search hangs
		},
		onStop: func(w io.Writer) {
			fmt.Fprintln(w, "bestmove e2e4")
		},
	}
	s := newTestSession(t, Config{SearchTimeout: 100 * time.Millisecond}, fake)
	defer s.Shutdown()

	ctx := context.Background()
	if err := s.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	lines, err := s.Search(ctx, "fen", 4)
	if !errors.Is(err, ErrSearchTimeout) {
		t.Fatalf("err = %v, want ErrSearchTimeout", err)
	}
	if len(lines) == 0 || !strings.Contains(lines[0], "e2e4") {
		t.Errorf("partial output should still be returned, got %v", lines)
	}
}

func TestSearchAfterTimeoutStaysInSync(t *testing.T) {
	// The first search stalls past its timeout; the engine only produces
	// its sentinel once stopped. The next search on the same session must
	// see its own output, not the aborted search's late lines.
	calls := 0
	fake := &fakeEngine{
		onGo: func(w io.Writer, depth string) {
			calls++
			if calls == 1 {
				fmt.Fprintln(w, "info depth 8 score mate 1 pv h7h8q")
				// no bestmove until stop arrives
			} else {
				fmt.Fprintln(w, "info depth 6 score mate 1 pv g1h1")
				fmt.Fprintln(w, "bestmove g1h1")
			}
		},
		onStop: func(w io.Writer) {
			fmt.Fprintln(w, "bestmove h7h8q")
		},
	}
	s := newTestSession(t, Config{SearchTimeout: 100 * time.Millisecond}, fake)
	defer s.Shutdown()

	ctx := context.Background()
	if err := s.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	lines, err := s.Search(ctx, "fen", 8)
	if !errors.Is(err, ErrSearchTimeout) {
		t.Fatalf("first search err = %v, want ErrSearchTimeout", err)
	}
	if len(lines) == 0 || !strings.HasPrefix(lines[len(lines)-1], "bestmove") {
		t.Fatalf("timed-out search should consume through its sentinel, got %v", lines)
	}

	lines, err = s.Search(ctx, "fen", 6)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	for _, line := range lines {
		if strings.Contains(line, "h7h8q") {
			t.Fatalf("first search's output leaked into the second: %v", lines)
		}
	}
	if len(lines) != 2 || !strings.Contains(lines[0], "g1h1") {
		t.Errorf("second search lines = %v, want its own info + sentinel", lines)
	}
}

func TestSearchDrainsStaleOutput(t *testing.T) {
	calls := 0
	fake := &fakeEngine{onGo: func(w io.Writer, depth string) {
		calls++
		if calls == 1 {
			fmt.Fprintln(w, "info depth 4 score mate 1 pv a7a8q")
			fmt.Fprintln(w, "bestmove a7a8q")
			// trailing output after the sentinel: must not leak into
			// the next search's buffer
			fmt.Fprintln(w, "info string stale leftover")
		} else {
			fmt.Fprintln(w, "info depth 6 score mate 1 pv g1h1")
			fmt.Fprintln(w, "bestmove g1h1")
		}
	}}
	s := newTestSession(t, Config{}, fake)
	defer s.Shutdown()

	ctx := context.Background()
	if err := s.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if _, err := s.Search(ctx, "fen", 4); err != nil {
		t.Fatalf("first search: %v", err)
	}

	// Give the stale line time to land in the queue before the drain.
	time.Sleep(20 * time.Millisecond)

	lines, err := s.Search(ctx, "fen", 6)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	for _, line := range lines {
		if strings.Contains(line, "stale") {
			t.Errorf("stale output leaked into the next search: %v", lines)
		}
	}
}

func TestSearchRequiresHandshake(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, Config{}, fake)
	defer s.Shutdown()

	if _, err := s.Search(context.Background(), "fen", 4); err == nil {
		t.Error("search before handshake should fail")
	}
}

func TestShutdownIdempotent(t *testing.T) {
	s := NewSession(Config{})
	if err := s.Shutdown(); err != nil {
		t.Errorf("shutdown without start: %v", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("second shutdown: %v", err)
	}
}

func TestShutdownUnblocksListener(t *testing.T) {
	// A full line queue with nobody reading must not wedge the listener
	// (and the pipe feeding it) after shutdown.
	outR, outW := io.Pipe()
	s := NewSession(Config{})
	s.startListener(outR)

	wrote := make(chan struct{})
	go func() {
		defer close(wrote)
		for i := 0; i < 5000; i++ {
			fmt.Fprintln(outW, "info string backlog")
		}
		outW.Close()
	}()

	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case <-wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("listener stayed blocked after shutdown")
	}
}

func TestShutdownReportsExitFailure(t *testing.T) {
	// A binary that exits nonzero right away stands in for an engine
	// dying under us; shutdown must surface that.
	s := NewSession(Config{Path: "/bin/false"})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Shutdown(); err == nil {
		t.Error("nonzero engine exit should surface from shutdown")
	}
}

func TestStartWithoutPath(t *testing.T) {
	s := NewSession(Config{})
	if err := s.Start(); !errors.Is(err, ErrProcessLaunch) {
		t.Errorf("err = %v, want ErrProcessLaunch", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	s := NewSession(Config{})
	if s.cfg.MultiPV == 0 || s.cfg.HashMB == 0 || s.cfg.SearchTimeout == 0 {
		t.Errorf("defaults not applied: %+v", s.cfg)
	}
}
