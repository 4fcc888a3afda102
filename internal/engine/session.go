// Package engine drives a UCI chess engine process over its line-oriented
// text protocol: one command pipe in, one continuously-drained line queue
// out, one search in flight at a time.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrProcessLaunch means the engine binary could not be started.
	ErrProcessLaunch = errors.New("engine process launch failed")
	// ErrHandshakeTimeout means the engine never acknowledged the UCI
	// handshake within the bounded wait.
	ErrHandshakeTimeout = errors.New("engine handshake timed out")
	// ErrSearchTimeout means the bestmove sentinel did not arrive in time.
	// The lines collected so far are still returned alongside it.
	ErrSearchTimeout = errors.New("engine search timed out")
	// ErrTerminated means the session is no longer usable.
	ErrTerminated = errors.New("engine session terminated")
)

// Backend is the search interface the solver depends on. A Session is the
// production implementation; tests substitute a scripted fake.
type Backend interface {
	Handshake(ctx context.Context) error
	Search(ctx context.Context, fen string, depth int) ([]string, error)
	Shutdown() error
}

// Config configures one engine session.
type Config struct {
	Path             string // engine binary
	MultiPV          int    // candidate lines to report per search
	HashMB           int    // engine hash table size
	SearchTimeout    time.Duration
	HandshakeTimeout time.Duration
	Logger           zerolog.Logger
}

// Session state machine.
const (
	stateUninitialized int32 = iota
	stateReady
	stateSearching
	stateTerminated
)

// Session owns one engine process. It is not safe for concurrent use;
// each solver worker owns its session exclusively.
type Session struct {
	cfg Config
	log zerolog.Logger

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	state    int32
	shutOnce sync.Once
	shutErr  error
}

// NewSession creates a session. Zero config fields get defaults; the
// process is not spawned until Start.
func NewSession(cfg Config) *Session {
	if cfg.MultiPV == 0 {
		cfg.MultiPV = 50
	}
	if cfg.HashMB == 0 {
		cfg.HashMB = 256
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 30 * time.Second
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	return &Session{
		cfg: cfg,
		log: cfg.Logger,
	}
}

// Start spawns the engine process and its output listener.
func (s *Session) Start() error {
	if s.cfg.Path == "" {
		return fmt.Errorf("%w: no engine path configured", ErrProcessLaunch)
	}
	cmd := exec.Command(s.cfg.Path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe: %v", ErrProcessLaunch, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", ErrProcessLaunch, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrProcessLaunch, err)
	}
	s.cmd = cmd
	s.stdin = stdin
	s.startListener(stdout)
	s.log.Debug().Str("engine", s.cfg.Path).Int("pid", cmd.Process.Pid).Msg("engine started")
	return nil
}

// startListener continuously scans engine output into the line queue, so
// reading never blocks command submission. The queue is closed on EOF.
func (s *Session) startListener(r io.Reader) {
	s.lines = make(chan string, 4096)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			s.lines <- strings.TrimSpace(scanner.Text())
		}
		close(s.lines)
	}()
}

// Handshake identifies the session as a UCI client, sets the search
// breadth and hash options, and waits for the engine to report ready.
// On success the session transitions to the ready state.
func (s *Session) Handshake(ctx context.Context) error {
	if atomic.LoadInt32(&s.state) == stateTerminated {
		return ErrTerminated
	}
	if err := s.send("uci"); err != nil {
		return err
	}
	if err := s.waitFor(ctx, "uciok", s.cfg.HandshakeTimeout); err != nil {
		return err
	}
	if err := s.send(fmt.Sprintf("setoption name MultiPV value %d", s.cfg.MultiPV)); err != nil {
		return err
	}
	if err := s.send(fmt.Sprintf("setoption name Hash value %d", s.cfg.HashMB)); err != nil {
		return err
	}
	if err := s.send("isready"); err != nil {
		return err
	}
	if err := s.waitFor(ctx, "readyok", s.cfg.HandshakeTimeout); err != nil {
		return err
	}
	s.drain()
	atomic.StoreInt32(&s.state, stateReady)
	s.log.Debug().Int("multipv", s.cfg.MultiPV).Int("hash_mb", s.cfg.HashMB).Msg("engine handshake complete")
	return nil
}

// stopGrace bounds how long a timed-out search gets to acknowledge the
// stop command with its bestmove sentinel.
const stopGrace = 2 * time.Second

// Search runs one depth-bounded search of the given position and returns
// every output line up to and including the bestmove sentinel. If the
// sentinel does not arrive before the search timeout, the engine is told
// to stop, its remaining output is consumed through the sentinel, and
// everything collected is returned together with ErrSearchTimeout. The
// line queue holds no leftovers of this search when Search returns.
func (s *Session) Search(ctx context.Context, fen string, depth int) ([]string, error) {
	if !atomic.CompareAndSwapInt32(&s.state, stateReady, stateSearching) {
		return nil, fmt.Errorf("%w: session not ready", ErrTerminated)
	}
	defer atomic.CompareAndSwapInt32(&s.state, stateSearching, stateReady)

	// Stale output from a prior search must never leak into this one.
	s.drain()

	if err := s.send("position fen " + fen); err != nil {
		return nil, err
	}
	if err := s.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return nil, err
	}

	timer := time.NewTimer(s.cfg.SearchTimeout)
	defer timer.Stop()

	var collected []string
	for {
		select {
		case <-ctx.Done():
			return collected, ctx.Err()
		case <-timer.C:
			collected = append(collected, s.stopSearch()...)
			return collected, ErrSearchTimeout
		case line, ok := <-s.lines:
			if !ok {
				s.terminate()
				return collected, fmt.Errorf("%w: output closed mid-search", ErrTerminated)
			}
			collected = append(collected, line)
			if strings.HasPrefix(line, "bestmove") {
				return collected, nil
			}
		}
	}
}

// stopSearch aborts an in-flight search and consumes its remaining
// output through the bestmove sentinel, so the next search starts with a
// clean queue. An engine that ignores the stop command within the grace
// period has desynced the session and it is terminated.
func (s *Session) stopSearch() []string {
	if err := s.sendRaw("stop"); err != nil {
		s.terminate()
		return nil
	}
	timer := time.NewTimer(stopGrace)
	defer timer.Stop()

	var tail []string
	for {
		select {
		case <-timer.C:
			s.log.Warn().Msg("engine ignored stop, terminating session")
			s.terminate()
			return tail
		case line, ok := <-s.lines:
			if !ok {
				s.terminate()
				return tail
			}
			tail = append(tail, line)
			if strings.HasPrefix(line, "bestmove") {
				return tail
			}
		}
	}
}

// Shutdown terminates the engine, gracefully if it cooperates. Idempotent.
func (s *Session) Shutdown() error {
	s.shutOnce.Do(func() {
		atomic.StoreInt32(&s.state, stateTerminated)
		if s.lines != nil {
			// Keep the listener draining so a full queue cannot block
			// it (and the engine's stdout) forever.
			go func() {
				for range s.lines {
				}
			}()
		}
		if s.cmd == nil || s.cmd.Process == nil {
			return
		}
		_ = s.sendRaw("quit")
		done := make(chan error, 1)
		go func() { done <- s.cmd.Wait() }()
		select {
		case err := <-done:
			s.shutErr = err
		case <-time.After(2 * time.Second):
			s.log.Warn().Msg("engine did not quit, killing")
			if err := s.cmd.Process.Kill(); err != nil {
				s.shutErr = err
			}
			<-done
		}
	})
	return s.shutErr
}

// send writes one command line. Any write failure terminates the session;
// retry policy belongs to the caller.
func (s *Session) send(cmd string) error {
	if atomic.LoadInt32(&s.state) == stateTerminated {
		return ErrTerminated
	}
	if err := s.sendRaw(cmd); err != nil {
		s.terminate()
		return fmt.Errorf("%w: write %q: %v", ErrTerminated, cmd, err)
	}
	return nil
}

func (s *Session) sendRaw(cmd string) error {
	if s.stdin == nil {
		return errors.New("no stdin pipe")
	}
	_, err := io.WriteString(s.stdin, cmd+"\n")
	return err
}

// waitFor discards output until a line with the given prefix arrives.
func (s *Session) waitFor(ctx context.Context, prefix string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("%w: waiting for %q", ErrHandshakeTimeout, prefix)
		case line, ok := <-s.lines:
			if !ok {
				s.terminate()
				return fmt.Errorf("%w: output closed waiting for %q", ErrTerminated, prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return nil
			}
		}
	}
}

// drain empties the line queue without blocking.
func (s *Session) drain() {
	for {
		select {
		case _, ok := <-s.lines:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) terminate() {
	atomic.StoreInt32(&s.state, stateTerminated)
}
