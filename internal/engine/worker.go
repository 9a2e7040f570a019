// Package engine owns the UCI chess engine subprocess (C1) and the fixed
// pool of such subprocesses (C2) that the review driver draws on.
package engine

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chessreview/review/internal/classify"
)

// State is a worker's lifecycle stage.
type State int

const (
	Initializing State = iota
	Ready
	Busy
	Failed
	Disposed
)

// Config configures one engine subprocess.
type Config struct {
	BinaryPath string
	Threads    int
	Hash       int
	MultiPV    int
}

// AnalyzeOptions bounds a single analysis call. Exactly one of Depth or
// MoveTimeMs should be set; if both are zero, Depth defaults to 18 per
// the protocol obligations in the spec.
type AnalyzeOptions struct {
	Depth      int
	MoveTimeMs int
	Timeout    time.Duration
}

// Worker owns one UCI engine subprocess. It is single-client: only one
// analysis may be in flight at a time, enforced by mu.
type Worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	readErr chan error

	mu      sync.Mutex
	state   State
	version string
	config  Config
	logger  *zap.Logger
}

// NewWorker starts the subprocess and performs the UCI handshake.
func NewWorker(cfg Config, logger *zap.Logger) (*Worker, error) {
	cmd := exec.Command(cfg.BinaryPath)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, newError(WorkerUnavailable, "create stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, newError(WorkerUnavailable, "create stdout pipe", err)
	}

	w := &Worker{
		cmd:     cmd,
		stdin:   stdin,
		lines:   make(chan string, 256),
		readErr: make(chan error, 1),
		state:   Initializing,
		config:  cfg,
		logger:  logger,
	}

	if err := cmd.Start(); err != nil {
		return nil, newError(WorkerUnavailable, "start engine subprocess", err)
	}

	go w.pump(bufio.NewScanner(stdout))

	if err := w.initialize(); err != nil {
		w.kill()
		return nil, err
	}

	w.state = Ready
	return w, nil
}

// pump scans the subprocess's stdout and forwards lines to w.lines until
// the stream closes or errors, at which point it reports on w.readErr.
func (w *Worker) pump(scanner *bufio.Scanner) {
	for scanner.Scan() {
		w.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		w.readErr <- err
	} else {
		w.readErr <- io.EOF
	}
}

func (w *Worker) initialize() error {
	if err := w.send("uci"); err != nil {
		return err
	}
	if err := w.waitFor("uciok", 10*time.Second, func(line string) {
		if strings.HasPrefix(line, "id name ") {
			w.version = strings.TrimPrefix(line, "id name ")
		}
	}); err != nil {
		return newError(InvalidOutput, "uci handshake", err)
	}

	if w.config.Threads > 0 {
		if err := w.send(fmt.Sprintf("setoption name Threads value %d", w.config.Threads)); err != nil {
			return err
		}
	}
	if w.config.Hash > 0 {
		if err := w.send(fmt.Sprintf("setoption name Hash value %d", w.config.Hash)); err != nil {
			return err
		}
	}
	multiPV := w.config.MultiPV
	if multiPV < 3 {
		multiPV = 3
	}
	if err := w.send(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
		return err
	}

	if err := w.send("isready"); err != nil {
		return err
	}
	if err := w.waitFor("readyok", 10*time.Second, nil); err != nil {
		return newError(InvalidOutput, "isready handshake", err)
	}

	w.logger.Info("engine ready", zap.String("version", w.version))
	return nil
}

func (w *Worker) send(cmd string) error {
	if _, err := w.stdin.Write([]byte(cmd + "\n")); err != nil {
		return newError(WorkerUnavailable, "write command "+cmd, err)
	}
	return nil
}

// waitFor blocks until a line equal to marker arrives, an optional
// observer has seen every intervening line, or timeout elapses.
func (w *Worker) waitFor(marker string, timeout time.Duration, observe func(string)) error {
	deadline := time.After(timeout)
	for {
		select {
		case line := <-w.lines:
			if observe != nil {
				observe(line)
			}
			if line == marker {
				return nil
			}
		case err := <-w.readErr:
			return fmt.Errorf("engine process ended: %w", err)
		case <-deadline:
			return fmt.Errorf("timed out waiting for %q", marker)
		}
	}
}

// Analyze runs one search and returns the normalized (side-to-move
// perspective) analysis. The caller (the pool/driver) is responsible for
// flipping perspective to White.
func (w *Worker) Analyze(fen string, opts AnalyzeOptions) (*classify.EngineAnalysis, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Ready {
		return nil, newError(WorkerUnavailable, "worker not ready", nil)
	}
	w.state = Busy
	defer func() {
		if w.state == Busy {
			w.state = Ready
		}
	}()

	if err := w.send("position fen " + fen); err != nil {
		w.state = Failed
		return nil, err
	}

	depth := opts.Depth
	if depth == 0 && opts.MoveTimeMs == 0 {
		depth = 18
	}
	if opts.MoveTimeMs > 0 {
		if err := w.send(fmt.Sprintf("go movetime %d", opts.MoveTimeMs)); err != nil {
			w.state = Failed
			return nil, err
		}
	} else {
		if err := w.send(fmt.Sprintf("go depth %d", depth)); err != nil {
			w.state = Failed
			return nil, err
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	multiPV := w.config.MultiPV
	if multiPV < 3 {
		multiPV = 3
	}

	result, err := w.readAnalysis(multiPV, timeout)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (w *Worker) readAnalysis(multiPV int, timeout time.Duration) (*classify.EngineAnalysis, error) {
	top := make(map[int]classify.TopMove)
	maxDepth := 0
	deadline := time.After(timeout)

	for {
		select {
		case line := <-w.lines:
			if strings.HasPrefix(line, "info") && strings.Contains(line, "score") {
				if idx, tm, depth, ok := parseInfoLine(line); ok {
					top[idx] = tm
					if depth > maxDepth {
						maxDepth = depth
					}
				}
				continue
			}
			if strings.HasPrefix(line, "bestmove") {
				return w.finishAnalysis(line, top, multiPV, maxDepth)
			}
		case err := <-w.readErr:
			w.state = Failed
			return nil, newError(WorkerUnavailable, "engine process ended mid-analysis", err)
		case <-deadline:
			_ = w.send("stop")
			w.drainUntilBestmove(2 * time.Second)
			w.state = Ready
			return nil, newError(AnalysisTimeout, "analysis exceeded timeout", nil)
		}
	}
}

// drainUntilBestmove consumes lines after "stop" until bestmove arrives
// or a short grace period elapses, so the next analyze call does not
// observe stale output from this one.
func (w *Worker) drainUntilBestmove(grace time.Duration) {
	deadline := time.After(grace)
	for {
		select {
		case line := <-w.lines:
			if strings.HasPrefix(line, "bestmove") {
				return
			}
		case <-w.readErr:
			return
		case <-deadline:
			return
		}
	}
}

func (w *Worker) finishAnalysis(bestmoveLine string, top map[int]classify.TopMove, multiPV, depth int) (*classify.EngineAnalysis, error) {
	parts := strings.Fields(bestmoveLine)
	var bestMove string
	if len(parts) >= 2 {
		bestMove = parts[1]
	}

	if len(top) == 0 {
		w.state = Failed
		return nil, newError(InvalidOutput, "bestmove without any scored info line", nil)
	}

	ordered := make([]classify.TopMove, 0, multiPV)
	for i := 1; i <= multiPV; i++ {
		if tm, ok := top[i]; ok {
			ordered = append(ordered, tm)
		}
	}
	if len(ordered) == 0 {
		w.state = Failed
		return nil, newError(InvalidOutput, "no multipv entries parsed", nil)
	}

	if bestMove == "" || bestMove == "(none)" {
		bestMove = ordered[0].UCI
	}

	return &classify.EngineAnalysis{
		Evaluation: ordered[0].CP,
		BestMove:   bestMove,
		TopMoves:   ordered,
		Depth:      depth,
	}, nil
}

// parseInfoLine parses one "info ... multipv K ... depth D ... score
// (cp|mate) V ... pv M1 ..." line, returning the multipv index (defaults
// to 1 when absent), the resulting TopMove, and the reported depth.
func parseInfoLine(line string) (idx int, tm classify.TopMove, depth int, ok bool) {
	parts := strings.Fields(line)
	idx = 1

	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "multipv":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					idx = v
				}
			}
		case "depth":
			if i+1 < len(parts) {
				depth, _ = strconv.Atoi(parts[i+1])
			}
		case "score":
			if i+2 < len(parts) {
				switch parts[i+1] {
				case "cp":
					if v, err := strconv.Atoi(parts[i+2]); err == nil {
						tm.CP = classify.Score(v)
						ok = true
					}
				case "mate":
					if v, err := strconv.Atoi(parts[i+2]); err == nil {
						tm.CP = classify.EncodeMateScore(v)
						ok = true
					}
				}
			}
		case "pv":
			if i+1 < len(parts) {
				tm.UCI = parts[i+1]
			}
			return idx, tm, depth, ok && tm.UCI != ""
		}
	}
	return idx, tm, depth, false
}

// Stop requests the engine abort its current search.
func (w *Worker) Stop() error {
	return w.send("stop")
}

// Reset prepares the worker for a new game (called by the pool after
// every analysis).
func (w *Worker) Reset() error {
	if err := w.send("ucinewgame"); err != nil {
		return err
	}
	if err := w.send("isready"); err != nil {
		return err
	}
	return w.waitFor("readyok", 5*time.Second, nil)
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Version returns the engine's reported id name.
func (w *Worker) Version() string { return w.version }

// Close sends quit and waits briefly for a graceful exit before killing.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Disposed {
		return nil
	}
	w.state = Disposed

	_ = w.send("quit")
	w.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- w.cmd.Wait() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if w.cmd.Process != nil {
			_ = w.cmd.Process.Kill()
		}
	}
	return nil
}

func (w *Worker) kill() {
	if w.cmd != nil && w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}
