package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/chessreview/review/internal/classify"
)

type request struct {
	fen      string
	opts     AnalyzeOptions
	resultCh chan analyzeResult
}

type analyzeResult struct {
	analysis *classify.EngineAnalysis
	err      error
}

// WorkerStatus is one worker's entry in Pool.Status.
type WorkerStatus struct {
	ID    int
	Ready bool
	Busy  bool
}

// Status is the pool's observability snapshot, per spec §4.2.
type Status struct {
	Initialized    bool
	WorkerCount    int
	ActiveAnalyses int
	QueueLength    int
	Workers        []WorkerStatus
}

// Pool is a fixed-size set of engine workers with an unbounded FIFO
// request queue. Analyze and AnalyzeBatch are safe to call concurrently
// from multiple review drivers.
type Pool struct {
	mu      sync.Mutex
	workers []*Worker
	idle    []*Worker
	queue   []*request
	active  int
	closed  bool

	cfg    Config
	logger *zap.Logger
}

// NewPool creates n workers and returns a ready pool.
func NewPool(n int, cfg Config, logger *zap.Logger) (*Pool, error) {
	if n <= 0 {
		return nil, newError(InvalidInput, "pool size must be positive", nil)
	}

	p := &Pool{cfg: cfg, logger: logger}
	for i := 0; i < n; i++ {
		w, err := NewWorker(cfg, logger)
		if err != nil {
			p.Dispose()
			return nil, err
		}
		p.workers = append(p.workers, w)
		p.idle = append(p.idle, w)
	}

	logger.Info("engine pool ready", zap.Int("size", n))
	return p, nil
}

// Analyze dispatches a single analysis request, blocking until a worker
// is available and the analysis completes (or fails).
func (p *Pool) Analyze(fen string, opts AnalyzeOptions) (*classify.EngineAnalysis, error) {
	req := &request{fen: fen, opts: opts, resultCh: make(chan analyzeResult, 1)}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, newError(PoolDisposed, "pool is disposed", nil)
	}

	if len(p.idle) > 0 {
		w := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		p.active++
		p.mu.Unlock()
		go p.workerLoop(w, req)
	} else {
		p.queue = append(p.queue, req)
		p.mu.Unlock()
	}

	res := <-req.resultCh
	return res.analysis, res.err
}

// BatchItem is one element of an AnalyzeBatch request.
type BatchItem struct {
	FEN  string
	Opts AnalyzeOptions
}

// AnalyzeBatch issues every request concurrently, preserving input-index
// order in the returned slice. It does NOT guarantee completion order.
func (p *Pool) AnalyzeBatch(items []BatchItem, onProgress func(done, total int)) ([]*classify.EngineAnalysis, []error) {
	results := make([]*classify.EngineAnalysis, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	var doneCount int
	var doneMu sync.Mutex

	wg.Add(len(items))
	for i, item := range items {
		go func(i int, item BatchItem) {
			defer wg.Done()
			results[i], errs[i] = p.Analyze(item.FEN, item.Opts)
			if onProgress != nil {
				doneMu.Lock()
				doneCount++
				d := doneCount
				doneMu.Unlock()
				onProgress(d, len(items))
			}
		}(i, item)
	}
	wg.Wait()

	return results, errs
}

// workerLoop drains the queue through w until it is empty, then parks w
// back in the idle set (or replaces it, if it failed).
func (p *Pool) workerLoop(w *Worker, first *request) {
	req := first
	for {
		analysis, err := w.Analyze(req.fen, req.opts)
		req.resultCh <- analyzeResult{analysis: analysis, err: err}

		if w.State() != Failed {
			_ = w.Reset()
		}

		p.mu.Lock()
		if len(p.queue) > 0 {
			req = p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()
			continue
		}

		failed := w.State() == Failed
		p.active--
		if !failed {
			p.idle = append(p.idle, w)
		}
		p.mu.Unlock()

		if failed {
			p.replace(w)
		}
		return
	}
}

// replace swaps a failed worker for a freshly started one.
func (p *Pool) replace(failed *Worker) {
	_ = failed.Close()

	w, err := NewWorker(p.cfg, p.logger)
	if err != nil {
		p.logger.Error("failed to replace crashed engine worker", zap.Error(err))
		p.mu.Lock()
		for i, existing := range p.workers {
			if existing == failed {
				p.workers = append(p.workers[:i], p.workers[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	for i, existing := range p.workers {
		if existing == failed {
			p.workers[i] = w
			break
		}
	}
	if !p.closed {
		p.idle = append(p.idle, w)
	}
	p.mu.Unlock()
	p.logger.Info("replaced failed engine worker")
}

// Status reports current pool occupancy.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	idleSet := make(map[*Worker]bool, len(p.idle))
	for _, w := range p.idle {
		idleSet[w] = true
	}

	statuses := make([]WorkerStatus, 0, len(p.workers))
	for i, w := range p.workers {
		statuses = append(statuses, WorkerStatus{
			ID:    i,
			Ready: idleSet[w],
			Busy:  !idleSet[w],
		})
	}

	return Status{
		Initialized:    !p.closed,
		WorkerCount:    len(p.workers),
		ActiveAnalyses: p.active,
		QueueLength:    len(p.queue),
		Workers:        statuses,
	}
}

// Size returns the configured worker count.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Dispose rejects every queued request with PoolDisposed, asks every
// worker to quit, waits briefly, then force-closes stragglers.
func (p *Pool) Dispose() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	queued := p.queue
	p.queue = nil
	workers := p.workers
	p.mu.Unlock()

	for _, req := range queued {
		req.resultCh <- analyzeResult{err: newError(PoolDisposed, "pool disposed while queued", nil)}
	}

	var wg sync.WaitGroup
	wg.Add(len(workers))
	for _, w := range workers {
		go func(w *Worker) {
			defer wg.Done()
			_ = w.Close()
		}(w)
	}
	wg.Wait()

	p.logger.Info("engine pool disposed")
	return nil
}
