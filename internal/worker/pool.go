package worker

import (
	"context"
	"sync"
	"time"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	idx int
	job Job
}

// Pool runs jobs on a fixed number of workers. Results come back in
// submission order; a job that never ran leaves a nil slot.
type Pool struct {
	workers    int
	jobTimeout time.Duration
	jobQueue   chan indexedJob
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu      sync.Mutex
	results []Result
	next    int
	closed  bool

	queueClosed bool

	// held for reading across queue sends, for writing while closing the queue
	sendMu sync.RWMutex
}

// NewPool creates a pool bound to parent. jobTimeout <= 0 means jobs only
// stop when parent is done.
func NewPool(parent context.Context, workers int, jobTimeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobTimeout: jobTimeout,
		jobQueue:   make(chan indexedJob, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := p.run(ij.job)
			p.mu.Lock()
			p.results[ij.idx] = result
			p.mu.Unlock()
		}
	}
}

func (p *Pool) run(job Job) Result {
	if p.jobTimeout <= 0 {
		return job.Execute(p.ctx)
	}
	ctx, cancel := context.WithTimeout(p.ctx, p.jobTimeout)
	defer cancel()
	return job.Execute(ctx)
}

// Submit queues a job. It returns false when the pool is already shut down
// or waited on. It is safe to call concurrently with Wait.
func (p *Pool) Submit(job Job) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	idx := p.next
	p.next++
	p.results = append(p.results, nil)
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{idx: idx, job: job}:
		return true
	}
}

// Wait stops accepting jobs, waits for queued ones and returns all results
// in submission order
func (p *Pool) Wait() []Result {
	p.close()
	p.wg.Wait()
	p.cancelFunc()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, len(p.results))
	copy(out, p.results)
	return out
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) close() {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if !p.queueClosed {
		p.queueClosed = true
		close(p.jobQueue)
	}
}

// Map runs fn over items on a bounded pool and returns one value per item,
// in input order. Items skipped because ctx ended still get fn called with
// the finished context so each one resolves to its own fallback.
func Map[T, R any](ctx context.Context, workers int, jobTimeout time.Duration, items []T, fn func(ctx context.Context, item T) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	pool := NewPool(ctx, workers, jobTimeout)
	pool.Start()
	for _, item := range items {
		pool.Submit(&funcJob[T, R]{item: item, fn: fn})
	}
	results := pool.Wait()

	for i, item := range items {
		if i < len(results) && results[i] != nil {
			out[i] = results[i].(*funcResult[R]).value
			continue
		}
		out[i] = fn(pool.ctx, item)
	}
	return out
}

type funcJob[T, R any] struct {
	item T
	fn   func(ctx context.Context, item T) R
}

func (j *funcJob[T, R]) Execute(ctx context.Context) Result {
	return &funcResult[R]{value: j.fn(ctx, j.item)}
}

type funcResult[R any] struct {
	value R
}

func (r *funcResult[R]) GetError() error { return nil }
