package ingest

import (
	"context"
	"sync"
	"sync/atomic"
)

// Job is one unit of pool work. Its error is not collected: jobs report
// results and failures through their own channels.
type Job func(ctx context.Context) error

// WorkerPool runs jobs on a fixed set of goroutines. The Importer segments
// one doculect per job.
type WorkerPool struct {
	queue   chan Job
	stop    chan struct{}
	size    int
	running sync.WaitGroup

	// mu guards closed and the registration of blocked submitters, so
	// that queue is closed only once none can still send on it.
	mu         sync.Mutex
	closed     bool
	submitting sync.WaitGroup

	processed atomic.Int64
}

// NewWorkerPool returns a pool of workers goroutines with room for queue
// pending jobs. Non-positive sizes fall back to one worker and twice the
// worker count.
func NewWorkerPool(workers, queue int) *WorkerPool {
	workers = max(workers, 1)
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{
		queue: make(chan Job, queue),
		stop:  make(chan struct{}),
		size:  workers,
	}
}

// Start launches the workers. They run until ctx is done or the pool is
// closed and drained.
func (p *WorkerPool) Start(ctx context.Context) {
	p.running.Add(p.size)
	for range p.size {
		go p.work(ctx)
	}
}

func (p *WorkerPool) work(ctx context.Context) {
	defer p.running.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			_ = job(ctx)
			p.processed.Add(1)
		}
	}
}

// Processed returns how many jobs have finished.
func (p *WorkerPool) Processed() int64 { return p.processed.Load() }

// Submit is SubmitCtx without a deadline.
func (p *WorkerPool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx queues job, waiting while the queue is full. It fails with
// ErrPoolClosed once Close has been called and with ctx.Err() when ctx
// ends first.
func (p *WorkerPool) SubmitCtx(ctx context.Context, job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.submitting.Add(1)
	p.mu.Unlock()
	defer p.submitting.Done()

	select {
	case p.queue <- job:
		return nil
	case <-p.stop:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further jobs, lets queued ones finish and waits for the
// workers. Calling it again is a no-op.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.stop)
	p.mu.Unlock()

	p.submitting.Wait()
	close(p.queue)
	p.running.Wait()
}

// ErrPoolClosed is returned for jobs submitted to a closed pool.
var ErrPoolClosed = &PoolError{"worker pool closed"}

// PoolError is the error type of pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
