package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScrapeTask asks the pool to run one scrape job.
type ScrapeTask struct {
	JobID uuid.UUID
}

// DiscoveryTask asks the pool to run one discovery job.
type DiscoveryTask struct {
	DiscoveryID uuid.UUID
}

// Queue accepts work for asynchronous execution.
type Queue interface {
	EnqueueScrape(ctx context.Context, task ScrapeTask) error
	EnqueueDiscovery(ctx context.Context, task DiscoveryTask) error
}

// Handlers are the executors the pool dispatches to. Both receive a context
// bounded by the per-job timeout; a handler that returns after its context
// expired is responsible for having marked its job failed.
type Handlers struct {
	Scrape    func(ctx context.Context, jobID uuid.UUID) error
	Discovery func(ctx context.Context, discoveryID uuid.UUID) error
}

// ErrQueueClosed is returned by enqueue calls after Stop.
var ErrQueueClosed = errors.New("queue: closed")

type taskKind int

const (
	kindScrape taskKind = iota
	kindDiscovery
)

type task struct {
	kind        taskKind
	jobID       uuid.UUID
	discoveryID uuid.UUID
}

// Pool is the in-process Queue implementation: a fixed number of workers
// draining one channel, with a per-job timeout.
type Pool struct {
	handlers Handlers
	tasks    chan task
	workers  int
	timeout  time.Duration
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool builds a pool with the given concurrency and per-job timeout.
// Values at or below zero fall back to 10 workers and 300 seconds.
func NewPool(handlers Handlers, workers int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 10
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		handlers: handlers,
		tasks:    make(chan task, workers*16),
		workers:  workers,
		timeout:  timeout,
		log:      slog.With("component", "queue"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	p.log.Info("worker pool starting", "workers", p.workers, "job_timeout", p.timeout)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop drains nothing: in-flight jobs get their context cancelled and
// queued tasks are dropped. Callers that need a clean drain should stop
// enqueuing first and wait for job counts to settle.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// EnqueueScrape implements Queue.
func (p *Pool) EnqueueScrape(ctx context.Context, t ScrapeTask) error {
	return p.enqueue(ctx, task{kind: kindScrape, jobID: t.JobID})
}

// EnqueueDiscovery implements Queue.
func (p *Pool) EnqueueDiscovery(ctx context.Context, t DiscoveryTask) error {
	return p.enqueue(ctx, task{kind: kindDiscovery, discoveryID: t.DiscoveryID})
}

func (p *Pool) enqueue(ctx context.Context, t task) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrQueueClosed
	}

	select {
	case p.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrQueueClosed
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case t := <-p.tasks:
			p.run(id, t)
		}
	}
}

func (p *Pool) run(workerID int, t task) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	start := time.Now()
	var err error
	switch t.kind {
	case kindScrape:
		log := p.log.With("worker", workerID, "job_id", t.jobID)
		log.Info("scrape job started")
		err = p.handlers.Scrape(ctx, t.jobID)
		p.finish(log, "scrape", start, err)
	case kindDiscovery:
		log := p.log.With("worker", workerID, "discovery_id", t.discoveryID)
		log.Info("discovery job started")
		err = p.handlers.Discovery(ctx, t.discoveryID)
		p.finish(log, "discovery", start, err)
	}
}

func (p *Pool) finish(log *slog.Logger, kind string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		log.Error(kind+" job failed", "duration", elapsed, "error", err)
		return
	}
	log.Info(kind+" job finished", "duration", elapsed)
}
