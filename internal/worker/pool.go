package worker

import (
	"context"
	"log/slog"
	"sync"
)

// DeliverFunc delivers a single bump notification
type DeliverFunc func(ctx context.Context, job Job) error

// Pool manages a pool of worker goroutines delivering bump notifications off
// the request/tick path.
type Pool struct {
	workers   int
	jobs      chan Job
	deliverFn DeliverFunc
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPool creates a new notification worker pool
func NewPool(workers, queueSize int, deliverFn DeliverFunc) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:   workers,
		jobs:      make(chan Job, queueSize),
		deliverFn: deliverFn,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	slog.Info("Starting notification worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop stops the worker pool gracefully, draining queued jobs
func (p *Pool) Stop() {
	slog.Info("Stopping notification worker pool")

	close(p.jobs)
	p.wg.Wait()
	p.cancel()

	slog.Info("Notification worker pool stopped")
}

// TrySubmit enqueues a job without blocking. Returns false when the queue is
// full; bumps are never held up by notification pressure.
func (p *Pool) TrySubmit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// QueueLength returns the current number of queued jobs
func (p *Pool) QueueLength() int {
	return len(p.jobs)
}

// worker is the worker goroutine that delivers notifications
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	slog.Debug("Notification worker started", "worker_id", id)

	for job := range p.jobs {
		if err := p.deliverFn(p.ctx, job); err != nil {
			slog.Error("Bump notification delivery failed",
				"worker_id", id,
				"ad_id", job.Event.AdID.Hex(),
				"correlation_id", job.Event.CorrelationID,
				"error", err,
			)
		}
	}

	slog.Debug("Notification worker stopped", "worker_id", id)
}
