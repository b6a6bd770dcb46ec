package worker

import (
	"context"
	"sync"

	"pppoed/internal/log"
)

// Pool runs background jobs on a fixed set of workers. Sync requests
// and notification sweeps go through here so HTTP handlers never block
// on simulated router round trips.
type Pool struct {
	maxWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// Job represents a unit of work
type Job struct {
	ID      string
	Handler func(context.Context) error
	Result  chan error
}

// NewPool creates a new worker pool
func NewPool(maxWorkers int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		maxWorkers: maxWorkers,
		jobs:       make(chan Job, 100),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Info("worker pool started", "workers", p.maxWorkers)
}

// Stop stops the worker pool and waits for in-flight jobs. Queued jobs
// that have not started yet are dropped. Submitting after Stop returns
// the cancellation error instead of panicking.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Submit submits a job to the pool
func (p *Pool) Submit(job Job) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}

			log.Debug("worker executing job", "worker_id", id, "job_id", job.ID)

			err := job.Handler(p.ctx)
			if job.Result != nil {
				job.Result <- err
			}
		}
	}
}
