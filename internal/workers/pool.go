// Package workers provides the bounded worker pool the dispatcher fans
// batch jobs onto.
package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
)

// Task is a unit of work executed by one pool worker.
type Task func(ctx context.Context) error

// Pool runs tasks across a fixed number of workers. The parent context bounds
// the whole pool: when it expires, running and still-queued tasks all see a
// cancelled context and are expected to fail fast through their own cleanup.
type Pool struct {
	tasks      chan Task
	maxWorkers int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	errors     []error
	errorsMu   sync.Mutex
	logger     arbor.ILogger
}

// NewPool creates a worker pool bounded by the parent context.
func NewPool(ctx context.Context, maxWorkers int, logger arbor.ILogger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 5
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &Pool{
		tasks:      make(chan Task, maxWorkers*2),
		maxWorkers: maxWorkers,
		ctx:        poolCtx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	p.logger.Debug().
		Int("max_workers", p.maxWorkers).
		Msg("Starting worker pool")

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a task. Fails once the pool is shutting down.
func (p *Pool) Submit(task Task) error {
	select {
	case p.tasks <- task:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Wait closes the queue and blocks until every submitted task has finished.
func (p *Pool) Wait() {
	close(p.tasks)
	p.wg.Wait()
	p.cancel()
}

// Errors returns the errors collected from failed tasks.
func (p *Pool) Errors() []error {
	p.errorsMu.Lock()
	defer p.errorsMu.Unlock()
	return p.errors
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(task, id)

		case <-p.ctx.Done():
			// Queued tasks still execute, seeing the cancelled context,
			// so each one reaches its own cleanup instead of leaking
			// whatever it holds.
			for task := range p.tasks {
				p.run(task, id)
			}
			return
		}
	}
}

func (p *Pool) run(task Task, id int) {
	if err := task(p.ctx); err != nil {
		p.errorsMu.Lock()
		p.errors = append(p.errors, err)
		p.errorsMu.Unlock()

		p.logger.Warn().
			Err(err).
			Int("worker_id", id).
			Msg("Worker task failed")
	}
}
