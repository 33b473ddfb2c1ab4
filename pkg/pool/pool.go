// Package pool provides a fixed set of workers consuming a bounded task queue.
package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrStopped is returned by Submit once Stop has been called
var ErrStopped = errors.New("worker pool stopped")

// Task is a unit of work. workerID identifies the worker running it, starting at 1.
type Task func(workerID int)

// Pool runs tasks on a fixed number of goroutines. Submitted tasks wait in a
// queue of bounded size; when the queue is full Submit blocks.
type Pool struct {
	tasks   chan Task
	workers int
	logger  zerolog.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	active   atomic.Int64
}

// New starts workers goroutines sharing a queue of queueSize pending tasks
func New(workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		tasks:   make(chan Task, queueSize),
		workers: workers,
		logger:  logger,
	}

	p.wg.Add(workers)
	for id := 1; id <= workers; id++ {
		go p.run(id)
	}

	p.logger.Debug().Int("workers", workers).Int("queue_size", queueSize).Msg("worker pool started")
	return p
}

// Submit queues task, blocking while the queue is full
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects further submissions and waits for queued and running tasks to finish.
// It is safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// Workers returns the number of workers
func (p *Pool) Workers() int {
	return p.workers
}

// Active returns the number of tasks currently running
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Pending returns the number of tasks waiting for a worker
func (p *Pool) Pending() int {
	return len(p.tasks)
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		p.execute(id, task)
	}
}

// execute runs one task; a panicking task is logged and does not take the worker down
func (p *Pool) execute(id int, task Task) {
	p.active.Add(1)
	defer p.active.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Int("worker", id).Interface("panic", r).Msg("task panicked")
		}
	}()

	task(id)
}
