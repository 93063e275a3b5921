/*
Package worker provides a bounded worker pool for concurrent task
processing with rate limiting and context cancellation support.

Basic usage:

	pool, err := worker.NewPool(worker.Config{
		Workers:   4,
		RateLimit: 10, // 10 ops/sec
	})

	// Start the pool with context
	ctx := context.Background()
	pool.Start(ctx)

	// Submit tasks
	pool.Submit(worker.Task{
		ID: 1,
		Execute: func(ctx context.Context) (worker.Result, error) {
			// Task implementation
			return worker.Result{ID: 1, Data: "processed"}, nil
		},
	})

	// Wait for results
	results, err := pool.Wait()
*/
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pool implements the Pool interface
type pool struct {
	config  Config
	tasks   chan taskWithOrder
	errors  chan error
	limiter *rate.Limiter
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	started bool
	closed  bool

	// Completed results accumulate in a slice rather than a channel so a
	// caller that submits every task before draining cannot wedge the
	// workers against a full buffer.
	resultsMu sync.Mutex
	results   []Result

	taskOrder int
	orderMu   sync.Mutex
}

type taskWithOrder struct {
	Task
	order int
}

// NewPool creates a new worker pool with the given configuration
func NewPool(config Config) (Pool, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &pool{
		config:  config,
		tasks:   make(chan taskWithOrder, config.Workers*2),
		errors:  make(chan error, config.Workers),
		limiter: limiter,
	}, nil
}

// validateConfig checks if the pool configuration is valid
func validateConfig(config Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	return nil
}

// Start initializes and starts the worker pool
func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("pool already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return nil
}

// Submit adds a task to the pool for processing
func (p *pool) Submit(task Task) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return fmt.Errorf("pool not started")
	}
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("pool no longer accepts tasks")
	}
	p.mu.Unlock()

	p.orderMu.Lock()
	order := p.taskOrder
	p.taskOrder++
	p.orderMu.Unlock()

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("pool is shutting down: %w", p.ctx.Err())
	case p.tasks <- taskWithOrder{task, order}:
		return nil
	}
}

// Wait blocks until all submitted tasks are processed and returns the
// results in submission order.
func (p *pool) Wait() ([]Result, error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil, fmt.Errorf("pool not started")
	}
	if !p.closed {
		close(p.tasks)
		p.closed = true
	}
	p.mu.Unlock()

	p.wg.Wait()

	p.resultsMu.Lock()
	results := make([]Result, len(p.results))
	copy(results, p.results)
	p.resultsMu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].order < results[j].order
	})

	select {
	case err := <-p.errors:
		return nil, err
	default:
		return results, nil
	}
}

// Stop gracefully shuts down the pool. Safe to call after Wait.
func (p *pool) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	if !p.closed {
		close(p.tasks)
		p.closed = true
	}
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(500 * time.Millisecond):
		return fmt.Errorf("shutdown timed out")
	}
}

// worker processes tasks until the task channel is drained or the context
// is cancelled.
func (p *pool) worker() {
	defer p.wg.Done()

	for tw := range p.tasks {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(p.ctx); err != nil {
				select {
				case p.errors <- fmt.Errorf("rate limiter error: %w", err):
				default:
				}
				return
			}
		}

		result, err := tw.Execute(p.ctx)
		result.order = tw.order

		if err != nil {
			select {
			case p.errors <- fmt.Errorf("task %d failed: %w", tw.ID, err):
			default:
				// Error channel is full, continue processing
			}
			continue
		}

		p.resultsMu.Lock()
		p.results = append(p.results, result)
		p.resultsMu.Unlock()
	}
}
