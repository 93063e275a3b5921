package worker

import "context"

// Task represents a unit of work to be processed by the worker pool
type Task struct {
	// ID uniquely identifies the task
	ID int

	// Execute is the function that performs the actual work
	// It receives a context for cancellation support
	Execute func(context.Context) (Result, error)
}

// Result represents the output of a processed task
type Result struct {
	// ID matches the task ID that produced this result
	ID int

	// Data holds the actual result data
	Data interface{}

	// order is used internally to maintain submission order
	order int
}

// Config holds the configuration for the worker pool
type Config struct {
	// Workers is the number of concurrent workers
	Workers int

	// RateLimit is the maximum number of file operations per second (0 for unlimited)
	RateLimit int
}

// Pool defines the interface for a worker pool
type Pool interface {
	// Start initializes and starts the worker pool
	Start(context.Context) error

	// Submit adds a task to the pool for processing
	Submit(Task) error

	// Wait blocks until all submitted tasks are processed
	// and returns the results or an error
	Wait() ([]Result, error)

	// Stop gracefully shuts down the pool
	Stop() error
}
