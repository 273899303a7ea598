// Package history persists a record of every pipeline run.
package history

import (
	"context"
	"time"
)

// Outcome values stored for a run.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Run is one pipeline invocation as seen by the runner, cache hits included.
type Run struct {
	ID          string
	Tag         string
	Prefix      string
	Fingerprint string
	Cached      bool
	Outcome     string
	Error       string
	Assets      []string
	Duration    time.Duration
	StartedAt   time.Time
}

// Store defines the interface for persisting and retrieving runs.
type Store interface {
	// Record appends a run. An empty ID is filled with a new UUID.
	Record(ctx context.Context, run Run) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// Close closes the store and releases resources.
	Close() error
}
