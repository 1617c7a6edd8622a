package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWriterCapacity = 256
	writerMaxAttempts     = 3
	writerRetryStep       = 300 * time.Millisecond
)

type writeCmd struct {
	name string
	fn   func(context.Context) error
}

// WriterQueue runs DB writes one at a time in submission order.
type WriterQueue struct {
	logger    *slog.Logger
	queue     chan writeCmd
	retryStep time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

func NewWriterQueue(logger *slog.Logger, capacity int) *WriterQueue {
	if capacity <= 0 {
		capacity = defaultWriterCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WriterQueue{
		logger:    logger,
		queue:     make(chan writeCmd, capacity),
		retryStep: writerRetryStep,
		done:      make(chan struct{}),
	}
}

// Enqueue blocks while the queue is full and drops writes after Close.
func (w *WriterQueue) Enqueue(name string, fn func(context.Context) error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("db write dropped: queue closed", "cmd", name)
		return
	}
	w.queue <- writeCmd{name: name, fn: fn}
}

func (w *WriterQueue) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case cmd, ok := <-w.queue:
				if !ok {
					return
				}
				w.runWithRetry(ctx, cmd)
			}
		}
	}()
}

// Close stops accepting writes and waits until queued ones are processed.
func (w *WriterQueue) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	started := w.started
	w.mu.Unlock()

	if started {
		<-w.done
	}
}

func (w *WriterQueue) runWithRetry(ctx context.Context, cmd writeCmd) {
	for attempt := 1; attempt <= writerMaxAttempts; attempt++ {
		if err := cmd.fn(ctx); err != nil {
			w.logger.Error("db write failed", "cmd", cmd.name, "attempt", attempt, "error", err)
			if attempt == writerMaxAttempts {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * w.retryStep):
			}
			continue
		}
		return
	}
}
