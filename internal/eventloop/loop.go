package eventloop

import (
	"context"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Scheduler runs tasks one at a time on a single logical thread.
type Scheduler interface {
	// Post queues task to run on the next tick.
	Post(task func())
	// After queues task to run once d has elapsed.
	After(d time.Duration, task func())
	// Now returns the scheduler's monotonic clock reading.
	Now() time.Time
}

const defaultQueueSize = 256

// Loop is a Scheduler backed by one goroutine draining a task channel.
// Timers fire on their own goroutines and hand the task back to the loop, so
// every task observes the same single-threaded world.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

var _ Scheduler = (*Loop)(nil)

// New creates a loop. Tasks posted before Run are buffered.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		tasks:  make(chan func(), defaultQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post queues task. Tasks posted after the loop stopped are dropped.
func (l *Loop) Post(task func()) {
	if task == nil {
		return
	}
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.tasks <- task:
	case <-l.done:
	}
}

// After posts task to the loop once d has elapsed.
func (l *Loop) After(d time.Duration, task func()) {
	if task == nil {
		return
	}
	time.AfterFunc(d, func() { l.Post(task) })
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time { return time.Now() }

// Run drains tasks until ctx is cancelled. A panicking task is logged and
// the loop keeps going.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	l.logger.Debug("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped")
			return ctx.Err()
		case task := <-l.tasks:
			l.run(task)
		}
	}
}

func (l *Loop) run(task func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", err, "stack", string(debug.Stack()))
		}
	}()
	task()
}
