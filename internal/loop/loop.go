package loop

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
)

type Task func()

// Loop is a FIFO queue of tasks served by a fixed number of workers. Posting never blocks,
// the queue grows as needed. With a single worker, tasks are executed strictly in the order
// they were posted.
type Loop struct {
	workers int
	logger  hclog.Logger

	mu      sync.Mutex
	queue   []Task
	wake    chan struct{}
	stopped bool
	done    chan struct{}
}

func New(workers int, logger hclog.Logger) *Loop {
	if workers < 1 {
		workers = 1
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Loop{
		workers: workers,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Post enqueues the task. It returns false if the loop is already stopped, in which case
// the task is never executed.
func (l *Loop) Post(task Task) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}

	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.notify()

	return true
}

// Len returns the number of tasks waiting for execution.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.queue)
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run serves the queue until ctx is done. Posting is refused from that moment on, while the
// tasks already queued are still executed before Run returns. Run always returns nil, the
// signature is kept for errgroup.
func (l *Loop) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for range l.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.work(ctx)
		}()
	}

	<-ctx.Done()

	l.mu.Lock()
	l.stopped = true
	pending := len(l.queue)
	l.mu.Unlock()
	close(l.done)

	wg.Wait()

	// workers may have quit before the loop was marked stopped
	for task, ok := l.next(); ok; task, ok = l.next() {
		l.execute(task)
	}

	if pending > 0 {
		l.logger.Debug("drained pending tasks", "count", pending)
	}

	return nil
}

func (l *Loop) work(ctx context.Context) {
	for {
		task, ok := l.next()
		if ok {
			l.execute(task)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}

	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]

	if len(l.queue) > 0 {
		// more work is left, so make sure some other worker picks it up
		l.notify()
	}

	return task, true
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", "panic", r)
		}
	}()

	task()
}
