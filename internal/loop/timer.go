package loop

import (
	"errors"
	"sync"
	"time"
)

var ErrTimerStopped = errors.New("timer stopped")

// Timer periodically posts its callback onto the loop. The next firing is armed only after
// the callback has run, so firings never overlap. Once stopped, the callback is invoked one
// last time with ErrTimerStopped and never again.
type Timer struct {
	loop     *Loop
	interval time.Duration
	fn       func(error)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func NewTimer(loop *Loop, interval time.Duration, fn func(error)) *Timer {
	return &Timer{
		loop:     loop,
		interval: interval,
		fn:       fn,
	}
}

// Start arms the first firing, which happens after one interval.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.timer != nil {
		return
	}

	t.timer = time.AfterFunc(t.interval, t.fire)
}

// Stop cancels the pending firing. The callback is invoked with ErrTimerStopped on the
// loop, or directly if the loop isn't running anymore.
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()

	if !t.loop.Post(func() { t.fn(ErrTimerStopped) }) {
		t.fn(ErrTimerStopped)
	}
}

func (t *Timer) fire() {
	if t.isStopped() {
		return
	}

	posted := t.loop.Post(func() {
		// Stop may have slipped in between the firing and this task
		if t.isStopped() {
			return
		}

		t.fn(nil)
		t.rearm()
	})

	if !posted {
		t.Stop()
	}
}

func (t *Timer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stopped
}

func (t *Timer) rearm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	t.timer.Reset(t.interval)
}
