package bridge

import (
	"sync"
	"time"
)

// Runner serializes bridge work onto a single logical thread and schedules
// delayed callbacks onto that same thread. The bridge itself takes no locks;
// every entry point (navigation signals, element events, inbound commands,
// timer completions) must arrive through the same Runner.
type Runner interface {
	// Do enqueues fn for execution.
	Do(fn func())

	// After schedules fn for execution once d has elapsed. The returned
	// cancel stops a timer that has not fired yet.
	After(d time.Duration, fn func()) (cancel func())
}

// Loop is the production Runner: an unbounded FIFO drained by one goroutine.
// Posting from inside the loop never blocks, so a synthesized click whose
// page handler posts follow-up work cannot deadlock the loop.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
}

func NewLoop() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Do enqueues fn. Calls after Close are dropped.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
}

// After schedules fn onto the loop once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, func() { l.Do(fn) })
	return func() { t.Stop() }
}

// Run drains the queue until Close is called and the queue is empty. It is
// meant to run on a dedicated goroutine for the life of the bridge.
func (l *Loop) Run() {
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
	}
}

// Close lets Run return once the remaining queue drains.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.cond.Broadcast()
}
