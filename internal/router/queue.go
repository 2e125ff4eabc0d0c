package router

import "sync"

// eventKind distinguishes router events.
type eventKind int

const (
	// evNavigate is an in-app navigation request.
	evNavigate eventKind = iota + 1
	// evBack is a press of the back affordance.
	evBack
	// evFragment reports that the address fragment changed.
	evFragment
	// evRender is a dispatch whose loading delay elapsed.
	evRender
	// evTask is a function posted to run on the loop.
	evTask
	// evStart resolves the initial fragment.
	evStart
)

func (k eventKind) String() string {
	switch k {
	case evNavigate:
		return "navigate"
	case evBack:
		return "back"
	case evFragment:
		return "fragment"
	case evRender:
		return "render"
	case evTask:
		return "task"
	case evStart:
		return "start"
	default:
		return "unknown"
	}
}

// event is a unit of work for the loop. Only the fields of its kind are
// set.
type event struct {
	kind eventKind

	name    string
	params  map[string]string
	replace bool

	fragment string

	gen   int64
	route Route

	task func()
}

// eventQueue is a thread-safe FIFO of router events.
//
// The queue is unbounded: host callbacks, timers and location results may
// enqueue from any goroutine without blocking while the loop dequeues.
//
// Waiting is done through a buffered signal channel so the loop can
// select on it together with its context.
type eventQueue struct {
	mu     sync.Mutex
	events []event
	closed bool
	signal chan struct{} // buffered, size 1; closed by Close
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds e to the back of the queue. Returns false once the queue
// is closed.
func (q *eventQueue) Enqueue(e event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	// Non-blocking; the size-1 buffer coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return event{}, false
	}
	e := q.events[0]
	// Drop references held by the backing array.
	q.events[0] = event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that receives when events may be available. It
// is closed by Close; a receive with ok == false means no more events
// will arrive. A signal may be stale, so always follow it with
// TryDequeue.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops accepting events and wakes the waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
