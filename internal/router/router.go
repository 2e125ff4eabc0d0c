package router

import (
	"context"
	"log/slog"
	"maps"
	"runtime/debug"
	"sync"
	"time"

	"github.com/roach88/communityvoice/internal/clock"
)

// DefaultLoadingDelay is the pause between Prepare and Dispatch that
// lets a loading placeholder show.
const DefaultLoadingDelay = 100 * time.Millisecond

// Dispatcher renders routes. All methods are called on the loop
// goroutine.
type Dispatcher interface {
	// Prepare runs as soon as a dispatch is scheduled, before the loading
	// delay: show a placeholder, highlight the tab, hide stale controls.
	Prepare(rt Route)

	// Dispatch renders rt. ctx is canceled as soon as another dispatch
	// is scheduled; work that completes later must check it.
	Dispatch(ctx context.Context, rt Route) error

	// Fail shows an error view after Dispatch returned err or panicked.
	Fail(rt Route, err error)
}

// BackControl shows or hides the host's back affordance.
type BackControl interface {
	ShowBackButton()
	HideBackButton()
}

// Router reconciles the navigation stack with the address fragment.
//
// Thread-safety: NavigateTo, Go, Back, FragmentChanged, Post and Start
// only enqueue and are safe from any goroutine. Stack, Current and
// QueueLen may be read from any goroutine. Everything else happens on
// the loop, which is driven by exactly one of Run or Drain at a time.
type Router struct {
	addr         Address
	dispatcher   Dispatcher
	clock        clock.Clock
	delay        time.Duration
	defaultRoute string
	back         BackControl

	queue *eventQueue
	gen   clock.Sequence

	mu      sync.Mutex
	stack   Stack
	current Route

	// Loop-only.
	pending    clock.Timer
	viewCtx    context.Context
	viewCancel context.CancelFunc
}

// Option configures a Router.
type Option func(*Router)

// WithClock sets the clock used for the loading delay. Default:
// clock.System.
func WithClock(c clock.Clock) Option {
	return func(r *Router) {
		r.clock = c
	}
}

// WithLoadingDelay sets the pause before Dispatch. Default:
// DefaultLoadingDelay.
func WithLoadingDelay(d time.Duration) Option {
	return func(r *Router) {
		r.delay = d
	}
}

// WithDefaultRoute sets the route used for an empty fragment.
// Default: "ideas".
func WithDefaultRoute(name string) Option {
	return func(r *Router) {
		r.defaultRoute = name
	}
}

// WithBackControl sets the back affordance updated after every dispatch.
func WithBackControl(b BackControl) Option {
	return func(r *Router) {
		r.back = b
	}
}

// New creates a Router over addr and starts watching it.
func New(addr Address, d Dispatcher, opts ...Option) *Router {
	r := &Router{
		addr:         addr,
		dispatcher:   d,
		clock:        clock.System{},
		delay:        DefaultLoadingDelay,
		defaultRoute: NameIdeas,
		queue:        newEventQueue(),
	}
	for _, opt := range opts {
		opt(r)
	}
	addr.Watch(r.FragmentChanged)
	return r
}

// NavigateTo requests a navigation to name with params. With replace the
// history is reset to this single entry.
func (r *Router) NavigateTo(name string, params map[string]string, replace bool) {
	r.queue.Enqueue(event{kind: evNavigate, name: name, params: maps.Clone(params), replace: replace})
}

// Go is NavigateTo for a resolved route.
func (r *Router) Go(rt Route, replace bool) {
	r.NavigateTo(rt.Name(), Params(rt), replace)
}

// Back pops one entry. With a single entry left it does nothing; the host
// decides what a back press means then.
func (r *Router) Back() {
	r.queue.Enqueue(event{kind: evBack})
}

// FragmentChanged reports a new fragment value. It is registered with the
// Address by New.
func (r *Router) FragmentChanged(fragment string) {
	r.queue.Enqueue(event{kind: evFragment, fragment: fragment})
}

// Post runs fn on the loop. Panics in fn are recovered and logged.
func (r *Router) Post(fn func()) {
	r.queue.Enqueue(event{kind: evTask, task: fn})
}

// Start resolves the current fragment: an empty one navigates to the
// default route, anything else becomes the only history entry.
func (r *Router) Start() {
	r.queue.Enqueue(event{kind: evStart})
}

// Close stops the loop. Run returns nil once the queue is closed; events
// enqueued afterwards are dropped.
func (r *Router) Close() {
	r.queue.Close()
}

// Stack returns the history paths, bottom first.
func (r *Router) Stack() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack.Paths()
}

// History returns a copy of the history entries, bottom first.
func (r *Router) History() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack.Entries()
}

// Current returns the route most recently scheduled for dispatch, or nil.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// QueueLen returns the number of events waiting for the loop.
func (r *Router) QueueLen() int {
	return r.queue.Len()
}

// ViewContext returns the context of the current view. Call it only from
// the loop (inside the Dispatcher or a posted task).
func (r *Router) ViewContext() context.Context {
	if r.viewCtx == nil {
		return context.Background()
	}
	return r.viewCtx
}

// Run processes events until ctx is done or the router is closed.
func (r *Router) Run(ctx context.Context) error {
	slog.Debug("router starting")
	defer r.cancelView()

	for {
		if e, ok := r.queue.TryDequeue(); ok {
			r.handle(ctx, e)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("router stopping: context cancelled")
			r.queue.Close()
			return ctx.Err()

		case _, ok := <-r.queue.Wait():
			if !ok && r.queue.Len() == 0 {
				slog.Debug("router stopping: queue closed")
				return nil
			}
		}
	}
}

// Drain processes queued events, including those enqueued while
// draining, and returns once the queue is empty. Timers that have not
// fired yet are left pending.
func (r *Router) Drain(ctx context.Context) {
	for {
		e, ok := r.queue.TryDequeue()
		if !ok {
			return
		}
		r.handle(ctx, e)
	}
}

func (r *Router) handle(ctx context.Context, e event) {
	slog.Debug("router event", "kind", e.kind)

	switch e.kind {
	case evNavigate:
		r.navigate(ctx, e.name, e.params, e.replace)
	case evBack:
		r.popBack(ctx)
	case evFragment:
		r.fragmentChanged(ctx, e.fragment)
	case evRender:
		r.render(e)
	case evTask:
		r.runTask(e.task)
	case evStart:
		r.start(ctx)
	}
}

func (r *Router) navigate(ctx context.Context, name string, params map[string]string, replace bool) {
	path := FormatPath(name, params)
	entry := Entry{Path: path, State: params}

	r.mu.Lock()
	top, ok := r.stack.Top()
	switch {
	case replace || !ok:
		r.stack.Reset(entry)
	case !samePage(top.Path, path):
		r.stack.Push(entry)
	default:
		// Same view again: refresh without growing the history. The top
		// entry keeps its path, extra params included.
		r.mu.Unlock()
		r.schedule(ctx, top.Path)
		return
	}
	r.mu.Unlock()

	r.setFragment(ctx, path)
}

// samePage reports whether two paths show the same view. Params the
// route does not read are ignored, so "petitionDetail?id=1&ref=x" and
// "petitionDetail?id=1" match.
func samePage(a, b string) bool {
	if a == b {
		return true
	}
	an, ap := ParsePath(a)
	bn, bp := ParsePath(b)
	return Path(Resolve(an, ap)) == Path(Resolve(bn, bp))
}

func (r *Router) popBack(ctx context.Context) {
	r.mu.Lock()
	top, ok := r.stack.Pop()
	r.mu.Unlock()
	if !ok {
		slog.Debug("back ignored: no in-app history")
		return
	}
	r.setFragment(ctx, top.Path)
}

// setFragment moves the address to path. The resulting fragment event
// dispatches; if the address already holds path no event will come, so
// the dispatch is scheduled directly.
func (r *Router) setFragment(ctx context.Context, path string) {
	if r.addr.Fragment() == path {
		r.schedule(ctx, path)
		return
	}
	r.addr.SetFragment(path)
}

func (r *Router) fragmentChanged(ctx context.Context, fragment string) {
	if current := r.addr.Fragment(); fragment != current {
		slog.Debug("stale fragment ignored", "fragment", fragment, "current", current)
		return
	}
	if fragment == "" {
		r.navigate(ctx, r.defaultRoute, nil, true)
		return
	}

	r.mu.Lock()
	top, ok := r.stack.Top()
	if !ok || top.Path != fragment {
		_, params := ParsePath(fragment)
		r.stack.Reset(Entry{Path: fragment, State: params})
		slog.Info("external navigation, history reset", "fragment", fragment)
	}
	r.mu.Unlock()

	r.schedule(ctx, fragment)
}

func (r *Router) start(ctx context.Context) {
	fragment := r.addr.Fragment()
	if fragment == "" {
		r.navigate(ctx, r.defaultRoute, nil, true)
		return
	}
	_, params := ParsePath(fragment)
	r.mu.Lock()
	r.stack.Reset(Entry{Path: fragment, State: params})
	r.mu.Unlock()
	r.schedule(ctx, fragment)
}

// schedule supersedes any pending dispatch with one for path.
func (r *Router) schedule(ctx context.Context, path string) {
	name, params := ParsePath(path)
	rt := Resolve(name, params)

	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.cancelView()
	gen := r.gen.Next()
	r.viewCtx, r.viewCancel = context.WithCancel(ctx)

	r.mu.Lock()
	r.current = rt
	r.mu.Unlock()

	if err := r.guard(rt, func() error {
		r.dispatcher.Prepare(rt)
		return nil
	}); err != nil {
		slog.Error("prepare failed", "route", rt.Name(), "error", err)
	}

	r.pending = r.clock.AfterFunc(r.delay, func() {
		r.queue.Enqueue(event{kind: evRender, gen: gen, route: rt})
	})
}

func (r *Router) render(e event) {
	if e.gen != r.gen.Current() {
		slog.Debug("superseded dispatch dropped", "route", e.route.Name())
		return
	}
	r.pending = nil

	err := r.guard(e.route, func() error {
		return r.dispatcher.Dispatch(r.viewCtx, e.route)
	})
	if err != nil {
		slog.Error("dispatch failed", "route", e.route.Name(), "error", err)
		if ferr := r.guard(e.route, func() error {
			r.dispatcher.Fail(e.route, err)
			return nil
		}); ferr != nil {
			slog.Error("error view failed", "route", e.route.Name(), "error", ferr)
		}
	}
	r.updateBackAffordance()
}

// updateBackAffordance shows the back control only while there is
// in-app history to go back to. Recomputed after every dispatch.
func (r *Router) updateBackAffordance() {
	if r.back == nil {
		return
	}
	r.mu.Lock()
	n := r.stack.Len()
	r.mu.Unlock()
	if n > 1 {
		r.back.ShowBackButton()
	} else {
		r.back.HideBackButton()
	}
}

func (r *Router) runTask(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			slog.Error("posted task panicked", "panic", v, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// guard runs fn, converting a panic into a *PanicError.
func (r *Router) guard(rt Route, fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Route: rt.Name(), Value: v, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func (r *Router) cancelView() {
	if r.viewCancel != nil {
		r.viewCancel()
		r.viewCancel = nil
	}
}
