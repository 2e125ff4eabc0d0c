package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/roach88/communityvoice/internal/app"
	"github.com/roach88/communityvoice/internal/config"
	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
	"github.com/roach88/communityvoice/internal/router"
	"github.com/roach88/communityvoice/internal/seed"
	"github.com/roach88/communityvoice/internal/storage"
	"github.com/roach88/communityvoice/internal/store"
	"github.com/roach88/communityvoice/internal/testutil"
)

// Epoch is the instant every session starts at.
var Epoch = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

// Result is the outcome of a session.
type Result struct {
	// Pass is false when a step or expectation failed.
	Pass bool `json:"pass"`

	// Trace is everything the console host printed, with a "> " line
	// before each step.
	Trace string `json:"trace"`

	// Stack is the final history, bottom first.
	Stack []string `json:"stack"`

	// View is the view name of the last rendered page.
	View string `json:"view"`

	// Errors describes every failed step or expectation.
	Errors []string `json:"errors,omitempty"`

	// Origin is where the store state came from.
	Origin string `json:"origin"`
}

// AddError records a failure.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Option configures Run.
type Option func(*runner)

// WithConfig applies session settings. Default: config.Default().
func WithConfig(cfg config.Config) Option {
	return func(r *runner) {
		r.cfg = cfg
	}
}

// WithBackend persists the session state in b. Default: a fresh
// in-memory backend.
func WithBackend(b storage.Backend) Option {
	return func(r *runner) {
		r.backend = b
	}
}

// WithSeed replaces the seed used when the backend is empty. Default:
// the embedded document.
func WithSeed(src seed.Source) Option {
	return func(r *runner) {
		r.seed = src
	}
}

// WithOutput copies the trace to w as it is written.
func WithOutput(w io.Writer) Option {
	return func(r *runner) {
		r.tee = w
	}
}

// lockedWriter serializes writes from the runner and from location
// goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type runner struct {
	cfg     config.Config
	backend storage.Backend
	seed    seed.Source
	tee     io.Writer

	out     *lockedWriter
	clock   *testutil.ManualClock
	console *host.Console
	store   *store.Store
	addr    *router.MemoryAddress
	router  *router.Router
	app     *app.App

	// view tracks the last rendered page.
	view string
}

// Run executes a scenario and returns its result. A non-nil error means
// the session could not be set up; step and expectation failures are
// reported in the Result.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	r := &runner{cfg: config.Default(), seed: seed.Embedded()}
	for _, opt := range opts {
		opt(r)
	}
	if r.backend == nil {
		r.backend = storage.NewMemory()
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.tee != nil {
		w = io.MultiWriter(&buf, r.tee)
	}
	r.out = &lockedWriter{w: w}
	r.setup(s)

	origin := r.store.Initialize(ctx)
	result := &Result{Pass: true, Origin: origin.String()}

	if s.Fragment == "" {
		r.printf("> start")
	} else {
		r.printf("> start %s", s.Fragment)
	}
	r.app.Start(ctx)
	r.settle(ctx)

	for i, step := range s.Steps {
		r.step(ctx, i+1, step, result)
	}
	if s.Expect != nil {
		r.check(s.Expect, buf.String(), result)
	}

	r.printf("> end")
	r.printf("stack: %s", strings.Join(r.router.Stack(), " | "))
	r.router.Close()

	result.Trace = buf.String()
	result.Stack = r.router.Stack()
	result.View = r.view
	return result, nil
}

func (r *runner) setup(s *Scenario) {
	r.clock = testutil.NewManualClock(Epoch)

	copts := []host.ConsoleOption{host.WithNoColor()}
	if s.User != nil {
		copts = append(copts, host.WithUser(*s.User))
	}
	if s.Location != nil {
		copts = append(copts, host.WithLocation(*s.Location))
	}
	if s.PopupAnswer != "" {
		copts = append(copts, host.WithPopupAnswer(s.PopupAnswer))
	}
	if s.Confirm != nil {
		copts = append(copts, host.WithConfirm(*s.Confirm))
	}
	r.console = host.NewConsole(&viewTracker{r: r, w: r.out}, copts...)

	r.store = store.New(r.backend, r.seed,
		store.WithKey(r.cfg.StorageKey),
		store.WithIDGenerator(store.NewSequenceGenerator("id")),
		store.WithNow(r.clock.Now),
		store.WithAlerter(r.console),
		store.WithHaptics(r.console),
	)

	r.app = app.New(r.store, r.console,
		app.WithClock(r.clock),
		app.WithSearchDebounce(r.cfg.SearchDebounce),
		app.WithAllowAnonymous(r.cfg.AllowAnonymous || s.AllowAnonymous),
		app.WithShareBase(r.cfg.ShareBase),
	)
	r.addr = router.NewMemoryAddress(s.Fragment)
	r.router = router.New(r.addr, r.app,
		router.WithClock(r.clock),
		router.WithLoadingDelay(r.cfg.LoadingDelay),
		router.WithDefaultRoute(r.cfg.DefaultRoute),
		router.WithBackControl(r.console),
	)
	r.app.Bind(r.router)
}

func (r *runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// settle runs the loop until no events, location requests or timers are
// left.
func (r *runner) settle(ctx context.Context) {
	for {
		r.router.Drain(ctx)
		r.app.Wait()
		if r.router.QueueLen() > 0 {
			continue
		}
		if !r.clock.AdvanceNext() {
			return
		}
	}
}

func (r *runner) step(ctx context.Context, n int, st Step, result *Result) {
	desc, err := r.do(ctx, st)
	if err != nil {
		if code := app.CodeOf(err); code != "" {
			r.printf("  rejected: %s", code)
		} else {
			r.printf("  failed: %v", err)
		}
	}
	switch {
	case st.Reject == "" && err != nil:
		result.AddError("step %d (%s): unexpected error: %v", n, desc, err)
	case st.Reject != "" && err == nil:
		result.AddError("step %d (%s): expected %s, got success", n, desc, st.Reject)
	case st.Reject != "" && app.CodeOf(err) != st.Reject:
		result.AddError("step %d (%s): expected %s, got %v", n, desc, st.Reject, err)
	}
	r.settle(ctx)
}

// do performs one step and returns its description.
func (r *runner) do(ctx context.Context, st Step) (string, error) {
	switch {
	case st.Navigate != "":
		desc := "navigate " + st.Navigate
		if st.Replace {
			desc += " (replace)"
		}
		r.printf("> %s", desc)
		name, params := router.ParsePath(st.Navigate)
		r.router.NavigateTo(name, params, st.Replace)
		return desc, nil

	case st.Back:
		r.printf("> back")
		if !r.console.PressBack() {
			r.printf("  back button hidden")
		}
		return "back", nil

	case st.External != nil:
		desc := "external " + *st.External
		r.printf("> %s", desc)
		r.addr.SetFragment(*st.External)
		return desc, nil

	case st.Upvote != "":
		desc := "upvote " + st.Upvote
		r.printf("> %s", desc)
		_, err := r.app.Upvote(ctx, st.Upvote)
		return desc, err

	case st.Sign != "":
		desc := "sign " + st.Sign
		r.printf("> %s", desc)
		return desc, r.app.Sign(ctx, st.Sign)

	case st.Vote != nil:
		desc := fmt.Sprintf("vote %s %s", st.Vote.Poll, st.Vote.Option)
		r.printf("> %s", desc)
		return desc, r.app.Vote(ctx, st.Vote.Poll, st.Vote.Option)

	case st.Comment != nil:
		c := st.Comment
		desc := fmt.Sprintf("comment %s %s", c.Kind, c.ID)
		r.printf("> %s", desc)
		_, err := r.app.Comment(ctx, c.Kind, c.ID, c.Text)
		return desc, err

	case st.Search != nil:
		desc := fmt.Sprintf("search %s %q", st.Search.Kind, st.Search.Term)
		r.printf("> %s", desc)
		r.app.Search(st.Search.Kind, st.Search.Term)
		return desc, nil

	case st.Submit != nil:
		return r.submit(st.Submit)

	case st.Login != nil:
		desc := "login " + st.Login.FirstName
		r.printf("> %s", desc)
		r.console.SetUser(st.Login)
		r.app.SyncIdentity(ctx)
		return desc, nil

	case st.Prefs != nil:
		r.printf("> preferences")
		r.app.SetPreferences(ctx, content.PreferencesUpdate{
			Notifications:   st.Prefs.Notifications,
			LocationEnabled: st.Prefs.Location,
			Theme:           st.Prefs.Theme,
		})
		return "preferences", nil

	case st.Share != nil:
		desc := fmt.Sprintf("share %s %s", st.Share.Kind, st.Share.ID)
		r.printf("> %s", desc)
		return desc, r.app.Share(st.Share.Kind, st.Share.ID)

	case st.Delete != nil:
		desc := fmt.Sprintf("delete %s %s", st.Delete.Kind, st.Delete.ID)
		r.printf("> %s", desc)
		_, err := r.app.Delete(ctx, st.Delete.Kind, st.Delete.ID)
		return desc, err

	case st.Join != "":
		desc := "join " + st.Join
		r.printf("> %s", desc)
		return desc, r.app.JoinProject(ctx, st.Join)

	case st.ShareApp:
		r.printf("> share app")
		r.app.ShareApp()
		return "share app", nil
	}
	return "", fmt.Errorf("step has no action")
}

func (r *runner) submit(sub *SubmitStep) (string, error) {
	var d app.Draft
	switch {
	case sub.Idea != nil:
		d = *sub.Idea
	case sub.Petition != nil:
		d = *sub.Petition
	default:
		d = *sub.Poll
	}
	desc := "submit " + d.Form().Name()
	r.printf("> %s", desc)
	label := r.console.MainButtonText()
	if label == "" {
		return desc, fmt.Errorf("main button not shown")
	}
	r.printf("  press %q", label)
	r.app.Fill(d)
	r.console.PressMain()
	return desc, nil
}

func (r *runner) check(exp *Expect, trace string, result *Result) {
	if exp.Stack != nil {
		got := r.router.Stack()
		if strings.Join(got, "\n") != strings.Join(exp.Stack, "\n") {
			result.AddError("stack: expected %v, got %v", exp.Stack, got)
		}
	}
	if exp.View != "" && exp.View != r.view {
		result.AddError("view: expected %q, got %q", exp.View, r.view)
	}
	for _, want := range exp.TraceContains {
		if !strings.Contains(trace, want) {
			result.AddError("trace: missing %q", want)
		}
	}
}

// viewTracker records the view name of every rendered page as the
// console prints it.
type viewTracker struct {
	r *runner
	w io.Writer
}

func (v *viewTracker) Write(p []byte) (int, error) {
	if view, ok := strings.CutPrefix(string(p), "page: "); ok {
		v.r.view = strings.TrimSpace(view)
	}
	return v.w.Write(p)
}
