package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/communityvoice/internal/clock"
	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
	"github.com/roach88/communityvoice/internal/router"
	"github.com/roach88/communityvoice/internal/store"
)

// DefaultShareBase is the app URL used in share links.
const DefaultShareBase = "https://t.me/communityvoice_bot/app"

// App is the view dispatcher. It renders routes from the store onto the
// host screen and implements the user actions.
//
// App is a router.Dispatcher: Prepare, Dispatch and Fail run on the
// router loop. Action methods touch the store and must run there too:
// call them from a posted task, from a host callback (the App posts
// those itself), or between Drain calls when the test goroutine drives
// the loop.
type App struct {
	store          *store.Store
	host           host.Host
	router         *router.Router
	clock          clock.Clock
	searchDelay    time.Duration
	allowAnonymous bool
	shareBase      string

	search *Debouncer
	wg     sync.WaitGroup

	// ctx is the app lifetime; store writes from callbacks use it.
	ctx context.Context

	// Loop-only.
	viewCtx context.Context
	route   router.Route
	draft   Draft
}

var _ router.Dispatcher = (*App)(nil)

// Option configures an App.
type Option func(*App)

// WithClock sets the clock used by the search debounce. Default:
// clock.System.
func WithClock(c clock.Clock) Option {
	return func(a *App) {
		a.clock = c
	}
}

// WithSearchDebounce sets the search quiet period. Default:
// DefaultSearchDebounce.
func WithSearchDebounce(d time.Duration) Option {
	return func(a *App) {
		a.searchDelay = d
	}
}

// WithAllowAnonymous lets users without an identity submit new items.
// Interactions (upvote, sign, vote, comment) always need an identity.
func WithAllowAnonymous(allow bool) Option {
	return func(a *App) {
		a.allowAnonymous = allow
	}
}

// WithShareBase sets the URL that share links point at.
func WithShareBase(url string) Option {
	return func(a *App) {
		a.shareBase = url
	}
}

// New creates an App over an initialized store. Call Bind before Start.
func New(st *store.Store, h host.Host, opts ...Option) *App {
	a := &App{
		store:       st,
		host:        h,
		clock:       clock.System{},
		searchDelay: DefaultSearchDebounce,
		shareBase:   DefaultShareBase,
		ctx:         context.Background(),
		viewCtx:     context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.search = NewDebouncer(a.clock, a.searchDelay)
	return a
}

// Bind attaches the router the App navigates with and registers the
// host's back button handler.
func (a *App) Bind(r *router.Router) {
	a.router = r
	a.host.OnBackClick(a.onBack)
}

// Start caches the host identity and resolves the initial route. ctx
// bounds store writes made from host callbacks.
func (a *App) Start(ctx context.Context) {
	if a.router == nil {
		panic("app: Start called before Bind")
	}
	a.ctx = ctx
	a.SyncIdentity(ctx)
	a.router.Start()
}

// SyncIdentity caches the host's user in the store. Returns false when the
// host has no user; a previously cached profile is kept then.
func (a *App) SyncIdentity(ctx context.Context) bool {
	u, ok := a.host.User()
	if !ok {
		slog.Warn("host user not available, using cached identity")
		return false
	}
	a.store.SetCurrentUser(ctx, u.Profile())
	slog.Info("user identified", "user", u.ID)
	return true
}

// Wait blocks until every in-flight location request has posted its
// result to the router.
func (a *App) Wait() {
	a.wg.Wait()
}

// Route returns the route last dispatched. Loop-only.
func (a *App) Route() router.Route {
	return a.route
}

func (a *App) onBack() {
	a.host.ImpactOccurred(host.ImpactLight)
	a.router.Back()
}

// Prepare shows the loading placeholder for rt and resets controls that
// belong to the previous view.
func (a *App) Prepare(rt router.Route) {
	a.search.Cancel()
	a.host.ShowLoading()
	a.host.SetActiveTab(router.Tab(rt))
	a.host.HideMainButton()
}

// Dispatch renders rt. ctx stays live until the next dispatch is
// scheduled.
func (a *App) Dispatch(ctx context.Context, rt router.Route) error {
	a.viewCtx = ctx
	a.route = rt
	a.draft = nil
	return a.render(rt)
}

// Fail replaces the page with an error panel and plays an error
// notification.
func (a *App) Fail(rt router.Route, err error) {
	a.host.NotificationOccurred(host.NotifyError)
	a.host.Render(host.Page{
		View:  "error",
		Lines: []string{"Error loading page: " + err.Error()},
	})
	slog.Warn("error view shown", "route", rt.Name())
}

func (a *App) render(rt router.Route) error {
	switch r := rt.(type) {
	case router.Ideas:
		a.renderList(content.KindIdeas, "")
	case router.IdeaDetail:
		a.renderIdea(r.ID)
	case router.NewIdea:
		a.renderNewIdea()
	case router.Petitions:
		a.renderList(content.KindPetitions, "")
	case router.PetitionDetail:
		a.renderPetition(r.ID)
	case router.NewPetition:
		a.renderNewPetition()
	case router.Polls:
		a.renderList(content.KindPolls, "")
	case router.PollDetail:
		a.renderPoll(r.ID)
	case router.NewPoll:
		a.renderNewPoll()
	case router.Projects:
		a.renderProjects()
	case router.Profile:
		a.renderProfile()
	case router.NotFound:
		a.renderNotFound(r)
	default:
		return fmt.Errorf("no view for route %T", rt)
	}
	return nil
}

// refresh re-renders the current view, without the loading delay, when it
// shows rt.
func (a *App) refresh(rt router.Route) {
	if rt == nil || a.route == nil || router.Path(a.route) != router.Path(rt) {
		return
	}
	if err := a.render(a.route); err != nil {
		a.Fail(a.route, err)
	}
}

// detailRoute returns the detail view for an item of kind.
func detailRoute(kind content.Kind, id string) router.Route {
	switch kind {
	case content.KindIdeas:
		return router.IdeaDetail{ID: id}
	case content.KindPetitions:
		return router.PetitionDetail{ID: id}
	case content.KindPolls:
		return router.PollDetail{ID: id}
	default:
		return nil
	}
}

// listRoute returns the list view for kind.
func listRoute(kind content.Kind) router.Route {
	switch kind {
	case content.KindIdeas:
		return router.Ideas{}
	case content.KindPetitions:
		return router.Petitions{}
	case content.KindPolls:
		return router.Polls{}
	case content.KindProjects:
		return router.Projects{}
	default:
		return nil
	}
}
