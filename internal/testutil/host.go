package testutil

import (
	"context"
	"sync"

	"github.com/roach88/communityvoice/internal/host"
)

// FakeHost is a host.Host that records every call for assertions.
//
// Scripted answers are plain fields; set them before use. When
// LocationGate is non-nil, RequestLocation blocks until a value is sent
// on it or ctx is done, which lets tests navigate away while a request
// is in flight.
type FakeHost struct {
	mu sync.Mutex

	UserInfo      *host.User
	ConfirmAnswer bool
	PopupAnswer   string
	Location      *host.Coordinates
	LocationErr   error
	LocationGate  chan struct{}

	Alerts        []string
	Confirms      []string
	Popups        []string
	Impacts       []host.ImpactStyle
	Notifications []host.NotificationType
	Shares        []string
	Headers       []string
	Tabs          []string
	Pages         []host.Page
	Loading       int

	backVisible bool
	backHistory []bool
	onBack      func()
	mainText    string
	onMain      func()
}

var _ host.Host = (*FakeHost)(nil)

// NewFakeHost returns a host with user u logged in; nil means no identity.
func NewFakeHost(u *host.User) *FakeHost {
	return &FakeHost{UserInfo: u, ConfirmAnswer: true, PopupAnswer: "allow"}
}

func (f *FakeHost) User() (host.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UserInfo == nil {
		return host.User{}, false
	}
	return *f.UserInfo, true
}

func (f *FakeHost) ShowAlert(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Alerts = append(f.Alerts, message)
}

func (f *FakeHost) ShowConfirm(message string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Confirms = append(f.Confirms, message)
	return f.ConfirmAnswer
}

func (f *FakeHost) ShowPopup(p host.PopupParams) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Popups = append(f.Popups, p.Title)
	return f.PopupAnswer
}

func (f *FakeHost) ImpactOccurred(style host.ImpactStyle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Impacts = append(f.Impacts, style)
}

func (f *FakeHost) NotificationOccurred(kind host.NotificationType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notifications = append(f.Notifications, kind)
}

func (f *FakeHost) ShowBackButton() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backVisible = true
	f.backHistory = append(f.backHistory, true)
}

func (f *FakeHost) HideBackButton() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backVisible = false
	f.backHistory = append(f.backHistory, false)
}

func (f *FakeHost) OnBackClick(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onBack = fn
}

// BackVisible reports the last back-button visibility set.
func (f *FakeHost) BackVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backVisible
}

// BackHistory returns every visibility value set, in order.
func (f *FakeHost) BackHistory() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.backHistory...)
}

// PressBack invokes the registered back handler, if any.
func (f *FakeHost) PressBack() bool {
	f.mu.Lock()
	fn := f.onBack
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (f *FakeHost) ShowMainButton(text string, onClick func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mainText = text
	f.onMain = onClick
}

func (f *FakeHost) HideMainButton() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mainText = ""
	f.onMain = nil
}

// MainText returns the visible main button label, or "".
func (f *FakeHost) MainText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mainText
}

// PressMain invokes the main button handler, if shown.
func (f *FakeHost) PressMain() bool {
	f.mu.Lock()
	fn := f.onMain
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (f *FakeHost) Share(link, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Shares = append(f.Shares, host.ShareLink(link, text))
}

func (f *FakeHost) RequestLocation(ctx context.Context) (host.Coordinates, error) {
	f.mu.Lock()
	gate := f.LocationGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return host.Coordinates{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PopupAnswer != "allow" {
		return host.Coordinates{}, host.ErrLocationDenied
	}
	if f.LocationErr != nil {
		return host.Coordinates{}, f.LocationErr
	}
	if f.Location == nil {
		return host.Coordinates{}, host.ErrLocationUnavailable
	}
	return *f.Location, nil
}

func (f *FakeHost) ShowLoading() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Loading++
}

func (f *FakeHost) SetHeader(title string, _ *host.HeaderAction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Headers = append(f.Headers, title)
}

func (f *FakeHost) SetActiveTab(tab string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tabs = append(f.Tabs, tab)
}

func (f *FakeHost) Render(p host.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pages = append(f.Pages, p)
}

// LastPage returns the most recently rendered page.
func (f *FakeHost) LastPage() host.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Pages) == 0 {
		return host.Page{}
	}
	return f.Pages[len(f.Pages)-1]
}

// LastAlert returns the most recent alert, or "".
func (f *FakeHost) LastAlert() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Alerts) == 0 {
		return ""
	}
	return f.Alerts[len(f.Alerts)-1]
}

// Views returns the view name of every rendered page, in order.
func (f *FakeHost) Views() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	views := make([]string, len(f.Pages))
	for i, p := range f.Pages {
		views[i] = p.View
	}
	return views
}
