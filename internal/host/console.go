package host

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Console is a headless Host that prints every interaction as a line of
// text. Scripted answers for confirms, popups and location requests are
// set with options.
//
// Thread-safety: all methods are safe for concurrent use; location
// requests typically arrive from a separate goroutine.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool

	user        *User
	confirm     bool
	popupAnswer string
	location    *Coordinates
	locationErr error

	backVisible bool
	onBack      func()
	mainText    string
	onMain      func()
}

var _ Host = (*Console)(nil)

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithUser sets the identity reported by the console.
func WithUser(u User) ConsoleOption {
	return func(c *Console) {
		c.user = &u
	}
}

// WithNoColor disables ANSI colors regardless of the terminal.
func WithNoColor() ConsoleOption {
	return func(c *Console) {
		c.noColor = true
	}
}

// WithConfirm sets the answer to every confirm dialog.
func WithConfirm(answer bool) ConsoleOption {
	return func(c *Console) {
		c.confirm = answer
	}
}

// WithPopupAnswer sets the button id pressed on every popup. By default
// the first button is pressed.
func WithPopupAnswer(id string) ConsoleOption {
	return func(c *Console) {
		c.popupAnswer = id
	}
}

// WithLocation makes location requests succeed with coords.
func WithLocation(coords Coordinates) ConsoleOption {
	return func(c *Console) {
		c.location = &coords
		c.locationErr = nil
	}
}

// WithLocationError makes location requests fail with err.
func WithLocationError(err error) ConsoleOption {
	return func(c *Console) {
		c.location = nil
		c.locationErr = err
	}
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{out: out, confirm: true, locationErr: ErrLocationUnavailable}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) paint(attr color.Attribute, s string) string {
	p := color.New(attr)
	if c.noColor {
		p.DisableColor()
	}
	return p.Sprint(s)
}

// printf writes one line. Caller must hold c.mu.
func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// User implements Identity.
func (c *Console) User() (User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

// SetUser replaces the identity; nil logs the user out.
func (c *Console) SetUser(u *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

// ShowAlert implements Alerter.
func (c *Console) ShowAlert(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s %s", c.paint(color.FgYellow, "alert:"), message)
}

// ShowConfirm implements Confirmer.
func (c *Console) ShowConfirm(message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	answer := "no"
	if c.confirm {
		answer = "yes"
	}
	c.printf("%s %s -> %s", c.paint(color.FgYellow, "confirm:"), message, answer)
	return c.confirm
}

// ShowPopup implements Popup.
func (c *Console) ShowPopup(p PopupParams) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.popupAnswer
	if id == "" && len(p.Buttons) > 0 {
		id = p.Buttons[0].ID
	}
	c.printf("%s %s -> %s", c.paint(color.FgYellow, "popup:"), p.Title, id)
	return id
}

// ImpactOccurred implements Haptics.
func (c *Console) ImpactOccurred(style ImpactStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s impact %s", c.paint(color.FgHiBlack, "haptic:"), style)
}

// NotificationOccurred implements Haptics.
func (c *Console) NotificationOccurred(kind NotificationType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	attr := color.FgGreen
	if kind == NotifyError {
		attr = color.FgRed
	}
	c.printf("%s notify %s", c.paint(color.FgHiBlack, "haptic:"), c.paint(attr, string(kind)))
}

// ShowBackButton implements BackButton. Only changes are printed.
func (c *Console) ShowBackButton() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.backVisible {
		c.backVisible = true
		c.printf("%s shown", c.paint(color.FgCyan, "back:"))
	}
}

// HideBackButton implements BackButton. Only changes are printed.
func (c *Console) HideBackButton() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backVisible {
		c.backVisible = false
		c.printf("%s hidden", c.paint(color.FgCyan, "back:"))
	}
}

// OnBackClick implements BackButton.
func (c *Console) OnBackClick(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onBack = fn
}

// BackVisible reports whether the back button is shown.
func (c *Console) BackVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backVisible
}

// PressBack clicks the back button. Returns false if it is hidden or has
// no handler.
func (c *Console) PressBack() bool {
	c.mu.Lock()
	fn := c.onBack
	visible := c.backVisible
	c.mu.Unlock()
	if !visible || fn == nil {
		return false
	}
	fn()
	return true
}

// ShowMainButton implements MainButton.
func (c *Console) ShowMainButton(text string, onClick func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMain = onClick
	if c.mainText != text {
		c.mainText = text
		c.printf("%s %s", c.paint(color.FgCyan, "main:"), text)
	}
}

// HideMainButton implements MainButton.
func (c *Console) HideMainButton() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMain = nil
	if c.mainText != "" {
		c.mainText = ""
		c.printf("%s hidden", c.paint(color.FgCyan, "main:"))
	}
}

// MainButtonText returns the label of the visible main button, or "".
func (c *Console) MainButtonText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mainText
}

// PressMain clicks the main button. Returns false if it is hidden.
func (c *Console) PressMain() bool {
	c.mu.Lock()
	fn := c.onMain
	c.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Share implements Sharer.
func (c *Console) Share(link, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s %s", c.paint(color.FgBlue, "share:"), ShareLink(link, text))
}

// RequestLocation implements Locator. The popup asking for permission is
// answered by the scripted popup answer.
func (c *Console) RequestLocation(ctx context.Context) (Coordinates, error) {
	answer := c.ShowPopup(PopupParams{
		Title:   "Location Access",
		Message: "CommunityVoice would like to access your location to tag submissions and help find local content. Is this okay?",
		Buttons: []PopupButton{
			{ID: "allow", Type: "default", Text: "Allow"},
			{ID: "deny", Type: "destructive", Text: "Deny"},
		},
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	if answer != "allow" {
		c.printf("%s %v", c.paint(color.FgRed, "location:"), ErrLocationDenied)
		return Coordinates{}, ErrLocationDenied
	}
	if c.location == nil {
		c.printf("%s %v", c.paint(color.FgRed, "location:"), c.locationErr)
		return Coordinates{}, c.locationErr
	}
	c.printf("%s %s", c.paint(color.FgBlue, "location:"), FormatCoordinates(*c.location))
	return *c.location, nil
}

// ShowLoading implements Screen.
func (c *Console) ShowLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s", c.paint(color.FgHiBlack, "loading..."))
}

// SetHeader implements Screen.
func (c *Console) SetHeader(title string, action *HeaderAction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if action != nil {
		c.printf("%s %s [%s]", c.paint(color.FgMagenta, "header:"), title, action.Text)
		return
	}
	c.printf("%s %s", c.paint(color.FgMagenta, "header:"), title)
}

// SetActiveTab implements Screen.
func (c *Console) SetActiveTab(tab string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s %s", c.paint(color.FgMagenta, "tab:"), tab)
}

// Render implements Screen.
func (c *Console) Render(p Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s %s", c.paint(color.FgGreen, "page:"), p.View)
	for _, line := range p.Lines {
		c.printf("  %s", strings.TrimRight(line, " "))
	}
}
