// Package host defines the collaborators supplied by the container the
// app runs in: identity, native alerts and popups, haptics, the back and
// main buttons, share links, geolocation and the screen.
//
// Every interface is small so tests can implement only what they need.
// Console implements all of them for headless sessions.
package host

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/roach88/communityvoice/internal/content"
)

// User is the identity record handed over by the host. Field names follow
// the host's snake_case wire format.
type User struct {
	ID        int64  `json:"id" yaml:"id"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
}

// Profile converts u to the cached profile shape.
func (u User) Profile() content.UserProfile {
	return content.UserProfile{
		ID:        content.UserIDFromInt(u.ID),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		PhotoURL:  u.PhotoURL,
	}
}

// Identity exposes the ready user, if the host has one.
type Identity interface {
	User() (User, bool)
}

// Alerter shows a blocking message.
type Alerter interface {
	ShowAlert(message string)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	ShowConfirm(message string) bool
}

// PopupButton is one button of a popup.
type PopupButton struct {
	ID   string
	Type string // "default", "ok", "cancel", "destructive"
	Text string
}

// PopupParams describes a popup.
type PopupParams struct {
	Title   string
	Message string
	Buttons []PopupButton
}

// Popup shows a popup and returns the id of the pressed button.
type Popup interface {
	ShowPopup(p PopupParams) string
}

// ImpactStyle is the strength of an impact haptic.
type ImpactStyle string

const (
	ImpactLight  ImpactStyle = "light"
	ImpactMedium ImpactStyle = "medium"
	ImpactHeavy  ImpactStyle = "heavy"
	ImpactRigid  ImpactStyle = "rigid"
	ImpactSoft   ImpactStyle = "soft"
)

// NotificationType is the kind of a notification haptic.
type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

// Haptics plays feedback effects.
type Haptics interface {
	ImpactOccurred(style ImpactStyle)
	NotificationOccurred(kind NotificationType)
}

// BackButton is the host's native back control.
type BackButton interface {
	ShowBackButton()
	HideBackButton()
	// OnBackClick registers the click handler, replacing any previous one.
	OnBackClick(fn func())
}

// MainButton is the host's primary action button.
type MainButton interface {
	ShowMainButton(text string, onClick func())
	HideMainButton()
}

// Sharer opens the host's share sheet.
type Sharer interface {
	Share(link, text string)
}

// Coordinates is a position returned by a Locator.
type Coordinates struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ErrLocationDenied is returned when the user refused location access.
var ErrLocationDenied = errors.New("location permission denied")

// ErrLocationUnavailable is returned when the device cannot provide a fix.
var ErrLocationUnavailable = errors.New("location unavailable")

// Locator requests the current position. It blocks until the host answers
// or ctx is done.
type Locator interface {
	RequestLocation(ctx context.Context) (Coordinates, error)
}

// HeaderAction is the optional button in the page header. Route names the
// view it navigates to.
type HeaderAction struct {
	Text  string
	Route string
}

// Page is a rendered view.
type Page struct {
	View  string
	Lines []string
}

// Screen is the visible surface.
type Screen interface {
	ShowLoading()
	SetHeader(title string, action *HeaderAction)
	SetActiveTab(tab string)
	Render(p Page)
}

// Host bundles every collaborator.
type Host interface {
	Identity
	Alerter
	Confirmer
	Popup
	Haptics
	BackButton
	MainButton
	Sharer
	Locator
	Screen
}

// ShareLink builds the host share URL for link and text.
func ShareLink(link, text string) string {
	q := url.Values{}
	q.Set("url", link)
	q.Set("text", text)
	return "https://t.me/share/url?" + q.Encode()
}

// FormatCoordinates renders c with six decimals.
func FormatCoordinates(c Coordinates) string {
	return strconv.FormatFloat(c.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', 6, 64)
}
