package app

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
	"github.com/roach88/communityvoice/internal/router"
)

const (
	headerMaxRunes  = 25
	summaryMaxRunes = 100
	dateLayout      = "Jan 2, 2006 15:04"

	// DefaultLocationName names coordinates submitted without a place name.
	DefaultLocationName = "Current Location"

	noUserMessage = "User data not available. Please open this app within Telegram."
	appVersion    = "CommunityVoice v0.1.0"
)

// page accumulates the lines of a rendered view.
type page struct {
	view  string
	lines []string
}

func (p *page) add(format string, args ...any) {
	p.lines = append(p.lines, fmt.Sprintf(format, args...))
}

func (a *App) show(p *page) {
	a.host.Render(host.Page{View: p.view, Lines: p.lines})
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.UTC().Format(dateLayout)
}

type listText struct {
	header, action, actionRoute string
	noMatch, empty              string
}

var listTexts = map[content.Kind]listText{
	content.KindIdeas: {
		header: "Ideas", action: "New Idea", actionRoute: router.NameNewIdea,
		noMatch: "No ideas found matching your search.",
		empty:   "No ideas yet. Be the first to submit one!",
	},
	content.KindPetitions: {
		header: "Petitions", action: "New Petition", actionRoute: router.NameNewPetition,
		noMatch: "No petitions found.",
		empty:   "No petitions yet. Start one!",
	},
	content.KindPolls: {
		header: "Polls", action: "New Poll", actionRoute: router.NameNewPoll,
		noMatch: "No polls found.",
		empty:   "No polls yet. Create one!",
	},
}

// renderList shows the searchable list of kind filtered by term.
func (a *App) renderList(kind content.Kind, term string) {
	txt := listTexts[kind]
	a.host.SetHeader(txt.header, &host.HeaderAction{Text: txt.action, Route: txt.actionRoute})

	p := &page{view: string(kind)}
	if term != "" {
		p.add("search: %q", term)
	}
	items := a.store.SearchItems(kind, term)
	switch {
	case len(items) == 0 && term != "":
		p.add("%s", txt.noMatch)
	case len(items) == 0:
		p.add("%s", txt.empty)
	}
	for _, it := range items {
		p.add("%s", card(it))
	}
	a.show(p)
	a.host.HideMainButton()
}

// card is the one-line summary of an item in a list.
func card(it content.Item) string {
	rec := it.Base()
	var meta string
	switch v := it.(type) {
	case *content.Idea:
		meta = fmt.Sprintf("%d upvotes", v.Upvotes.Len())
		if len(v.Tags) > 0 {
			meta += " | " + strings.Join(v.Tags, ", ")
		}
	case *content.Petition:
		meta = fmt.Sprintf("%d/%d signatures", v.Signatures.Len(), v.TargetSignatures)
	case *content.Poll:
		meta = fmt.Sprintf("%d votes cast", v.TotalVotes())
	case *content.Project:
		meta = fmt.Sprintf("status: %s | team: %d members | tasks: %d tasks", v.Status, v.Team.Len(), len(v.Tasks))
	}
	return fmt.Sprintf("[%s] %s | by %s | %s", rec.ID, truncate(content.Title(it), summaryMaxRunes), rec.AuthorName, meta)
}

func byline(rec *content.Record) string {
	return fmt.Sprintf("By %s on %s", rec.AuthorName, formatDate(rec.CreatedAt))
}

func writeComments(p *page, rec *content.Record) {
	p.add("Comments (%d)", len(rec.Comments))
	if len(rec.Comments) == 0 {
		p.add("  No comments yet.")
		return
	}
	for _, c := range rec.Comments {
		p.add("  %s (by %s on %s)", c.Text, c.UserName, formatDate(c.CreatedAt))
	}
}

func (a *App) missing(noun string) {
	a.host.Render(host.Page{View: "missing", Lines: []string{noun + " not found."}})
	a.host.SetHeader("Error", nil)
}

func (a *App) renderIdea(id string) {
	idea, ok := a.store.Idea(id)
	if !ok {
		a.missing("Idea")
		return
	}
	user, hasUser := a.store.GetUser()

	p := &page{view: router.NameIdeaDetail}
	p.add("%s", idea.Title)
	p.add("%s", byline(&idea.Record))
	p.add("%s", idea.Description)
	if len(idea.Tags) > 0 {
		p.add("Tags: %s", strings.Join(idea.Tags, ", "))
	}
	if loc := idea.Location; loc != nil && (loc.Name != "" || loc.HasCoordinates()) {
		if loc.HasCoordinates() {
			p.add("Location: %s (%s)", loc.Name, host.FormatCoordinates(host.Coordinates{Latitude: *loc.Latitude, Longitude: *loc.Longitude}))
		} else {
			p.add("Location: %s", loc.Name)
		}
	}
	label := "Upvote"
	if hasUser && idea.Upvotes.Has(user.ID) {
		label = "Upvoted"
	}
	p.add("[%s] (%d)", label, idea.Upvotes.Len())
	writeComments(p, &idea.Record)
	a.show(p)
	a.host.SetHeader(truncate(idea.Title, headerMaxRunes), nil)
}

func (a *App) renderPetition(id string) {
	pet, ok := a.store.Petition(id)
	if !ok {
		a.missing("Petition")
		return
	}
	user, hasUser := a.store.GetUser()

	p := &page{view: router.NamePetitionDetail}
	p.add("%s", pet.Title)
	p.add("%s", byline(&pet.Record))
	p.add("%s", pet.Description)
	p.add("Signatures: %d / %d", pet.Signatures.Len(), pet.TargetSignatures)
	if hasUser && pet.Signatures.Has(user.ID) {
		p.add("[You Signed This]")
	} else {
		p.add("[Sign Petition]")
	}
	writeComments(p, &pet.Record)
	a.show(p)
	a.host.SetHeader("Petition Details", nil)
}

func (a *App) renderPoll(id string) {
	poll, ok := a.store.Poll(id)
	if !ok {
		a.missing("Poll")
		return
	}
	user, hasUser := a.store.GetUser()
	voted := hasUser && poll.VotedBy.Has(user.ID)

	p := &page{view: router.NamePollDetail}
	p.add("%s", poll.Question)
	p.add("%s | %d total votes", byline(&poll.Record), poll.TotalVotes())
	for _, opt := range poll.Options {
		if voted {
			p.add("  %s: %s%% (%d)", opt.Text, poll.Share(opt), opt.Votes.Len())
		} else {
			p.add("  ( ) %s [%s]", opt.Text, opt.ID)
		}
	}
	if voted {
		p.add("%s", AlreadyVotedMessage)
	}
	writeComments(p, &poll.Record)
	a.show(p)
	a.host.SetHeader("Poll Details", nil)
}

func (a *App) renderNewIdea() {
	a.host.SetHeader("Submit New Idea", nil)
	location := "off"
	if a.store.GetPreferences().LocationEnabled {
		location = "on"
	}
	a.show(&page{view: router.NameNewIdea, lines: []string{
		"Title",
		"Description",
		"Tags (comma-separated)",
		"Location Name (Optional)",
		"Use current location: " + location,
	}})
	a.showMainButton("Submit Idea")
}

func (a *App) renderNewPetition() {
	a.host.SetHeader("Create New Petition", nil)
	a.show(&page{view: router.NameNewPetition, lines: []string{
		"Petition Title",
		"Reason for Petition",
		fmt.Sprintf("Target Signatures (min %d)", content.MinTargetSignatures),
	}})
	a.showMainButton("Create Petition")
}

func (a *App) renderNewPoll() {
	a.host.SetHeader("Create New Poll", nil)
	a.show(&page{view: router.NameNewPoll, lines: []string{
		"Poll Question",
		"Option 1",
		"Option 2",
		fmt.Sprintf("Add Another Option (max %d)", content.MaxPollOptions),
	}})
	a.showMainButton("Create Poll")
}

func (a *App) renderProjects() {
	a.host.SetHeader("Project Hub", nil)
	p := &page{view: router.NameProjects}
	projects := a.store.GetAll(content.KindProjects)
	if len(projects) == 0 {
		p.add("No active projects yet.")
	}
	for _, it := range projects {
		p.add("%s", card(it))
	}
	a.show(p)
	a.host.HideMainButton()
}

func (a *App) renderProfile() {
	a.host.SetHeader("My Profile", nil)
	a.host.HideMainButton()

	user, ok := a.store.GetUser()
	if !ok {
		a.show(&page{view: router.NameProfile, lines: []string{noUserMessage}})
		return
	}
	prefs := a.store.GetPreferences()

	p := &page{view: router.NameProfile}
	p.add("%s", user.DisplayName())
	if user.Username != "" {
		p.add("@%s", user.Username)
	}
	p.add("ID: %s", user.ID)
	p.add("Preferences")
	p.add("  Notifications: %s", onOff(prefs.Notifications))
	p.add("  Location for submissions: %s", onOff(prefs.LocationEnabled))
	p.add("  Theme: %s", prefs.Theme)
	p.add("[Share App]")
	p.add("%s", appVersion)
	a.show(p)
}

func (a *App) renderNotFound(r router.NotFound) {
	a.show(&page{view: "notFound", lines: []string{"Page not found: " + r.Requested}})
	a.host.SetHeader("Not Found", nil)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
