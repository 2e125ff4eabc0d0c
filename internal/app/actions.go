package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
	"github.com/roach88/communityvoice/internal/router"
)

// User-facing messages.
const (
	AlreadyVotedMessage    = "You have already voted in this poll."
	IdeaRequiredMessage    = "Title and Description are required."
	PetitionFieldsMessage  = "All fields are required, and target signatures must be at least 10."
	PollFieldsMessage      = "Question and at least two options are required."
	PollMaxOptionsMessage  = "Maximum of 10 options allowed."
	LocationDeniedMessage  = "Could not enable location. Please check permissions."
	LocationGrantedMessage = "Location access granted!"
	ShareAppText           = "Check out CommunityVoice on Telegram!"
)

// LocationFallbackMessage is shown when an idea is submitted without the
// coordinates the user asked for.
const LocationFallbackMessage = "Could not get location, submitting without precise coordinates. " +
	"You can grant permission in your device settings or browser."

// loginMessage is the prompt shown when verb needs an identity.
func loginMessage(verb string) string {
	return "Please login via Telegram to " + verb + "."
}

// requireUser returns the cached identity, or alerts and returns an
// unauthenticated error.
func (a *App) requireUser(action, verb string) (content.UserProfile, error) {
	u, ok := a.store.GetUser()
	if !ok {
		a.host.ShowAlert(loginMessage(verb))
		return content.UserProfile{}, actionErr(CodeUnauthenticated, action, "no identity")
	}
	return u, nil
}

// Upvote toggles the user's upvote on an idea and returns the resulting
// membership.
func (a *App) Upvote(ctx context.Context, ideaID string) (bool, error) {
	u, err := a.requireUser("upvote", "upvote")
	if err != nil {
		return false, err
	}
	if _, ok := a.store.Idea(ideaID); !ok {
		return false, actionErr(CodeNotFound, "upvote", "idea "+ideaID+" not found")
	}

	upvoted := a.store.ToggleUpvote(ctx, ideaID, u.ID)
	if upvoted {
		a.host.ImpactOccurred(host.ImpactMedium)
	} else {
		a.host.ImpactOccurred(host.ImpactLight)
	}
	a.refresh(router.IdeaDetail{ID: ideaID})
	return upvoted, nil
}

// Comment appends text to the comment thread of an item. Blank text is
// ignored without a prompt.
func (a *App) Comment(ctx context.Context, kind content.Kind, itemID, text string) (content.Comment, error) {
	u, err := a.requireUser("comment", "comment")
	if err != nil {
		return content.Comment{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return content.Comment{}, validation("comment", "text", "comment text is empty")
	}

	c, ok := a.store.AddComment(ctx, kind, itemID, text, u.ID, u.DisplayName())
	if !ok {
		return content.Comment{}, actionErr(CodeNotFound, "comment", fmt.Sprintf("%s %s not found", kind.Singular(), itemID))
	}
	a.host.ImpactOccurred(host.ImpactMedium)
	a.refresh(detailRoute(kind, itemID))
	return c, nil
}

// Sign adds the user's signature to a petition, at most once.
func (a *App) Sign(ctx context.Context, petitionID string) error {
	u, err := a.requireUser("sign", "sign")
	if err != nil {
		return err
	}
	p, ok := a.store.Petition(petitionID)
	if !ok {
		a.host.NotificationOccurred(host.NotifyError)
		return actionErr(CodeNotFound, "sign", "petition "+petitionID+" not found")
	}
	if p.Signatures.Has(u.ID) || !a.store.SignPetition(ctx, petitionID, u.ID) {
		a.host.NotificationOccurred(host.NotifyError)
		return actionErr(CodeAlreadyDone, "sign", "petition already signed")
	}

	a.host.NotificationOccurred(host.NotifySuccess)
	a.host.ShowAlert("Petition signed!")
	a.router.Go(router.PetitionDetail{ID: petitionID}, false)
	return nil
}

// Vote records the user's single vote in a poll.
func (a *App) Vote(ctx context.Context, pollID, optionID string) error {
	u, err := a.requireUser("vote", "vote")
	if err != nil {
		return err
	}
	a.host.ImpactOccurred(host.ImpactMedium)

	p, ok := a.store.Poll(pollID)
	if !ok {
		return actionErr(CodeNotFound, "vote", "poll "+pollID+" not found")
	}
	if p.VotedBy.Has(u.ID) {
		a.host.ShowAlert(AlreadyVotedMessage)
		return actionErr(CodeAlreadyDone, "vote", "already voted")
	}
	if !a.store.VotePoll(ctx, pollID, optionID, u.ID) {
		return actionErr(CodeNotFound, "vote", "option "+optionID+" not found")
	}

	a.host.NotificationOccurred(host.NotifySuccess)
	a.router.Go(router.PollDetail{ID: pollID}, false)
	return nil
}

// JoinProject adds the user to a project team.
func (a *App) JoinProject(ctx context.Context, projectID string) error {
	u, err := a.requireUser("join project", "join")
	if err != nil {
		return err
	}
	p, ok := a.store.Project(projectID)
	if !ok {
		return actionErr(CodeNotFound, "join project", "project "+projectID+" not found")
	}
	if p.Team.Has(u.ID) || !a.store.JoinProject(ctx, projectID, u.ID) {
		return actionErr(CodeAlreadyDone, "join project", "already a member")
	}
	a.host.NotificationOccurred(host.NotifySuccess)
	a.refresh(router.Projects{})
	return nil
}

// Delete removes one of the user's own items after confirmation. Returns
// false when the user declined.
func (a *App) Delete(ctx context.Context, kind content.Kind, id string) (bool, error) {
	u, err := a.requireUser("delete", "delete")
	if err != nil {
		return false, err
	}
	it, ok := a.store.GetByID(kind, id)
	if !ok {
		return false, actionErr(CodeNotFound, "delete", fmt.Sprintf("%s %s not found", kind.Singular(), id))
	}
	if it.Base().AuthorID != u.ID {
		a.host.ShowAlert("You can only delete your own posts.")
		return false, actionErr(CodeForbidden, "delete", "not the author")
	}
	if !a.host.ShowConfirm(fmt.Sprintf("Delete this %s?", kind.Singular())) {
		return false, nil
	}

	a.store.Delete(ctx, kind, id)
	slog.Info("item deleted", "kind", kind, "id", id)
	if rt := listRoute(kind); rt != nil {
		a.router.Go(rt, true)
	}
	return true, nil
}

// Share opens the host share sheet for an idea, petition or poll.
func (a *App) Share(kind content.Kind, id string) error {
	if detailRoute(kind, id) == nil {
		return actionErr(CodeNotFound, "share", "cannot share "+string(kind))
	}
	it, ok := a.store.GetByID(kind, id)
	if !ok {
		return actionErr(CodeNotFound, "share", fmt.Sprintf("%s %s not found", kind.Singular(), id))
	}
	singular := kind.Singular()
	text := fmt.Sprintf(`Check out this %s on CommunityVoice: "%s"`, singular, content.Title(it))
	link := a.shareBase + "#" + router.Path(detailRoute(kind, id))
	a.host.Share(link, text)
	a.host.ImpactOccurred(host.ImpactLight)
	return nil
}

// ShareApp shares the app itself.
func (a *App) ShareApp() {
	a.host.Share(a.shareBase, ShareAppText)
}

// Search re-renders the list of kind filtered by term once typing has
// paused. Only the last term of a burst is rendered, and only if the
// list is still on screen.
func (a *App) Search(kind content.Kind, term string) {
	if _, searchable := listTexts[kind]; !searchable {
		slog.Debug("search ignored: collection has no search box", "kind", kind)
		return
	}
	want := listRoute(kind)
	a.search.Trigger(func() {
		a.router.Post(func() {
			if a.route == nil || router.Path(a.route) != router.Path(want) {
				slog.Debug("search dropped: list no longer shown", "kind", kind)
				return
			}
			a.renderList(kind, term)
		})
	})
}

// SetPreferences merges up into the stored preferences. Turning location
// on asks the host for a position once; if that fails the preference is
// switched back off.
func (a *App) SetPreferences(ctx context.Context, up content.PreferencesUpdate) content.Preferences {
	prefs := a.store.UpdatePreferences(ctx, up)
	a.host.ImpactOccurred(host.ImpactLight)
	if up.Theme != nil {
		slog.Info("theme changed", "theme", *up.Theme)
	}

	a.refresh(router.Profile{})

	if up.LocationEnabled != nil && *up.LocationEnabled {
		a.locate("enable location", func(_ host.Coordinates, err error) {
			if err != nil {
				a.host.ShowAlert(LocationDeniedMessage)
				off := false
				a.store.UpdatePreferences(a.ctx, content.PreferencesUpdate{LocationEnabled: &off})
				a.refresh(router.Profile{})
				return
			}
			a.host.ShowAlert(LocationGrantedMessage)
		})
	}
	return prefs
}

// locate requests a position on its own goroutine and hands the result to
// done on the router loop. The result is dropped if the view that asked
// has been replaced in the meantime.
func (a *App) locate(action string, done func(host.Coordinates, error)) {
	viewCtx := a.viewCtx
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		coords, err := a.host.RequestLocation(viewCtx)
		a.router.Post(func() {
			if viewCtx.Err() != nil {
				slog.Info("location result discarded: view changed", "action", action)
				return
			}
			if err != nil {
				slog.Warn("location request failed", "action", action, "error", err)
			}
			done(coords, err)
		})
	}()
}
