package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
	"github.com/roach88/communityvoice/internal/router"
)

// Draft is the state of one of the creation forms.
type Draft interface {
	// Form returns the route of the form the draft belongs to.
	Form() router.Route
}

// IdeaDraft is the new-idea form. Tags is the comma-separated input.
type IdeaDraft struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Tags         string `yaml:"tags"`
	LocationName string `yaml:"location_name"`
	UseLocation  bool   `yaml:"use_location"`
}

// PetitionDraft is the new-petition form.
type PetitionDraft struct {
	Title            string `yaml:"title"`
	Description      string `yaml:"description"`
	TargetSignatures int    `yaml:"target_signatures"`
}

// PollDraft is the new-poll form.
type PollDraft struct {
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
}

func (IdeaDraft) Form() router.Route     { return router.NewIdea{} }
func (PetitionDraft) Form() router.Route { return router.NewPetition{} }
func (PollDraft) Form() router.Route     { return router.NewPoll{} }

// Fill stores d as the content of the open form; the main button submits
// it. Loop-only.
func (a *App) Fill(d Draft) {
	a.draft = d
}

func (a *App) showMainButton(label string) {
	a.host.ShowMainButton(label, func() {
		a.router.Post(a.submitForm)
	})
}

// submitForm submits the draft of the form on screen. An unfilled form is
// submitted empty and fails validation like a blank page would.
func (a *App) submitForm() {
	var err error
	switch a.route.(type) {
	case router.NewIdea:
		d, _ := a.draft.(IdeaDraft)
		err = a.SubmitIdea(a.ctx, d)
	case router.NewPetition:
		d, _ := a.draft.(PetitionDraft)
		err = a.SubmitPetition(a.ctx, d)
	case router.NewPoll:
		d, _ := a.draft.(PollDraft)
		err = a.SubmitPoll(a.ctx, d)
	default:
		slog.Debug("main button pressed outside a form")
		return
	}
	if err != nil {
		slog.Info("submission rejected", "error", err)
	}
}

// requireAuthor enforces the anonymous-submission policy.
func (a *App) requireAuthor(action string) error {
	if a.allowAnonymous {
		return nil
	}
	_, err := a.requireUser(action, "submit")
	return err
}

// reject reports a validation failure to the user.
func (a *App) reject(err *ActionError) error {
	a.host.ShowAlert(err.Message)
	a.host.NotificationOccurred(host.NotifyError)
	return err
}

// SubmitIdea validates d and adds the idea. When d asks for the current
// location and the location preference is on, the position is requested
// first; the idea is then added once the host answers, with or without
// coordinates.
func (a *App) SubmitIdea(ctx context.Context, d IdeaDraft) error {
	a.host.ImpactOccurred(host.ImpactHeavy)
	if err := a.requireAuthor("submit idea"); err != nil {
		return err
	}
	title := strings.TrimSpace(d.Title)
	desc := strings.TrimSpace(d.Description)
	if title == "" {
		return a.reject(validation("submit idea", "title", IdeaRequiredMessage))
	}
	if desc == "" {
		return a.reject(validation("submit idea", "description", IdeaRequiredMessage))
	}

	idea := &content.Idea{
		Title:       title,
		Description: desc,
		Tags:        splitTags(d.Tags),
		Upvotes:     content.MemberSet{},
	}
	name := strings.TrimSpace(d.LocationName)
	if name != "" {
		idea.Location = &content.Location{Name: name}
	}

	if !d.UseLocation || !a.store.GetPreferences().LocationEnabled {
		return a.completeIdea(ctx, idea)
	}

	a.host.ShowLoading()
	a.locate("submit idea", func(c host.Coordinates, err error) {
		if err != nil {
			a.host.ShowAlert(LocationFallbackMessage)
		} else {
			if idea.Location == nil {
				idea.Location = &content.Location{Name: DefaultLocationName}
			}
			idea.Location.Latitude = &c.Latitude
			idea.Location.Longitude = &c.Longitude
		}
		if err := a.completeIdea(a.ctx, idea); err != nil {
			slog.Error("submit idea failed", "error", err)
		}
	})
	return nil
}

func (a *App) completeIdea(ctx context.Context, idea *content.Idea) error {
	if _, err := a.store.Add(ctx, idea); err != nil {
		return err
	}
	a.host.NotificationOccurred(host.NotifySuccess)
	a.host.ShowAlert("Idea submitted successfully!")
	// Replace the history so back does not return to the form.
	a.router.Go(router.IdeaDetail{ID: idea.ID}, true)
	return nil
}

// SubmitPetition validates d and adds the petition.
func (a *App) SubmitPetition(ctx context.Context, d PetitionDraft) error {
	a.host.ImpactOccurred(host.ImpactHeavy)
	if err := a.requireAuthor("submit petition"); err != nil {
		return err
	}
	title := strings.TrimSpace(d.Title)
	desc := strings.TrimSpace(d.Description)
	switch {
	case title == "":
		return a.reject(validation("submit petition", "title", PetitionFieldsMessage))
	case desc == "":
		return a.reject(validation("submit petition", "description", PetitionFieldsMessage))
	case d.TargetSignatures < content.MinTargetSignatures:
		return a.reject(validation("submit petition", "targetSignatures", PetitionFieldsMessage))
	}

	p := &content.Petition{
		Title:            title,
		Description:      desc,
		TargetSignatures: d.TargetSignatures,
		Signatures:       content.MemberSet{},
	}
	if _, err := a.store.Add(ctx, p); err != nil {
		return err
	}
	a.host.NotificationOccurred(host.NotifySuccess)
	a.host.ShowAlert("Petition created successfully!")
	a.router.Go(router.PetitionDetail{ID: p.ID}, true)
	return nil
}

// SubmitPoll validates d and adds the poll. Blank options are dropped
// before counting.
func (a *App) SubmitPoll(ctx context.Context, d PollDraft) error {
	a.host.ImpactOccurred(host.ImpactHeavy)
	if err := a.requireAuthor("submit poll"); err != nil {
		return err
	}
	if len(d.Options) > content.MaxPollOptions {
		return a.reject(validation("submit poll", "options", PollMaxOptionsMessage))
	}
	question := strings.TrimSpace(d.Question)
	var options []content.PollOption
	for _, text := range d.Options {
		if text = strings.TrimSpace(text); text != "" {
			options = append(options, content.PollOption{Text: text, Votes: content.MemberSet{}})
		}
	}
	if question == "" {
		return a.reject(validation("submit poll", "question", PollFieldsMessage))
	}
	if len(options) < content.MinPollOptions {
		return a.reject(validation("submit poll", "options", PollFieldsMessage))
	}

	p := &content.Poll{Question: question, Options: options, VotedBy: content.MemberSet{}}
	if _, err := a.store.Add(ctx, p); err != nil {
		return err
	}
	a.host.NotificationOccurred(host.NotifySuccess)
	a.host.ShowAlert("Poll created successfully!")
	a.router.Go(router.PollDetail{ID: p.ID}, true)
	return nil
}

// splitTags turns "a, b,,c" into [a b c].
func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
