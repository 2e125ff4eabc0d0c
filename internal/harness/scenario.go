package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/communityvoice/internal/app"
	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
)

// Scenario is a scripted session.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are named
	// after it.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// User is the host identity. Nil starts without one.
	User *host.User `yaml:"user,omitempty"`

	// Fragment is the address the session starts at. Empty opens the
	// default route.
	Fragment string `yaml:"fragment,omitempty"`

	// Location, when set, is returned by location requests; otherwise
	// they fail as unavailable.
	Location *host.Coordinates `yaml:"location,omitempty"`

	// PopupAnswer is the button pressed on permission popups. Default:
	// the first button ("allow").
	PopupAnswer string `yaml:"popup_answer,omitempty"`

	// Confirm answers every confirm dialog. Default: yes.
	Confirm *bool `yaml:"confirm,omitempty"`

	AllowAnonymous bool `yaml:"allow_anonymous,omitempty"`

	Steps []Step `yaml:"steps"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Step is one user interaction. Exactly one action field is set.
type Step struct {
	// Navigate opens a route path such as "ideaDetail?id=idea-1".
	Navigate string `yaml:"navigate,omitempty"`
	// Replace resets the history with the navigation.
	Replace bool `yaml:"replace,omitempty"`

	// Back presses the host back button.
	Back bool `yaml:"back,omitempty"`

	// External changes the address fragment as the user would by
	// editing the address bar.
	External *string `yaml:"external,omitempty"`

	Upvote   string       `yaml:"upvote,omitempty"`
	Sign     string       `yaml:"sign,omitempty"`
	Vote     *VoteStep    `yaml:"vote,omitempty"`
	Comment  *CommentStep `yaml:"comment,omitempty"`
	Search   *SearchStep  `yaml:"search,omitempty"`
	Submit   *SubmitStep  `yaml:"submit,omitempty"`
	Login    *host.User   `yaml:"login,omitempty"`
	Prefs    *PrefsStep   `yaml:"preferences,omitempty"`
	Share    *ItemRef     `yaml:"share,omitempty"`
	Delete   *ItemRef     `yaml:"delete,omitempty"`
	Join     string       `yaml:"join,omitempty"`
	ShareApp bool         `yaml:"share_app,omitempty"`

	// Reject is the error code the action must fail with.
	Reject app.ErrorCode `yaml:"reject,omitempty"`
}

// VoteStep votes for Option in Poll.
type VoteStep struct {
	Poll   string `yaml:"poll"`
	Option string `yaml:"option"`
}

// ItemRef names an item of a collection.
type ItemRef struct {
	Kind content.Kind `yaml:"kind"`
	ID   string       `yaml:"id"`
}

// CommentStep comments on an item.
type CommentStep struct {
	Kind content.Kind `yaml:"kind"`
	ID   string       `yaml:"id"`
	Text string       `yaml:"text"`
}

// SearchStep types Term into the search box of a list.
type SearchStep struct {
	Kind content.Kind `yaml:"kind"`
	Term string       `yaml:"term"`
}

// SubmitStep fills the open creation form and presses the main button.
// Exactly one draft is set.
type SubmitStep struct {
	Idea     *app.IdeaDraft     `yaml:"idea,omitempty"`
	Petition *app.PetitionDraft `yaml:"petition,omitempty"`
	Poll     *app.PollDraft     `yaml:"poll,omitempty"`
}

// PrefsStep changes preferences; unset fields are left alone.
type PrefsStep struct {
	Notifications *bool          `yaml:"notifications,omitempty"`
	Location      *bool          `yaml:"location,omitempty"`
	Theme         *content.Theme `yaml:"theme,omitempty"`
}

// Expect is checked after the last step.
type Expect struct {
	// Stack is the expected history, bottom first.
	Stack []string `yaml:"stack,omitempty"`

	// View is the view name of the last rendered page.
	View string `yaml:"view,omitempty"`

	// TraceContains lists substrings that must appear in the trace.
	TraceContains []string `yaml:"trace_contains,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func validateStep(st Step) error {
	actions := st.actions()
	switch len(actions) {
	case 0:
		return fmt.Errorf("no action")
	case 1:
	default:
		return fmt.Errorf("multiple actions: %s", strings.Join(actions, ", "))
	}

	if st.Replace && st.Navigate == "" {
		return fmt.Errorf("replace is only valid with navigate")
	}
	if st.Reject != "" {
		switch actions[0] {
		case "navigate", "back", "external", "search", "submit", "login", "preferences", "share_app":
			return fmt.Errorf("%s cannot be rejected", actions[0])
		}
	}
	if sub := st.Submit; sub != nil {
		n := 0
		for _, set := range []bool{sub.Idea != nil, sub.Petition != nil, sub.Poll != nil} {
			if set {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("submit needs exactly one of idea, petition or poll")
		}
	}
	for _, ref := range []struct {
		name string
		kind content.Kind
		set  bool
	}{
		{"comment", kindOf(st.Comment), st.Comment != nil},
		{"search", searchKind(st.Search), st.Search != nil},
		{"share", refKind(st.Share), st.Share != nil},
		{"delete", refKind(st.Delete), st.Delete != nil},
	} {
		if ref.set && !ref.kind.Valid() {
			return fmt.Errorf("%s: unknown collection %q", ref.name, ref.kind)
		}
	}
	return nil
}

// actions lists the names of the action fields that are set.
func (st Step) actions() []string {
	var names []string
	add := func(name string, set bool) {
		if set {
			names = append(names, name)
		}
	}
	add("navigate", st.Navigate != "")
	add("back", st.Back)
	add("external", st.External != nil)
	add("upvote", st.Upvote != "")
	add("sign", st.Sign != "")
	add("vote", st.Vote != nil)
	add("comment", st.Comment != nil)
	add("search", st.Search != nil)
	add("submit", st.Submit != nil)
	add("login", st.Login != nil)
	add("preferences", st.Prefs != nil)
	add("share", st.Share != nil)
	add("delete", st.Delete != nil)
	add("join", st.Join != "")
	add("share_app", st.ShareApp)
	return names
}

func kindOf(c *CommentStep) content.Kind {
	if c == nil {
		return ""
	}
	return c.Kind
}

func searchKind(s *SearchStep) content.Kind {
	if s == nil {
		return ""
	}
	return s.Kind
}

func refKind(r *ItemRef) content.Kind {
	if r == nil {
		return ""
	}
	return r.Kind
}
