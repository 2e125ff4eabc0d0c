package router

import "strings"

// Route names.
const (
	NameIdeas          = "ideas"
	NameIdeaDetail     = "ideaDetail"
	NameNewIdea        = "newIdea"
	NamePetitions      = "petitions"
	NamePetitionDetail = "petitionDetail"
	NameNewPetition    = "newPetition"
	NamePolls          = "polls"
	NamePollDetail     = "pollDetail"
	NameNewPoll        = "newPoll"
	NameProjects       = "projects"
	NameProfile        = "profile"
)

// Route is a resolved view. The set of variants is closed; dispatchers
// switch over the concrete types below.
type Route interface {
	// Name returns the route name used in paths.
	Name() string
	route()
}

type (
	Ideas          struct{}
	IdeaDetail     struct{ ID string }
	NewIdea        struct{}
	Petitions      struct{}
	PetitionDetail struct{ ID string }
	NewPetition    struct{}
	Polls          struct{}
	PollDetail     struct{ ID string }
	NewPoll        struct{}
	Projects       struct{}
	Profile        struct{}

	// NotFound is any path whose name is not a known route.
	NotFound struct {
		Requested string
		Params    map[string]string
	}
)

func (Ideas) Name() string          { return NameIdeas }
func (IdeaDetail) Name() string     { return NameIdeaDetail }
func (NewIdea) Name() string        { return NameNewIdea }
func (Petitions) Name() string      { return NamePetitions }
func (PetitionDetail) Name() string { return NamePetitionDetail }
func (NewPetition) Name() string    { return NameNewPetition }
func (Polls) Name() string          { return NamePolls }
func (PollDetail) Name() string     { return NamePollDetail }
func (NewPoll) Name() string        { return NameNewPoll }
func (Projects) Name() string       { return NameProjects }
func (Profile) Name() string        { return NameProfile }
func (r NotFound) Name() string     { return r.Requested }

func (Ideas) route()          {}
func (IdeaDetail) route()     {}
func (NewIdea) route()        {}
func (Petitions) route()      {}
func (PetitionDetail) route() {}
func (NewPetition) route()    {}
func (Polls) route()          {}
func (PollDetail) route()     {}
func (NewPoll) route()        {}
func (Projects) route()       {}
func (Profile) route()        {}
func (NotFound) route()       {}

// Resolve maps a route name and its params to a Route. Unknown names
// resolve to NotFound; a detail route without an id still resolves and
// leaves the missing item to the view.
func Resolve(name string, params map[string]string) Route {
	id := params["id"]
	switch name {
	case NameIdeas:
		return Ideas{}
	case NameIdeaDetail:
		return IdeaDetail{ID: id}
	case NameNewIdea:
		return NewIdea{}
	case NamePetitions:
		return Petitions{}
	case NamePetitionDetail:
		return PetitionDetail{ID: id}
	case NameNewPetition:
		return NewPetition{}
	case NamePolls:
		return Polls{}
	case NamePollDetail:
		return PollDetail{ID: id}
	case NameNewPoll:
		return NewPoll{}
	case NameProjects:
		return Projects{}
	case NameProfile:
		return Profile{}
	default:
		return NotFound{Requested: name, Params: params}
	}
}

// Params returns the path params of r, or nil.
func Params(r Route) map[string]string {
	switch v := r.(type) {
	case IdeaDetail:
		return map[string]string{"id": v.ID}
	case PetitionDetail:
		return map[string]string{"id": v.ID}
	case PollDetail:
		return map[string]string{"id": v.ID}
	case NotFound:
		return v.Params
	default:
		return nil
	}
}

// Path returns the canonical path of r.
func Path(r Route) string {
	return FormatPath(r.Name(), Params(r))
}

// ActiveTab returns the tab highlighted for a route name: the part before
// the first "/", so "ideas/new" highlights "ideas".
func ActiveTab(name string) string {
	tab, _, _ := strings.Cut(name, "/")
	return tab
}

// Tab returns the bottom-bar tab that owns r. Detail and form views belong
// to their list; unknown routes fall back to ActiveTab.
func Tab(r Route) string {
	switch r.(type) {
	case Ideas, IdeaDetail, NewIdea:
		return NameIdeas
	case Petitions, PetitionDetail, NewPetition:
		return NamePetitions
	case Polls, PollDetail, NewPoll:
		return NamePolls
	case Projects:
		return NameProjects
	case Profile:
		return NameProfile
	default:
		return ActiveTab(r.Name())
	}
}
