package content

import (
	"fmt"
	"strings"
	"time"
)

// Kind names a content collection.
type Kind string

const (
	KindIdeas     Kind = "ideas"
	KindPetitions Kind = "petitions"
	KindPolls     Kind = "polls"
	KindProjects  Kind = "projects"
)

// Kinds lists every collection in persistence order.
var Kinds = []Kind{KindIdeas, KindPetitions, KindPolls, KindProjects}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Singular returns the item noun for the collection ("idea" for ideas).
func (k Kind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

// Anonymous authorship used when no identity is cached.
const (
	AnonymousID   UserID = "anonymous"
	AnonymousName        = "Anonymous"
)

// Item is implemented by every content variant.
//
// Base is promoted from the embedded Record, so only Kind and
// SearchFields are written per variant.
type Item interface {
	Base() *Record
	Kind() Kind
	// SearchFields returns the free-text fields matched by search
	// (title/description for most variants, the question for polls).
	SearchFields() []string
}

// Record holds the fields shared by all content variants.
type Record struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt,omitzero"`
	AuthorID   UserID    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Comments   []Comment `json:"comments"`
}

// Base returns the record itself. Promoted to every variant.
func (r *Record) Base() *Record {
	return r
}

// Comment is a single entry in an item's comment thread.
// Comments are never edited or deleted.
type Comment struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Location is an optional place attached to an idea.
type Location struct {
	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both coordinates are set.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// Idea is a community suggestion that users can upvote.
type Idea struct {
	Record
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Location    *Location `json:"location,omitempty"`
	Upvotes     MemberSet `json:"upvotes"`
}

func (*Idea) Kind() Kind { return KindIdeas }

func (i *Idea) SearchFields() []string {
	return []string{i.Title, i.Description}
}

// MinTargetSignatures is the smallest accepted petition target.
const MinTargetSignatures = 10

// Petition collects at most one signature per user.
type Petition struct {
	Record
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	TargetSignatures int       `json:"targetSignatures"`
	Signatures       MemberSet `json:"signatures"`
}

func (*Petition) Kind() Kind { return KindPetitions }

func (p *Petition) SearchFields() []string {
	return []string{p.Title, p.Description}
}

// Poll limits.
const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

// PollOption is one answer of a poll.
type PollOption struct {
	ID    string    `json:"id"`
	Text  string    `json:"text"`
	Votes MemberSet `json:"votes"`
}

// Poll allows every user a single vote across all of its options.
type Poll struct {
	Record
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	VotedBy  MemberSet    `json:"votedBy"`
}

func (*Poll) Kind() Kind { return KindPolls }

func (p *Poll) SearchFields() []string {
	return []string{p.Question}
}

// Option returns the option with the given id.
func (p *Poll) Option(id string) (*PollOption, bool) {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// TotalVotes sums the votes of every option.
func (p *Poll) TotalVotes() int {
	total := 0
	for _, opt := range p.Options {
		total += opt.Votes.Len()
	}
	return total
}

// Share formats the option's share of all votes with one decimal.
// Returns "0" when the poll has no votes yet.
func (p *Poll) Share(opt PollOption) string {
	total := p.TotalVotes()
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(opt.Votes.Len())/float64(total)*100)
}

// Consistent checks the single-vote invariant: every voter in VotedBy
// appears in exactly one option, and no option holds a voter missing
// from VotedBy.
func (p *Poll) Consistent() error {
	seen := make(map[UserID]string)
	for _, opt := range p.Options {
		for _, u := range opt.Votes {
			if prev, dup := seen[u]; dup {
				return fmt.Errorf("user %s voted for both %q and %q", u, prev, opt.ID)
			}
			seen[u] = opt.ID
		}
	}
	if len(seen) != p.VotedBy.Len() {
		return fmt.Errorf("votedBy has %d users but options hold %d voters", p.VotedBy.Len(), len(seen))
	}
	for _, u := range p.VotedBy {
		if _, ok := seen[u]; !ok {
			return fmt.Errorf("user %s is in votedBy without an option vote", u)
		}
	}
	return nil
}

// ProjectStatus tracks a project's progress.
type ProjectStatus string

const (
	ProjectProposed ProjectStatus = "proposed"
	ProjectActive   ProjectStatus = "active"
	ProjectDone     ProjectStatus = "done"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	return s == ProjectProposed || s == ProjectActive || s == ProjectDone
}

// ProjectTask is a unit of work tracked by a project.
type ProjectTask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Project is a community project with a team of members.
type Project struct {
	Record
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Team        MemberSet     `json:"team"`
	Tasks       []ProjectTask `json:"tasks"`
}

func (*Project) Kind() Kind { return KindProjects }

func (p *Project) SearchFields() []string {
	return []string{p.Title, p.Description}
}

// New returns an empty item of the given kind, or nil for unknown kinds.
func New(kind Kind) Item {
	switch kind {
	case KindIdeas:
		return &Idea{}
	case KindPetitions:
		return &Petition{}
	case KindPolls:
		return &Poll{}
	case KindProjects:
		return &Project{}
	default:
		return nil
	}
}

// Title returns the headline of an item: its title, or the question
// for polls.
func Title(it Item) string {
	switch v := it.(type) {
	case *Idea:
		return v.Title
	case *Petition:
		return v.Title
	case *Poll:
		return v.Question
	case *Project:
		return v.Title
	default:
		return ""
	}
}

// Normalize drops repeated ids from every membership set of it.
func Normalize(it Item) {
	switch v := it.(type) {
	case *Idea:
		v.Upvotes = v.Upvotes.Dedup()
	case *Petition:
		v.Signatures = v.Signatures.Dedup()
	case *Poll:
		v.VotedBy = v.VotedBy.Dedup()
		for i := range v.Options {
			v.Options[i].Votes = v.Options[i].Votes.Dedup()
		}
	case *Project:
		v.Team = v.Team.Dedup()
	}
}

// Validate checks the invariants of a single item that Collections.Check
// enforces on load: polls need unique option ids and consistent votes.
func Validate(it Item) error {
	p, ok := it.(*Poll)
	if !ok {
		return nil
	}
	opts := make(map[string]bool)
	for _, opt := range p.Options {
		if opts[opt.ID] {
			return fmt.Errorf("poll %s: duplicate option id %q", p.ID, opt.ID)
		}
		opts[opt.ID] = true
	}
	if err := p.Consistent(); err != nil {
		return fmt.Errorf("poll %s: %w", p.ID, err)
	}
	return nil
}
