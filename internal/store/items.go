package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
)

// GetAll returns the collection in insertion order. Unknown kinds yield nil.
func (s *Store) GetAll(kind content.Kind) []content.Item {
	return s.state.Items(kind)
}

// GetByID returns the live item with the given id.
func (s *Store) GetByID(kind content.Kind, id string) (content.Item, bool) {
	for _, it := range s.state.Items(kind) {
		if it.Base().ID == id {
			return it, true
		}
	}
	return nil, false
}

// Idea returns the live idea with the given id.
func (s *Store) Idea(id string) (*content.Idea, bool) {
	return find(s.state.Ideas, id)
}

// Petition returns the live petition with the given id.
func (s *Store) Petition(id string) (*content.Petition, bool) {
	return find(s.state.Petitions, id)
}

// Poll returns the live poll with the given id.
func (s *Store) Poll(id string) (*content.Poll, bool) {
	return find(s.state.Polls, id)
}

// Project returns the live project with the given id.
func (s *Store) Project(id string) (*content.Project, bool) {
	return find(s.state.Projects, id)
}

func find[T content.Item](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.Base().ID == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Add appends it to its collection and returns it.
//
// The id is always freshly assigned. createdAt and the author fields are
// filled only when the caller left them empty; the author is the cached
// user, or the anonymous sentinel when none is cached. Poll options
// without an id get one. Repeated members are dropped. A poll with
// duplicate option ids or inconsistent votes is rejected and nothing is
// saved.
func (s *Store) Add(ctx context.Context, it content.Item) (content.Item, error) {
	if it == nil {
		return nil, errors.New("store: add: nil item")
	}
	kind := it.Kind()
	if !kind.Valid() {
		return nil, fmt.Errorf("store: add: unknown collection %q", kind)
	}

	rec := it.Base()
	rec.ID = s.ids.NewID()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.AuthorID == "" {
		rec.AuthorID, rec.AuthorName = s.author()
	}
	if rec.Comments == nil {
		rec.Comments = []content.Comment{}
	}
	if p, ok := it.(*content.Poll); ok {
		for i := range p.Options {
			if p.Options[i].ID == "" {
				p.Options[i].ID = s.ids.NewID()
			}
		}
	}
	content.Normalize(it)
	if err := content.Validate(it); err != nil {
		return nil, fmt.Errorf("store: add: %w", err)
	}
	if _, dup := s.GetByID(kind, rec.ID); dup {
		return nil, fmt.Errorf("store: add: %s id %q already in use", kind.Singular(), rec.ID)
	}

	if err := s.state.Set(kind, append(s.state.Items(kind), it)); err != nil {
		return nil, fmt.Errorf("store: add: %w", err)
	}
	s.persist(ctx)
	s.haptics.ImpactOccurred(host.ImpactLight)
	slog.Debug("item added", "kind", kind, "id", rec.ID, "author", rec.AuthorID)
	return it, nil
}

func (s *Store) author() (content.UserID, string) {
	if u := s.state.User; u != nil {
		return u.ID, u.DisplayName()
	}
	return content.AnonymousID, content.AnonymousName
}

// Update merges fields into the item, stamps updatedAt and saves.
// Returns ErrNotFound if id is absent. An "id" field is ignored. Fields
// that would break a poll's votes are rejected and nothing is saved.
func (s *Store) Update(ctx context.Context, kind content.Kind, id string, fields content.Fields) (content.Item, error) {
	it, ok := s.GetByID(kind, id)
	if !ok {
		return nil, ErrNotFound
	}
	if err := content.ApplyFields(it, fields); err != nil {
		return nil, fmt.Errorf("store: update %s %s: %w", kind, id, err)
	}
	s.touch(ctx, it)
	return it, nil
}

// touch stamps updatedAt and saves. Every successful write plays a light
// impact.
func (s *Store) touch(ctx context.Context, it content.Item) {
	it.Base().UpdatedAt = s.now()
	s.persist(ctx)
	s.haptics.ImpactOccurred(host.ImpactLight)
}

// Delete removes the item with the given id. State is saved only when
// something was removed.
func (s *Store) Delete(ctx context.Context, kind content.Kind, id string) bool {
	items := s.state.Items(kind)
	kept := make([]content.Item, 0, len(items))
	for _, it := range items {
		if it.Base().ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return false
	}
	if err := s.state.Set(kind, kept); err != nil {
		slog.Error("delete failed", "kind", kind, "id", id, "error", err)
		return false
	}
	s.persist(ctx)
	s.haptics.ImpactOccurred(host.ImpactRigid)
	return true
}

// ToggleUpvote flips user's upvote on the idea and returns whether the
// user has upvoted afterwards. Returns false if the idea does not exist.
//
// This is a toggle, not a set: callers that need a specific result must
// check Upvotes.Has first.
func (s *Store) ToggleUpvote(ctx context.Context, ideaID string, user content.UserID) bool {
	idea, ok := s.Idea(ideaID)
	if !ok {
		return false
	}
	upvoted := idea.Upvotes.Toggle(user)
	s.touch(ctx, idea)
	return upvoted
}

// AddComment appends a comment to the item's thread. Returns false if the
// item does not exist. Text is not validated here.
func (s *Store) AddComment(ctx context.Context, kind content.Kind, itemID, text string, user content.UserID, userName string) (content.Comment, bool) {
	it, ok := s.GetByID(kind, itemID)
	if !ok {
		return content.Comment{}, false
	}
	c := content.Comment{
		ID:        s.ids.NewID(),
		UserID:    user,
		UserName:  userName,
		Text:      text,
		CreatedAt: s.now(),
	}
	rec := it.Base()
	rec.Comments = append(rec.Comments, c)
	s.touch(ctx, it)
	return c, true
}

// SignPetition adds user's signature if not already present. Returns true
// only when a signature was newly added.
func (s *Store) SignPetition(ctx context.Context, petitionID string, user content.UserID) bool {
	p, ok := s.Petition(petitionID)
	if !ok {
		return false
	}
	if !p.Signatures.Add(user) {
		return false
	}
	s.touch(ctx, p)
	return true
}

// VotePoll records user's vote for optionID. Returns false, changing
// nothing, if the poll is missing, the user already voted on any option,
// or the option does not exist. The option's votes and the poll's votedBy
// are updated and saved together.
func (s *Store) VotePoll(ctx context.Context, pollID, optionID string, user content.UserID) bool {
	p, ok := s.Poll(pollID)
	if !ok {
		return false
	}
	if p.VotedBy.Has(user) {
		return false
	}
	opt, ok := p.Option(optionID)
	if !ok {
		return false
	}
	opt.Votes.Add(user)
	p.VotedBy.Add(user)
	s.touch(ctx, p)
	return true
}

// JoinProject adds user to the project team. Returns true only when the
// user newly joined.
func (s *Store) JoinProject(ctx context.Context, projectID string, user content.UserID) bool {
	p, ok := s.Project(projectID)
	if !ok {
		return false
	}
	if !p.Team.Add(user) {
		return false
	}
	s.touch(ctx, p)
	return true
}

// SearchItems returns the items whose title, description or question
// contains term, ignoring case. An empty term returns the whole
// collection in its original order.
func (s *Store) SearchItems(kind content.Kind, term string) []content.Item {
	return content.Filter(s.GetAll(kind), term)
}
