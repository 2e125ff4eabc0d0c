package content

import (
	"encoding/json"
	"fmt"
)

// Collections is the JSON shape shared by seed documents and persisted
// state: one array per kind.
type Collections struct {
	Ideas     []*Idea     `json:"ideas"`
	Petitions []*Petition `json:"petitions"`
	Polls     []*Poll     `json:"polls"`
	Projects  []*Project  `json:"projects"`
}

// Items returns the collection for kind as a slice of Item.
// Unknown kinds yield nil.
func (c *Collections) Items(kind Kind) []Item {
	switch kind {
	case KindIdeas:
		return toItems(c.Ideas)
	case KindPetitions:
		return toItems(c.Petitions)
	case KindPolls:
		return toItems(c.Polls)
	case KindProjects:
		return toItems(c.Projects)
	default:
		return nil
	}
}

// Set replaces the collection for kind. Items of the wrong variant are
// rejected.
func (c *Collections) Set(kind Kind, items []Item) error {
	var err error
	switch kind {
	case KindIdeas:
		c.Ideas, err = fromItems[*Idea](items)
	case KindPetitions:
		c.Petitions, err = fromItems[*Petition](items)
	case KindPolls:
		c.Polls, err = fromItems[*Poll](items)
	case KindProjects:
		c.Projects, err = fromItems[*Project](items)
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
	if err != nil {
		return fmt.Errorf("collection %s: %w", kind, err)
	}
	return nil
}

// Check validates identity and membership invariants that a schema
// cannot express: unique non-empty ids per collection, unique option ids
// per poll and consistent poll votes.
func (c *Collections) Check() error {
	for _, kind := range Kinds {
		seen := make(map[string]bool)
		for i, it := range c.Items(kind) {
			id := it.Base().ID
			if id == "" {
				return fmt.Errorf("%s[%d]: missing id", kind, i)
			}
			if seen[id] {
				return fmt.Errorf("%s[%d]: duplicate id %q", kind, i, id)
			}
			seen[id] = true
		}
	}
	for _, kind := range Kinds {
		for _, it := range c.Items(kind) {
			if err := Validate(it); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode parses a JSON document into collections.
func Decode(data []byte) (Collections, error) {
	var c Collections
	if err := json.Unmarshal(data, &c); err != nil {
		return Collections{}, fmt.Errorf("decode collections: %w", err)
	}
	return c, nil
}

func toItems[T Item](xs []T) []Item {
	out := make([]Item, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func fromItems[T Item](items []Item) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, it := range items {
		v, ok := it.(T)
		if !ok {
			return nil, fmt.Errorf("item %d has type %T", i, it)
		}
		out = append(out, v)
	}
	return out, nil
}
