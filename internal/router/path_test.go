package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPath(t *testing.T) {
	tests := []struct {
		name   string
		route  string
		params map[string]string
		want   string
	}{
		{"no params", "ideas", nil, "ideas"},
		{"empty params", "ideas", map[string]string{}, "ideas"},
		{"single param", "ideaDetail", map[string]string{"id": "x"}, "ideaDetail?id=x"},
		{"sorted keys", "search", map[string]string{"b": "2", "a": "1"}, "search?a=1&b=2"},
		{"escaped", "pollDetail", map[string]string{"id": "a&b c"}, "pollDetail?id=a%26b+c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPath(tt.route, tt.params))
		})
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name       string
		fragment   string
		wantName   string
		wantParams map[string]string
	}{
		{"bare", "ideas", "ideas", map[string]string{}},
		{"hash prefix", "#polls", "polls", map[string]string{}},
		{"params", "petitionDetail?id=42", "petitionDetail", map[string]string{"id": "42"}},
		{"empty query", "ideas?", "ideas", map[string]string{}},
		{"decoded", "pollDetail?id=a%26b+c", "pollDetail", map[string]string{"id": "a&b c"}},
		{"last value wins", "x?id=1&id=2", "x", map[string]string{"id": "2"}},
		{"sub path", "ideas/new?draft=1", "ideas/new", map[string]string{"draft": "1"}},
		{"malformed pair skipped", "x?a=%zz&b=2", "x", map[string]string{"b": "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, params := ParsePath(tt.fragment)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, Ideas{}, Resolve("ideas", nil))
	assert.Equal(t, IdeaDetail{ID: "7"}, Resolve("ideaDetail", map[string]string{"id": "7"}))
	assert.Equal(t, PollDetail{}, Resolve("pollDetail", nil))
	assert.Equal(t, NewPetition{}, Resolve("newPetition", nil))
	assert.Equal(t, NotFound{Requested: "nope"}, Resolve("nope", nil))

	for _, rt := range []Route{
		Ideas{}, IdeaDetail{ID: "a"}, NewIdea{}, Petitions{}, PetitionDetail{ID: "b"},
		NewPetition{}, Polls{}, PollDetail{ID: "c"}, NewPoll{}, Projects{}, Profile{},
	} {
		name, params := ParsePath(Path(rt))
		assert.Equal(t, rt, Resolve(name, params), "round trip %s", Path(rt))
	}
}

func TestTab(t *testing.T) {
	assert.Equal(t, "ideas", Tab(IdeaDetail{ID: "1"}))
	assert.Equal(t, "ideas", Tab(NewIdea{}))
	assert.Equal(t, "petitions", Tab(PetitionDetail{}))
	assert.Equal(t, "polls", Tab(NewPoll{}))
	assert.Equal(t, "profile", Tab(Profile{}))
	assert.Equal(t, "ideas", Tab(NotFound{Requested: "ideas/archive"}))

	assert.Equal(t, "ideas", ActiveTab("ideas/new"))
	assert.Equal(t, "polls", ActiveTab("polls"))
	assert.Equal(t, "", ActiveTab(""))
}

func TestStack(t *testing.T) {
	var s Stack
	_, ok := s.Top()
	assert.False(t, ok)

	s.Reset(Entry{Path: "a"})
	s.Push(Entry{Path: "b", State: map[string]string{"id": "1"}})
	assert.Equal(t, []string{"a", "b"}, s.Paths())

	entries := s.Entries()
	entries[1].State["id"] = "changed"
	top, _ := s.Top()
	assert.Equal(t, "1", top.State["id"], "Entries returns copies")

	prev, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, "a", prev.Path)

	_, ok = s.Pop()
	assert.False(t, ok, "the last entry is never popped")
	assert.Equal(t, 1, s.Len())
}

func TestMemoryAddress_NotifiesOnChangeOnly(t *testing.T) {
	a := NewMemoryAddress("ideas")
	var seen []string
	a.Watch(func(f string) { seen = append(seen, f) })

	a.SetFragment("ideas")
	a.SetFragment("polls")
	a.SetFragment("polls")
	a.SetFragment("")

	assert.Equal(t, []string{"polls", ""}, seen)
	assert.Equal(t, []string{"polls", ""}, a.Changes())
	assert.Equal(t, "", a.Fragment())
}
