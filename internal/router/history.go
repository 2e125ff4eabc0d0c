package router

import "maps"

// Entry is one visited path. State holds the params the path was built
// from.
type Entry struct {
	Path  string
	State map[string]string
}

// Stack is the ordered navigation history. The last entry is the
// current view.
type Stack struct {
	entries []Entry
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Top returns the current entry.
func (s *Stack) Top() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Push appends e.
func (s *Stack) Push(e Entry) {
	s.entries = append(s.entries, e)
}

// Pop removes the top entry and returns the new top. It refuses to pop
// the last remaining entry.
func (s *Stack) Pop() (Entry, bool) {
	if len(s.entries) <= 1 {
		return Entry{}, false
	}
	s.entries[len(s.entries)-1] = Entry{}
	s.entries = s.entries[:len(s.entries)-1]
	return s.entries[len(s.entries)-1], true
}

// Reset replaces the whole history with e.
func (s *Stack) Reset(e Entry) {
	clear(s.entries)
	s.entries = append(s.entries[:0], e)
}

// Paths returns the path of every entry, bottom first.
func (s *Stack) Paths() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Path
	}
	return out
}

// Entries returns a copy of the history, bottom first.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Path: e.Path, State: maps.Clone(e.State)}
	}
	return out
}
