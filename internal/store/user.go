package store

import (
	"context"

	"github.com/roach88/communityvoice/internal/content"
)

// SetCurrentUser caches the user profile and saves it.
func (s *Store) SetCurrentUser(ctx context.Context, u content.UserProfile) {
	s.state.User = &u
	s.persist(ctx)
}

// GetUser returns the cached user profile.
func (s *Store) GetUser() (content.UserProfile, bool) {
	if s.state.User == nil {
		return content.UserProfile{}, false
	}
	return *s.state.User, true
}

// UpdatePreferences shallow-merges up into the preferences, saves, and
// returns the result.
func (s *Store) UpdatePreferences(ctx context.Context, up content.PreferencesUpdate) content.Preferences {
	s.state.Preferences = s.state.Preferences.Apply(up)
	s.persist(ctx)
	return s.state.Preferences
}

// GetPreferences returns the current preferences.
func (s *Store) GetPreferences() content.Preferences {
	return s.state.Preferences
}
