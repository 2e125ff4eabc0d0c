package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// UserID identifies a user. Host identities are numeric; they are kept
// in their base-10 string form so the anonymous sentinel fits the same type.
type UserID string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or a number: %w", err)
	}
	*u = UserID(n.String())
	return nil
}

// UserIDFromInt formats a numeric host id.
func UserIDFromInt(id int64) UserID {
	return UserID(strconv.FormatInt(id, 10))
}

// MemberSet records which users did something (upvoted, signed, voted).
// Insertion order is kept; duplicates are never stored.
type MemberSet []UserID

// Has reports whether u is a member.
func (s MemberSet) Has(u UserID) bool {
	return slices.Contains(s, u)
}

// Len returns the number of members.
func (s MemberSet) Len() int {
	return len(s)
}

// Add inserts u. Returns false if u was already a member.
func (s *MemberSet) Add(u UserID) bool {
	if s.Has(u) {
		return false
	}
	*s = append(*s, u)
	return true
}

// Remove deletes u. Returns false if u was not a member.
func (s *MemberSet) Remove(u UserID) bool {
	i := slices.Index(*s, u)
	if i < 0 {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// Toggle flips membership of u and returns the resulting membership.
func (s *MemberSet) Toggle(u UserID) bool {
	if s.Remove(u) {
		return false
	}
	*s = append(*s, u)
	return true
}

// Dedup returns the set with repeated ids dropped, keeping first
// occurrences in order. A nil set stays nil.
func (s MemberSet) Dedup() MemberSet {
	if s == nil {
		return nil
	}
	out := make(MemberSet, 0, len(s))
	for _, u := range s {
		out.Add(u)
	}
	return out
}

// MarshalJSON encodes an empty set as [] rather than null.
func (s MemberSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]UserID(s))
}

// UnmarshalJSON decodes a JSON array, dropping repeated ids.
func (s *MemberSet) UnmarshalJSON(data []byte) error {
	var ids []UserID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = MemberSet(ids).Dedup()
	if *s == nil {
		*s = MemberSet{}
	}
	return nil
}

// UserProfile is the cached identity supplied by the host.
// It is a snapshot; it is not re-synced unless set again.
type UserProfile struct {
	ID        UserID `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photoUrl,omitempty"`
}

// DisplayName joins first and last name.
func (u UserProfile) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Theme selects the colour scheme.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is one of auto, light or dark.
func (t Theme) Valid() bool {
	return t == ThemeAuto || t == ThemeLight || t == ThemeDark
}

// Preferences is the small mutable settings record.
type Preferences struct {
	Notifications   bool  `json:"notifications"`
	LocationEnabled bool  `json:"locationEnabled"`
	Theme           Theme `json:"theme"`
}

// DefaultPreferences returns notifications on, location off, theme auto.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, LocationEnabled: false, Theme: ThemeAuto}
}

// PreferencesUpdate is a shallow patch; nil fields are left untouched.
type PreferencesUpdate struct {
	Notifications   *bool
	LocationEnabled *bool
	Theme           *Theme
}

// Apply merges the non-nil fields of up into p.
func (p Preferences) Apply(up PreferencesUpdate) Preferences {
	if up.Notifications != nil {
		p.Notifications = *up.Notifications
	}
	if up.LocationEnabled != nil {
		p.LocationEnabled = *up.LocationEnabled
	}
	if up.Theme != nil {
		p.Theme = *up.Theme
	}
	return p
}
