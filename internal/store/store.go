package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
	"github.com/roach88/communityvoice/internal/seed"
	"github.com/roach88/communityvoice/internal/storage"
)

// SaveFailedMessage is the alert shown when state could not be saved.
const SaveFailedMessage = "Could not save data. Storage might be full."

// ErrNotFound is returned by Update when no item has the given id.
var ErrNotFound = errors.New("store: item not found")

// Origin reports where Initialize took the state from.
type Origin int

const (
	// OriginEmpty means the default empty state is in use.
	OriginEmpty Origin = iota
	// OriginPersisted means previously saved state was loaded.
	OriginPersisted
	// OriginSeed means storage was empty and the seed was loaded and saved.
	OriginSeed
)

func (o Origin) String() string {
	switch o {
	case OriginPersisted:
		return "persisted"
	case OriginSeed:
		return "seed"
	default:
		return "empty"
	}
}

// state is the persisted document.
type state struct {
	User        *content.UserProfile `json:"user"`
	Preferences content.Preferences  `json:"preferences"`
	content.Collections
}

func defaultState() state {
	return state{Preferences: content.DefaultPreferences()}
}

// Store owns all domain data. See the package documentation for the
// durability and ownership rules.
type Store struct {
	backend storage.Backend
	seed    seed.Source
	key     string
	ids     IDGenerator
	now     func() time.Time
	alerter host.Alerter
	haptics host.Haptics

	state state
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithNow sets the time source used for createdAt and updatedAt.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithAlerter sets where save failures are reported.
func WithAlerter(a host.Alerter) Option {
	return func(s *Store) {
		s.alerter = a
	}
}

// WithHaptics sets the haptic feedback played after writes.
func WithHaptics(h host.Haptics) Option {
	return func(s *Store) {
		s.haptics = h
	}
}

// WithKey overrides the storage key. Default: storage.DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// New creates a Store over backend. src is consulted by Initialize only
// when the backend holds no state; nil means no seed.
//
// The store starts in the empty default state; call Initialize to load.
func New(backend storage.Backend, src seed.Source, opts ...Option) *Store {
	if src == nil {
		src = seed.None
	}
	s := &Store{
		backend: backend,
		seed:    src,
		key:     storage.DefaultKey,
		ids:     UUIDv7Generator{},
		now:     time.Now,
		alerter: silent{},
		haptics: silent{},
		state:   defaultState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads persisted state. If storage is empty the seed is
// loaded and saved at once. On any failure the store falls back to the
// empty default state; Initialize itself never fails.
func (s *Store) Initialize(ctx context.Context) Origin {
	blob, ok, err := s.backend.Load(ctx, s.key)
	if err != nil {
		slog.Error("load state failed, starting empty", "key", s.key, "error", err)
		s.state = defaultState()
		return OriginEmpty
	}

	if ok {
		st, err := decodeState(blob)
		if err != nil {
			slog.Error("persisted state unreadable, starting empty", "key", s.key, "error", err)
			s.state = defaultState()
			return OriginEmpty
		}
		s.state = st
		slog.Info("state loaded", "key", s.key,
			"ideas", len(st.Ideas),
			"petitions", len(st.Petitions),
			"polls", len(st.Polls),
			"projects", len(st.Projects),
		)
		return OriginPersisted
	}

	c, err := s.seed.Fetch(ctx)
	if err != nil {
		slog.Warn("seed unavailable, starting empty", "error", err)
		s.state = defaultState()
		return OriginEmpty
	}
	// Keep any user or preferences set before initialization.
	s.state.Collections = c
	s.persist(ctx)
	slog.Info("state seeded", "key", s.key, "ideas", len(c.Ideas), "petitions", len(c.Petitions), "polls", len(c.Polls))
	return OriginSeed
}

func decodeState(blob []byte) (state, error) {
	st := defaultState()
	if err := json.Unmarshal(blob, &st); err != nil {
		return state{}, fmt.Errorf("decode state: %w", err)
	}
	if !st.Preferences.Theme.Valid() {
		st.Preferences.Theme = content.ThemeAuto
	}
	if err := st.Check(); err != nil {
		return state{}, fmt.Errorf("check state: %w", err)
	}
	return st, nil
}

// persist saves the whole state. Failures are logged and alerted but
// never undo the in-memory change.
func (s *Store) persist(ctx context.Context) {
	blob, err := json.Marshal(s.state)
	if err == nil {
		err = s.backend.Save(ctx, s.key, blob)
	}
	if err != nil {
		slog.Error("save state failed", "key", s.key, "error", err)
		s.alerter.ShowAlert(SaveFailedMessage)
	}
}

// Snapshot returns the state document as indented JSON.
func (s *Store) Snapshot() ([]byte, error) {
	return json.MarshalIndent(s.state, "", "  ")
}

// Reset replaces the state with the empty default and saves it.
func (s *Store) Reset(ctx context.Context) {
	s.state = defaultState()
	s.persist(ctx)
}

// silent discards alerts and haptics.
type silent struct{}

func (silent) ShowAlert(string) {}

func (silent) ImpactOccurred(host.ImpactStyle) {}

func (silent) NotificationOccurred(host.NotificationType) {}
