package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/host"
	"github.com/roach88/communityvoice/internal/seed"
	"github.com/roach88/communityvoice/internal/storage"
	"github.com/roach88/communityvoice/internal/testutil"
)

var fixedNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *Store
	backend *storage.Memory
	host    *testutil.FakeHost
}

// newFixture returns an initialized store over an empty memory backend
// with no seed.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := storage.NewMemory()
	h := testutil.NewFakeHost(nil)
	s := New(backend, nil,
		WithIDGenerator(NewSequenceGenerator("id")),
		WithNow(func() time.Time { return fixedNow }),
		WithAlerter(h),
		WithHaptics(h),
	)
	require.Equal(t, OriginEmpty, s.Initialize(context.Background()))
	return &fixture{store: s, backend: backend, host: h}
}

func seedSource(c content.Collections) seed.Source {
	return seed.SourceFunc(func(context.Context) (content.Collections, error) {
		return c, nil
	})
}

func TestInitialize_SeedsAndPersistsWhenEmpty(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend, seed.Embedded())

	origin := s.Initialize(context.Background())

	assert.Equal(t, OriginSeed, origin)
	assert.Equal(t, 1, backend.Saves(), "seed is saved immediately")
	assert.NotEmpty(t, s.GetAll(content.KindIdeas))
	assert.Equal(t, content.DefaultPreferences(), s.GetPreferences())
}

func TestInitialize_LoadsPersistedState(t *testing.T) {
	backend := storage.NewMemory()
	backend.Put(storage.DefaultKey, []byte(`{
		"user": {"id": 5, "firstName": "Ada", "lastName": "", "username": "ada"},
		"preferences": {"theme": "dark"},
		"ideas": [{"id": "i1", "title": "Stored", "upvotes": ["5"]}]
	}`))
	s := New(backend, seed.Embedded())

	assert.Equal(t, OriginPersisted, s.Initialize(context.Background()))
	assert.Equal(t, 0, backend.Saves(), "loading does not save")

	idea, ok := s.Idea("i1")
	require.True(t, ok)
	assert.Equal(t, "Stored", idea.Title)

	u, ok := s.GetUser()
	require.True(t, ok)
	assert.Equal(t, content.UserID("5"), u.ID)

	prefs := s.GetPreferences()
	assert.Equal(t, content.ThemeDark, prefs.Theme)
	assert.True(t, prefs.Notifications, "missing preference keeps its default")
}

func TestInitialize_FallsBackToEmptyState(t *testing.T) {
	tests := []struct {
		name    string
		backend func() *storage.Memory
		seed    seed.Source
	}{
		{
			name: "load error",
			backend: func() *storage.Memory {
				return &storage.Memory{LoadErr: errors.New("disk gone")}
			},
			seed: seed.Embedded(),
		},
		{
			name: "corrupt blob",
			backend: func() *storage.Memory {
				m := storage.NewMemory()
				m.Put(storage.DefaultKey, []byte("{not json"))
				return m
			},
			seed: seed.Embedded(),
		},
		{
			name: "inconsistent poll",
			backend: func() *storage.Memory {
				m := storage.NewMemory()
				m.Put(storage.DefaultKey, []byte(`{"polls":[{"id":"p","options":[{"id":"a","votes":["u"]}],"votedBy":[]}]}`))
				return m
			},
			seed: seed.Embedded(),
		},
		{
			name:    "seed failure",
			backend: storage.NewMemory,
			seed:    seed.None,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := tt.backend()
			s := New(backend, tt.seed)

			assert.Equal(t, OriginEmpty, s.Initialize(context.Background()))
			for _, kind := range content.Kinds {
				assert.Empty(t, s.GetAll(kind), kind)
			}
			assert.Equal(t, content.DefaultPreferences(), s.GetPreferences())
			_, ok := s.GetUser()
			assert.False(t, ok)
		})
	}
}

func TestAdd_ThenGetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetCurrentUser(ctx, content.UserProfile{ID: "42", FirstName: "Ada", LastName: "Lovelace"})

	added, err := f.store.Add(ctx, &content.Idea{
		Title:       "Benches",
		Description: "More seating",
		Tags:        []string{"parks"},
	})
	require.NoError(t, err)

	got, ok := f.store.GetByID(content.KindIdeas, added.Base().ID)
	require.True(t, ok)
	idea := got.(*content.Idea)

	assert.Equal(t, "id-1", idea.ID)
	assert.Equal(t, fixedNow, idea.CreatedAt)
	assert.Equal(t, content.UserID("42"), idea.AuthorID)
	assert.Equal(t, "Ada Lovelace", idea.AuthorName)
	assert.Equal(t, "Benches", idea.Title)
	assert.Equal(t, "More seating", idea.Description)
	assert.Equal(t, []string{"parks"}, idea.Tags)
	assert.Same(t, added, got, "returned records are live references")
}

func TestAdd_AssignsFreshIDAndAnonymousAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.store.Add(ctx, &content.Petition{Record: content.Record{ID: "chosen"}, Title: "A", TargetSignatures: 10})
	require.NoError(t, err)
	b, err := f.store.Add(ctx, &content.Petition{Record: content.Record{ID: "chosen"}, Title: "B", TargetSignatures: 10})
	require.NoError(t, err)

	assert.NotEqual(t, "chosen", a.Base().ID)
	assert.NotEqual(t, a.Base().ID, b.Base().ID)
	assert.Equal(t, content.AnonymousID, a.Base().AuthorID)
	assert.Equal(t, content.AnonymousName, a.Base().AuthorName)
	assert.Len(t, f.store.GetAll(content.KindPetitions), 2)
}

func TestAdd_KeepsCallerCreatedAtAndFillsOptionIDs(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	it, err := f.store.Add(context.Background(), &content.Poll{
		Record:   content.Record{CreatedAt: created},
		Question: "Which?",
		Options:  []content.PollOption{{Text: "A"}, {ID: "keep", Text: "B"}},
	})
	require.NoError(t, err)

	p := it.(*content.Poll)
	assert.Equal(t, created, p.CreatedAt)
	assert.NotEmpty(t, p.Options[0].ID)
	assert.Equal(t, "keep", p.Options[1].ID)
}

func TestAdd_RejectsNil(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Add(context.Background(), nil)
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Idea{Title: "Old"})
	require.NoError(t, err)
	id := it.Base().ID

	updated, err := f.store.Update(ctx, content.KindIdeas, id, content.Fields{"title": "New", "id": "other"})
	require.NoError(t, err)

	idea := updated.(*content.Idea)
	assert.Equal(t, "New", idea.Title)
	assert.Equal(t, id, idea.ID, "ids are immutable")
	assert.Equal(t, fixedNow, idea.UpdatedAt)
	assert.Same(t, it, updated)

	_, err = f.store.Update(ctx, content.KindIdeas, "missing", content.Fields{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_PersistsOnlyOnRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Idea{Title: "Gone soon"})
	require.NoError(t, err)
	saves := f.backend.Saves()

	assert.False(t, f.store.Delete(ctx, content.KindIdeas, "missing"))
	assert.Equal(t, saves, f.backend.Saves())

	assert.True(t, f.store.Delete(ctx, content.KindIdeas, it.Base().ID))
	assert.Equal(t, saves+1, f.backend.Saves())
	assert.Empty(t, f.store.GetAll(content.KindIdeas))
	assert.Equal(t, host.ImpactRigid, f.host.Impacts[len(f.host.Impacts)-1])
}

func TestToggleUpvote_SelfInverse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Idea{Title: "Bikes", Upvotes: content.MemberSet{"u2"}})
	require.NoError(t, err)
	idea := it.(*content.Idea)
	before := append(content.MemberSet(nil), idea.Upvotes...)

	assert.True(t, f.store.ToggleUpvote(ctx, idea.ID, "u1"))
	assert.True(t, idea.Upvotes.Has("u1"))
	assert.False(t, f.store.ToggleUpvote(ctx, idea.ID, "u1"))

	assert.Equal(t, before, idea.Upvotes)
	assert.False(t, f.store.ToggleUpvote(ctx, "missing", "u1"))
}

func TestSignPetition_AtMostOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Petition{Title: "Crosswalk", TargetSignatures: 10})
	require.NoError(t, err)
	id := it.Base().ID

	assert.True(t, f.store.SignPetition(ctx, id, "u1"))
	assert.False(t, f.store.SignPetition(ctx, id, "u1"))
	assert.True(t, f.store.SignPetition(ctx, id, "u2"))
	assert.False(t, f.store.SignPetition(ctx, "missing", "u3"))

	p, _ := f.store.Petition(id)
	assert.Equal(t, content.MemberSet{"u1", "u2"}, p.Signatures)
}

func TestVotePoll_SingleVoteAcrossOptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Poll{
		Question: "Market day?",
		Options:  []content.PollOption{{ID: "sat", Text: "Saturday"}, {ID: "sun", Text: "Sunday"}},
	})
	require.NoError(t, err)
	poll := it.(*content.Poll)
	assert.Equal(t, 0, poll.TotalVotes())

	assert.True(t, f.store.VotePoll(ctx, poll.ID, "sat", "u1"))
	assert.Equal(t, 1, poll.TotalVotes())

	saves := f.backend.Saves()
	assert.False(t, f.store.VotePoll(ctx, poll.ID, "sun", "u1"))
	assert.Equal(t, saves, f.backend.Saves(), "rejected vote is not saved")

	assert.Equal(t, content.MemberSet{"u1"}, poll.VotedBy)
	assert.Equal(t, content.MemberSet{"u1"}, poll.Options[0].Votes)
	assert.Empty(t, poll.Options[1].Votes)
	assert.NoError(t, poll.Consistent())
}

func TestVotePoll_UnknownOptionOrPoll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Poll{
		Question: "Q",
		Options:  []content.PollOption{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
	})
	require.NoError(t, err)
	poll := it.(*content.Poll)

	assert.False(t, f.store.VotePoll(ctx, poll.ID, "zzz", "u1"))
	assert.False(t, poll.VotedBy.Has("u1"), "unknown option leaves votedBy untouched")
	assert.False(t, f.store.VotePoll(ctx, "missing", "a", "u1"))
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Petition{Title: "Trees", TargetSignatures: 50})
	require.NoError(t, err)

	first, ok := f.store.AddComment(ctx, content.KindPetitions, it.Base().ID, "Great idea", "u1", "Ada")
	require.True(t, ok)
	second, ok := f.store.AddComment(ctx, content.KindPetitions, it.Base().ID, "", "u2", "Bob")
	require.True(t, ok, "empty text is accepted at this layer")

	comments := it.Base().Comments
	require.Len(t, comments, 2)
	assert.Equal(t, first, comments[0])
	assert.Equal(t, second, comments[1])
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, fixedNow, first.CreatedAt)

	_, ok = f.store.AddComment(ctx, content.KindPetitions, "missing", "x", "u1", "Ada")
	assert.False(t, ok)
}

func TestJoinProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Project{Title: "Garden", Status: content.ProjectProposed})
	require.NoError(t, err)

	assert.True(t, f.store.JoinProject(ctx, it.Base().ID, "u1"))
	assert.False(t, f.store.JoinProject(ctx, it.Base().ID, "u1"))
	assert.False(t, f.store.JoinProject(ctx, "missing", "u1"))
}

func TestSearchItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, idea := range []*content.Idea{
		{Title: "Benches", Description: "More seating in Central Park"},
		{Title: "Bike lanes", Description: "Protected lanes downtown"},
		{Title: "Park cleanup", Description: "Saturday mornings"},
	} {
		_, err := f.store.Add(ctx, idea)
		require.NoError(t, err)
	}

	all := f.store.SearchItems(content.KindIdeas, "")
	require.Len(t, all, 3)
	assert.Equal(t, "Benches", content.Title(all[0]))
	assert.Equal(t, "Bike lanes", content.Title(all[1]))
	assert.Equal(t, "Park cleanup", content.Title(all[2]))

	park := f.store.SearchItems(content.KindIdeas, "PARK")
	require.Len(t, park, 2)
	assert.Equal(t, "Benches", content.Title(park[0]))
	assert.Equal(t, "Park cleanup", content.Title(park[1]))

	assert.Empty(t, f.store.SearchItems(content.KindIdeas, "library"))
}

func TestPersistenceFailure_KeepsMutationAndAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.SaveErr = errors.New("quota exceeded")

	it, err := f.store.Add(ctx, &content.Idea{Title: "Unsaved"})
	require.NoError(t, err, "save failures do not fail the operation")

	_, ok := f.store.GetByID(content.KindIdeas, it.Base().ID)
	assert.True(t, ok, "in-memory effect is retained")
	assert.Equal(t, []string{SaveFailedMessage}, f.host.Alerts)
}

func TestHaptics_LightAfterWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	it, err := f.store.Add(ctx, &content.Idea{Title: "x"})
	require.NoError(t, err)
	_, err = f.store.Update(ctx, content.KindIdeas, it.Base().ID, content.Fields{"title": "y"})
	require.NoError(t, err)

	assert.Equal(t, []host.ImpactStyle{host.ImpactLight, host.ImpactLight}, f.host.Impacts)
}

func TestPreferences_ShallowMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dark := content.ThemeDark

	got := f.store.UpdatePreferences(ctx, content.PreferencesUpdate{Theme: &dark})

	assert.Equal(t, content.ThemeDark, got.Theme)
	assert.True(t, got.Notifications)
	assert.False(t, got.LocationEnabled)
	assert.Equal(t, got, f.store.GetPreferences())
}

func TestReload_RoundTripsThroughBackend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetCurrentUser(ctx, content.UserProfile{ID: "7", FirstName: "Ada"})
	it, err := f.store.Add(ctx, &content.Poll{
		Question: "Q",
		Options:  []content.PollOption{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
	})
	require.NoError(t, err)
	require.True(t, f.store.VotePoll(ctx, it.Base().ID, "b", "7"))

	reloaded := New(f.backend, seed.Embedded())
	require.Equal(t, OriginPersisted, reloaded.Initialize(ctx))

	poll, ok := reloaded.Poll(it.Base().ID)
	require.True(t, ok)
	assert.Equal(t, content.MemberSet{"7"}, poll.VotedBy)
	assert.Equal(t, content.MemberSet{"7"}, poll.Options[1].Votes)
	u, ok := reloaded.GetUser()
	require.True(t, ok)
	assert.Equal(t, "Ada", u.FirstName)
}

func TestSnapshotAndReset(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend, seedSource(content.Collections{
		Ideas: []*content.Idea{{Record: content.Record{ID: "i1"}, Title: "Seeded"}},
	}))
	ctx := context.Background()
	require.Equal(t, OriginSeed, s.Initialize(ctx))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(snap, &doc))
	assert.Contains(t, doc, "preferences")
	assert.Contains(t, doc, "ideas")

	s.Reset(ctx)
	assert.Empty(t, s.GetAll(content.KindIdeas))

	reloaded := New(backend, nil)
	assert.Equal(t, OriginPersisted, reloaded.Initialize(ctx))
	assert.Empty(t, reloaded.GetAll(content.KindIdeas))
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("")
	assert.Equal(t, "id-1", g.NewID())
	assert.Equal(t, "id-2", g.NewID())

	u := UUIDv7Generator{}
	assert.Len(t, u.NewID(), 36)
	assert.NotEqual(t, u.NewID(), u.NewID())
}

func TestAdd_DropsRepeatedMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it, err := f.store.Add(ctx, &content.Idea{Title: "Bikes", Upvotes: content.MemberSet{"u", "u", "v", "u"}})
	require.NoError(t, err)
	idea := it.(*content.Idea)
	assert.Equal(t, content.MemberSet{"u", "v"}, idea.Upvotes)

	assert.False(t, f.store.ToggleUpvote(ctx, idea.ID, "u"))
	assert.False(t, idea.Upvotes.Has("u"))

	p, err := f.store.Add(ctx, &content.Poll{
		Question: "Q",
		Options: []content.PollOption{
			{Text: "A", Votes: content.MemberSet{"w", "w"}},
			{Text: "B"},
		},
		VotedBy: content.MemberSet{"w", "w"},
	})
	require.NoError(t, err)
	poll := p.(*content.Poll)
	assert.Equal(t, content.MemberSet{"w"}, poll.VotedBy)
	assert.Equal(t, content.MemberSet{"w"}, poll.Options[0].Votes)

	team, err := f.store.Add(ctx, &content.Project{Title: "Garden", Status: content.ProjectActive, Team: content.MemberSet{"x", "x"}})
	require.NoError(t, err)
	assert.Equal(t, content.MemberSet{"x"}, team.(*content.Project).Team)

	pet, err := f.store.Add(ctx, &content.Petition{Title: "Trees", TargetSignatures: 10, Signatures: content.MemberSet{"y", "y"}})
	require.NoError(t, err)
	assert.Equal(t, content.MemberSet{"y"}, pet.(*content.Petition).Signatures)
}

// reload opens a second store over the same backend.
func reload(t *testing.T, f *fixture) *Store {
	t.Helper()
	s := New(f.backend, seed.Embedded())
	require.Equal(t, OriginPersisted, s.Initialize(context.Background()))
	return s
}

func TestAdd_RejectsPollsTheLoaderWouldRefuse(t *testing.T) {
	tests := []struct {
		name string
		poll *content.Poll
		want string
	}{
		{
			name: "duplicate option ids",
			poll: &content.Poll{Question: "Q", Options: []content.PollOption{{ID: "a", Text: "A"}, {ID: "a", Text: "B"}}},
			want: `duplicate option id "a"`,
		},
		{
			name: "voter without option vote",
			poll: &content.Poll{
				Question: "Q",
				Options:  []content.PollOption{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
				VotedBy:  content.MemberSet{"u"},
			},
			want: "votedBy has 1 users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			idea, err := f.store.Add(ctx, &content.Idea{Title: "Keep me"})
			require.NoError(t, err)
			saves := f.backend.Saves()

			_, err = f.store.Add(ctx, tt.poll)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, saves, f.backend.Saves(), "rejected add is not saved")
			assert.Empty(t, f.store.GetAll(content.KindPolls))

			reloaded := reload(t, f)
			_, ok := reloaded.Idea(idea.Base().ID)
			assert.True(t, ok, "earlier writes survive a reload")
		})
	}
}

func TestUpdate_RejectsInconsistentPoll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idea, err := f.store.Add(ctx, &content.Idea{Title: "Keep me"})
	require.NoError(t, err)
	it, err := f.store.Add(ctx, &content.Poll{
		Question: "Q",
		Options:  []content.PollOption{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
	})
	require.NoError(t, err)
	saves := f.backend.Saves()

	_, err = f.store.Update(ctx, content.KindPolls, it.Base().ID, content.Fields{"votedBy": []string{"u"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "votedBy has 1 users but options hold 0 voters")
	assert.Equal(t, saves, f.backend.Saves())
	assert.Empty(t, it.(*content.Poll).VotedBy, "live poll is unchanged")

	_, err = f.store.Update(ctx, content.KindPolls, it.Base().ID, content.Fields{"question": "Q2"})
	require.NoError(t, err)

	reloaded := reload(t, f)
	_, ok := reloaded.Idea(idea.Base().ID)
	assert.True(t, ok)
	poll, ok := reloaded.Poll(it.Base().ID)
	require.True(t, ok)
	assert.Equal(t, "Q2", poll.Question)
}
