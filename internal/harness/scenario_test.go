package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/communityvoice/internal/app"
	"github.com/roach88/communityvoice/internal/content"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/submit_flow.yaml")
	require.NoError(t, err)

	assert.Equal(t, "submit_flow", s.Name)
	require.NotNil(t, s.User)
	assert.Equal(t, int64(2001), s.User.ID)
	require.NotNil(t, s.Location)
	assert.Equal(t, 40.7128, s.Location.Latitude)

	require.Len(t, s.Steps, 8)
	assert.Equal(t, "profile", s.Steps[0].Navigate)
	require.NotNil(t, s.Steps[1].Prefs)
	assert.True(t, *s.Steps[1].Prefs.Location)
	require.NotNil(t, s.Steps[4].Submit.Idea)
	assert.True(t, s.Steps[4].Submit.Idea.UseLocation)
	assert.Equal(t, "roads, safety", s.Steps[4].Submit.Idea.Tags)
	assert.Equal(t, app.CodeAlreadyDone, s.Steps[7].Reject)
	assert.Equal(t, []string{"pollDetail?id=poll-playground"}, s.Expect.Stack)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown field",
			doc:  "name: x\nsteps:\n  - navigate: ideas\nasserts: []\n",
			want: "asserts",
		},
		{
			name: "missing name",
			doc:  "steps:\n  - navigate: ideas\n",
			want: "name is required",
		},
		{
			name: "no steps",
			doc:  "name: x\n",
			want: "at least one step",
		},
		{
			name: "empty step",
			doc:  "name: x\nsteps:\n  - reject: NOT_FOUND\n",
			want: "step 1: no action",
		},
		{
			name: "two actions",
			doc:  "name: x\nsteps:\n  - navigate: ideas\n    upvote: idea-1\n",
			want: "multiple actions: navigate, upvote",
		},
		{
			name: "reject on navigation",
			doc:  "name: x\nsteps:\n  - navigate: ideas\n    reject: NOT_FOUND\n",
			want: "navigate cannot be rejected",
		},
		{
			name: "replace without navigate",
			doc:  "name: x\nsteps:\n  - back: true\n    replace: true\n",
			want: "replace is only valid with navigate",
		},
		{
			name: "submit without draft",
			doc:  "name: x\nsteps:\n  - submit: {}\n",
			want: "exactly one of idea, petition or poll",
		},
		{
			name: "unknown collection",
			doc:  "name: x\nsteps:\n  - share: { kind: widgets, id: w-1 }\n",
			want: `share: unknown collection "widgets"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_AllActions(t *testing.T) {
	doc := `
name: everything
steps:
  - navigate: ideas
    replace: true
  - back: true
  - external: ""
  - upvote: idea-1
  - sign: petition-1
  - vote: { poll: poll-1, option: opt-1 }
  - comment: { kind: polls, id: poll-1, text: hi }
  - search: { kind: ideas, term: park }
  - submit: { petition: { title: T, description: D, target_signatures: 10 } }
  - login: { id: 7, first_name: Sam }
  - preferences: { theme: dark }
  - share: { kind: ideas, id: idea-1 }
  - delete: { kind: ideas, id: idea-1 }
  - join: project-1
  - share_app: true
`
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	require.Len(t, s.Steps, 15)

	for i, st := range s.Steps {
		assert.Len(t, st.actions(), 1, "step %d", i+1)
	}
	require.NotNil(t, s.Steps[2].External)
	assert.Equal(t, "", *s.Steps[2].External)
	assert.Equal(t, 10, s.Steps[8].Submit.Petition.TargetSignatures)
	assert.Equal(t, content.ThemeDark, *s.Steps[10].Prefs.Theme)
}

func TestScenarioFilesParse(t *testing.T) {
	entries, err := os.ReadDir("testdata/scenarios")
	require.NoError(t, err)
	for _, e := range entries {
		_, err := LoadScenario(filepath.Join("testdata/scenarios", e.Name()))
		assert.NoError(t, err, e.Name())
	}
}
