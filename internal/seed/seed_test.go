package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/communityvoice/internal/content"
)

func TestParse_BundledDocument(t *testing.T) {
	c, err := Parse(Bundled())
	require.NoError(t, err)

	assert.Len(t, c.Ideas, 3)
	assert.Len(t, c.Petitions, 2)
	assert.Len(t, c.Polls, 2)
	assert.Len(t, c.Projects, 1)

	benches := c.Ideas[0]
	assert.Equal(t, "idea-benches", benches.ID)
	assert.True(t, benches.Location.HasCoordinates())
	assert.Equal(t, content.MemberSet{"1002", "1003"}, benches.Upvotes)
	require.Len(t, benches.Comments, 1)
	assert.Equal(t, "Tom Becker", benches.Comments[0].UserName)
	assert.False(t, benches.CreatedAt.IsZero(), "quoted timestamps decode to time.Time")

	market := c.Polls[0]
	assert.Equal(t, 3, market.TotalVotes())
	assert.NoError(t, market.Consistent())

	assert.Equal(t, content.ProjectActive, c.Projects[0].Status)
}

func TestParse_RejectsLowSignatureTarget(t *testing.T) {
	doc := []byte(`
petitions:
  - id: p1
    title: Too small
    description: x
    targetSignatures: 5
`)
	_, err := Parse(doc)
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "targetSignatures")
}

func TestParse_RejectsSingleOptionPoll(t *testing.T) {
	doc := []byte(`
polls:
  - id: poll1
    question: Yes?
    options:
      - id: o1
        text: Yes
`)
	_, err := Parse(doc)
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestParse_RejectsUnknownProjectStatus(t *testing.T) {
	doc := []byte(`
projects:
  - id: pr1
    title: Garden
    description: x
    status: abandoned
`)
	_, err := Parse(doc)
	assert.Error(t, err)
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	doc := []byte(`
ideas:
  - {id: same, title: One, description: a}
  - {id: same, title: Two, description: b}
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestParse_RejectsInconsistentVotes(t *testing.T) {
	doc := []byte(`
polls:
  - id: poll1
    question: Which?
    options:
      - {id: a, text: A, votes: ["u1"]}
      - {id: b, text: B, votes: ["u1"]}
    votedBy: ["u1"]
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll poll1")
}

func TestParse_EmptyDocument(t *testing.T) {
	c, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, c.Ideas)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("ideas: [unclosed"))
	assert.ErrorContains(t, err, "parse seed yaml")
}

func TestSources(t *testing.T) {
	ctx := context.Background()

	c, err := Embedded().Fetch(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Ideas)

	_, err = None.Fetch(ctx)
	assert.True(t, errors.Is(err, ErrNoSeed))

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ideas:\n  - {id: i1, title: T, description: D}\n"), 0o644))
	c, err = File(path).Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, c.Ideas, 1)
	assert.Equal(t, "T", c.Ideas[0].Title)

	_, err = File(filepath.Join(t.TempDir(), "missing.yaml")).Fetch(ctx)
	assert.ErrorContains(t, err, "read seed")
}

func TestEmbedded_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Embedded().Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
