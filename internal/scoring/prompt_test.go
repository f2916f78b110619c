package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TocDigest/internal/domain"
	"TocDigest/internal/triage"
)

func TestBuildPromptSubstitution(t *testing.T) {
	t.Parallel()

	interests := domain.Interests{
		Keywords:  []string{"EEG", "aperiodic"},
		Narrative: "I care about brain dynamics.",
	}
	batch := []domain.CandidateItem{{
		ID: "abc", Source: "Journal", Title: "A Paper", Link: "https://example.org/p",
		Summary: "something long enough",
	}}

	prompt, err := BuildPrompt(interests, batch, 500)
	require.NoError(t, err)

	assert.Contains(t, prompt, `["EEG","aperiodic"]`)
	assert.Contains(t, prompt, "I care about brain dynamics.")
	assert.Contains(t, prompt, `"id":"abc"`)
	assert.NotContains(t, prompt, "{{KEYWORDS}}")
	assert.NotContains(t, prompt, "{{NARRATIVE}}")
	assert.NotContains(t, prompt, "{{ITEMS}}")
}

func TestBuildPromptCapsSummaries(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("s", 600)
	batch := []domain.CandidateItem{{ID: "a", Title: "T", Link: "l", Summary: long}}

	prompt, err := BuildPrompt(domain.Interests{}, batch, 500)
	require.NoError(t, err)
	assert.Contains(t, prompt, strings.Repeat("s", 500))
	assert.NotContains(t, prompt, strings.Repeat("s", 501))

	// the input batch must not be mutated
	assert.Len(t, batch[0].Summary, 600)
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	raw := `{"week_of":"2026-08-30","notes":"quiet","ranked":[
		{"id":"a","title":"T","link":"l","source":"s","published_utc":null,"score":0.8,"why":"w","tags":["EEG"]}
	]}`

	result, err := ParseResponse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "quiet", result.Notes)
	require.Len(t, result.Ranked, 1)
	assert.Equal(t, "a", result.Ranked[0].ID)
	assert.Equal(t, 0.8, result.Ranked[0].Score)
	assert.Nil(t, result.Ranked[0].PublishedUTC)
}

func TestParseResponseRejectsNonJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseResponse([]byte("I could not comply"))
	require.Error(t, err)
	assert.True(t, triage.IsMalformed(err))
}

func TestParseResponseRequiresRanked(t *testing.T) {
	t.Parallel()

	_, err := ParseResponse([]byte(`{"notes":"no verdicts here"}`))
	require.Error(t, err)
	assert.True(t, triage.IsMalformed(err))
}

func TestParseResponseEmptyRankedIsValid(t *testing.T) {
	t.Parallel()

	result, err := ParseResponse([]byte(`{"notes":"","ranked":[]}`))
	require.NoError(t, err)
	assert.Empty(t, result.Ranked)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	object, err := ExtractJSON("Sure! Here you go:\n{\"ranked\": []}\nDone.")
	require.NoError(t, err)
	assert.Equal(t, `{"ranked": []}`, object)

	_, err = ExtractJSON("no object here")
	require.Error(t, err)
}
