package render

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TocDigest/internal/domain"
)

func str(s string) *string { return &s }

func fixtureResult() domain.TriageResult {
	return domain.TriageResult{
		WeekOf: "2026-08-30",
		Notes:  "Strong week for sleep-EEG methods.",
		Ranked: []domain.ScoredItem{
			{
				ID:           "aaa",
				Title:        "Aperiodic slopes track arousal",
				Link:         "https://example.org/aperiodic",
				Source:       "Nature Neuroscience",
				PublishedUTC: str("2026-08-28T06:00:00Z"),
				Score:        0.92,
				Why:          "Directly about aperiodic EEG activity.",
				Tags:         []string{"EEG", "aperiodic"},
			},
			{
				ID:     "bbb",
				Title:  "HMM state dynamics in rest",
				Link:   "https://example.org/hmm",
				Source: "eLife",
				Score:  0.71,
				Why:    "Latent-state modeling of neural time series.",
			},
			{
				ID:     "ccc",
				Title:  "Below threshold",
				Link:   "https://example.org/low",
				Source: "Misc",
				Score:  0.40,
				Why:    "Marginal.",
			},
		},
	}
}

func fixtureItems() map[string]domain.CandidateItem {
	return map[string]domain.CandidateItem{
		"aaa": {ID: "aaa", Summary: "We show that aperiodic slopes covary with arousal across sleep stages."},
		"bbb": {ID: "bbb"},
	}
}

func TestDigestGolden(t *testing.T) {
	t.Parallel()

	md := Digest(fixtureResult(), fixtureItems(), 0.65, 10)

	g := goldie.New(t)
	g.Assert(t, "digest", []byte(md))
}

func TestDigestThresholdAndCounts(t *testing.T) {
	t.Parallel()

	md := Digest(fixtureResult(), fixtureItems(), 0.65, 10)

	assert.Contains(t, md, "**Included:** 2")
	assert.Contains(t, md, "**Scored:** 3 total items")
	assert.NotContains(t, md, "Below threshold")
}

func TestDigestMaxReturned(t *testing.T) {
	t.Parallel()

	md := Digest(fixtureResult(), fixtureItems(), 0.0, 1)
	assert.Contains(t, md, "**Included:** 1")
	assert.Contains(t, md, "Aperiodic slopes track arousal")
	assert.NotContains(t, md, "HMM state dynamics")
}

func TestDigestZeroKept(t *testing.T) {
	t.Parallel()

	md := Digest(fixtureResult(), fixtureItems(), 0.99, 10)
	assert.Contains(t, md, "**Included:** 0")
	assert.Contains(t, md, "_No items met the relevance threshold this week._")
	assert.NotContains(t, md, "## [")
}

func TestDigestOmitsEmptySummaryBlock(t *testing.T) {
	t.Parallel()

	md := Digest(fixtureResult(), fixtureItems(), 0.65, 10)

	// only the item with a candidate summary gets a details block
	assert.Equal(t, 1, strings.Count(md, "<details>"))
}

func TestDigestFlattensSummaryNewlines(t *testing.T) {
	t.Parallel()

	items := fixtureItems()
	entry := items["aaa"]
	entry.Summary = "line one\nline two"
	items["aaa"] = entry

	md := Digest(fixtureResult(), items, 0.65, 10)
	assert.Contains(t, md, "line one line two")
}

func TestDigestNotesOmittedWhenBlank(t *testing.T) {
	t.Parallel()

	result := fixtureResult()
	result.Notes = "   "
	md := Digest(result, fixtureItems(), 0.65, 10)
	require.True(t, strings.HasPrefix(md, "# Weekly ToC Digest (week of 2026-08-30)\n\n**Included:**"))
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	md := Empty("2026-08-30", 7)
	assert.Equal(t, "# Weekly ToC Digest (week of 2026-08-30)\n\n_No RSS items found in the last 7 days._\n", md)
}
