package prefilter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TocDigest/internal/domain"
)

func item(title, summary string) domain.CandidateItem {
	return domain.CandidateItem{
		ID:      domain.Fingerprint("src", title, "https://example.org/"+title),
		Source:  "src",
		Title:   title,
		Link:    "https://example.org/" + title,
		Summary: summary,
	}
}

// corpus builds enough matching items that the fallback guard stays off.
func corpus(n int, title, summary string) []domain.CandidateItem {
	items := make([]domain.CandidateItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, item(fmt.Sprintf("%s %d", title, i), summary))
	}
	return items
}

func TestApplyRanksByHitCount(t *testing.T) {
	t.Parallel()

	items := corpus(50, "EEG study", "")
	items = append(items,
		item("double hit", "EEG and aperiodic analysis"),
		item("unmatched", "fluid dynamics"),
	)

	kept := Apply(items, []string{"EEG", "aperiodic"}, 10)
	require.Len(t, kept, 10)
	assert.Equal(t, "double hit", kept[0].Title)
	for _, it := range kept {
		assert.NotEqual(t, "unmatched", it.Title)
	}
}

func TestApplyStableOnTies(t *testing.T) {
	t.Parallel()

	items := corpus(60, "EEG paper", "")
	kept := Apply(items, []string{"eeg"}, 60)
	require.Len(t, kept, 60)
	for i, it := range kept {
		assert.Equal(t, fmt.Sprintf("EEG paper %d", i), it.Title)
	}
}

func TestApplyFallbackNoMatches(t *testing.T) {
	t.Parallel()

	items := corpus(20, "plasma physics", "tokamak")
	kept := Apply(items, []string{"EEG"}, 5)
	require.Len(t, kept, 5)
	assert.Equal(t, items[:5], kept)
}

func TestApplyFallbackFewerItemsThanKeepTop(t *testing.T) {
	t.Parallel()

	items := corpus(3, "plasma physics", "")
	kept := Apply(items, []string{"EEG"}, 10)
	require.Equal(t, items, kept)
}

func TestApplyFallbackWhenTooFewMatches(t *testing.T) {
	t.Parallel()

	// 10 matches < min(50, keepTop=100): filter judged too aggressive.
	items := corpus(10, "EEG paper", "")
	items = append(items, corpus(90, "astronomy", "")...)

	kept := Apply(items, []string{"eeg"}, 100)
	require.Len(t, kept, 100)
	assert.Equal(t, items, kept)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	items := corpus(55, "EEG paper", "")
	snapshot := append([]domain.CandidateItem(nil), items...)

	_ = Apply(items, []string{"eeg"}, 5)
	assert.Equal(t, snapshot, items)
}

func TestApplyCaseInsensitive(t *testing.T) {
	t.Parallel()

	items := corpus(50, "eeg lowercase", "")
	kept := Apply(items, []string{"EEG"}, 50)
	require.Len(t, kept, 50)
}
