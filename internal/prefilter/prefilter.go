package prefilter

import (
	"sort"
	"strings"

	"TocDigest/internal/domain"
)

// fallbackFloor: when fewer matched items than min(fallbackFloor, keepTop)
// survive, the keyword list is judged too narrow and filtering is skipped.
const fallbackFloor = 50

// Apply is a cheap keyword reduction applied before the expensive scoring
// stage. Each item is scored by how many keywords occur (case-insensitive)
// in its title plus summary; matched items are returned by hit count
// descending, stable on ties, truncated to keepTop. When the filter proves
// too aggressive the first keepTop items of the original date-sorted input
// are returned unfiltered instead. Items are never mutated.
func Apply(items []domain.CandidateItem, keywords []string, keepTop int) []domain.CandidateItem {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	type match struct {
		index int
		hits  int
	}

	var matched []match
	for i, item := range items {
		haystack := strings.ToLower(item.Title + " " + item.Summary)
		hits := 0
		for _, kw := range lowered {
			if strings.Contains(haystack, kw) {
				hits++
			}
		}
		if hits > 0 {
			matched = append(matched, match{index: i, hits: hits})
		}
	}

	floor := fallbackFloor
	if keepTop < floor {
		floor = keepTop
	}
	if len(matched) < floor {
		if keepTop >= len(items) {
			return append([]domain.CandidateItem(nil), items...)
		}
		return append([]domain.CandidateItem(nil), items[:keepTop]...)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].hits > matched[j].hits
	})
	if len(matched) > keepTop {
		matched = matched[:keepTop]
	}

	out := make([]domain.CandidateItem, 0, len(matched))
	for _, m := range matched {
		out = append(out, items[m.index])
	}
	return out
}
