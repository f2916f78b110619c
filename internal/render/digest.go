package render

import (
	"fmt"
	"strings"

	"TocDigest/internal/domain"
)

// Digest renders the triage result as the weekly Markdown report. This is
// the only place thresholding happens: entries below minScore are dropped
// and the survivors are capped at maxReturned. The original candidates are
// consulted only to attach their RSS summaries as collapsible blocks.
func Digest(result domain.TriageResult, itemsByID map[string]domain.CandidateItem, minScore float64, maxReturned int) string {
	kept := make([]domain.ScoredItem, 0, len(result.Ranked))
	for _, r := range result.Ranked {
		if r.Score >= minScore {
			kept = append(kept, r)
		}
	}
	if maxReturned > 0 && len(kept) > maxReturned {
		kept = kept[:maxReturned]
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("# Weekly ToC Digest (week of %s)", result.WeekOf), "")

	if notes := strings.TrimSpace(result.Notes); notes != "" {
		lines = append(lines, notes, "")
	}

	lines = append(lines,
		fmt.Sprintf("**Included:** %d (score ≥ %.2f)  \n**Scored:** %d total items", len(kept), minScore, len(result.Ranked)),
		"", "---", "")

	if len(kept) == 0 {
		lines = append(lines, "_No items met the relevance threshold this week._", "")
		return strings.Join(lines, "\n")
	}

	for _, r := range kept {
		lines = append(lines, fmt.Sprintf("## [%s](%s)", r.Title, r.Link))

		meta := fmt.Sprintf("*%s*  \nScore: **%.2f**", r.Source, r.Score)
		if r.PublishedUTC != nil && *r.PublishedUTC != "" {
			meta += fmt.Sprintf("  \nPublished: %s", *r.PublishedUTC)
		}
		lines = append(lines, meta)

		if len(r.Tags) > 0 {
			lines = append(lines, "Tags: "+strings.Join(r.Tags, ", "))
		}

		lines = append(lines, "", strings.TrimSpace(r.Why), "")

		if summary := strings.TrimSpace(itemsByID[r.ID].Summary); summary != "" {
			// keep the collapsible block to a single line
			safe := strings.Join(strings.Fields(summary), " ")
			lines = append(lines,
				"<details>", "<summary>RSS summary</summary>", "",
				safe,
				"", "</details>", "")
		}

		lines = append(lines, "---", "")
	}

	return strings.Join(lines, "\n")
}

// Empty renders the minimal digest for runs where no feed entries survived
// the lookback window; the triage engine is bypassed entirely.
func Empty(weekOf string, lookbackDays int) string {
	return fmt.Sprintf("# Weekly ToC Digest (week of %s)\n\n_No RSS items found in the last %d days._\n", weekOf, lookbackDays)
}
