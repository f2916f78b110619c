package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TocDigest/internal/domain"
	"TocDigest/internal/ports"
)

// KeywordScorer is the offline backend: deterministic keyword-overlap
// scoring with no credentials and no network. Useful for dry runs and for
// exercising the full pipeline in tests.
type KeywordScorer struct{}

var _ ports.Scorer = (*KeywordScorer)(nil)

// NewKeywordScorer builds the offline backend.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

// Name identifies the backend inside the registry.
func (k *KeywordScorer) Name() string { return "mock" }

// ScoreBatch scores each item by the fraction of interest keywords found in
// its title plus summary. Items with no keyword overlap are omitted, mirroring
// an oracle that declines to score unrelated material.
func (k *KeywordScorer) ScoreBatch(_ context.Context, interests domain.Interests, batch []domain.CandidateItem) (domain.BatchResult, error) {
	keywords := make([]string, 0, len(interests.Keywords))
	for _, kw := range interests.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}

	result := domain.BatchResult{
		Notes: "Scored offline by keyword overlap; no model was consulted.",
	}
	if len(keywords) == 0 {
		return result, nil
	}

	for _, item := range batch {
		haystack := strings.ToLower(item.Title + " " + item.Summary)
		var tags []string
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				tags = append(tags, kw)
			}
		}
		if len(tags) == 0 {
			continue
		}

		var published *string
		if item.Published != nil {
			formatted := item.Published.UTC().Format(time.RFC3339)
			published = &formatted
		}

		result.Ranked = append(result.Ranked, domain.ScoredItem{
			ID:           item.ID,
			Title:        item.Title,
			Link:         item.Link,
			Source:       item.Source,
			PublishedUTC: published,
			Score:        float64(len(tags)) / float64(len(keywords)),
			Why:          fmt.Sprintf("Matched %d of %d interest keywords.", len(tags), len(keywords)),
			Tags:         tags,
		})
	}
	return result, nil
}
