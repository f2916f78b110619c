package ports

import (
	"context"

	"TocDigest/internal/domain"
)

// FeedSource pulls candidate items from the configured feed endpoints.
type FeedSource interface {
	Fetch(ctx context.Context, feeds []domain.Feed) ([]domain.CandidateItem, error)
}

// Scorer ranks one bounded batch of candidate items against reader interests.
// Implementations report transient unavailability and malformed output as
// distinct error kinds so the triage engine can apply the right retry policy.
type Scorer interface {
	Name() string
	ScoreBatch(ctx context.Context, interests domain.Interests, batch []domain.CandidateItem) (domain.BatchResult, error)
}
