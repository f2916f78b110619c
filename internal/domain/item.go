package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// Interests is the reader's relevance seed parsed from the interests document.
// Built once per run and treated as read-only afterwards.
type Interests struct {
	Keywords  []string
	Narrative string
}

// CandidateItem is one feed entry surviving ingestion-time filtering.
// ID is the canonical identity used for dedupe and merge in every later stage.
type CandidateItem struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Published *time.Time `json:"published_utc"`
	Summary   string     `json:"summary"`
}

// ScoredItem is one triage verdict from the scoring oracle, keyed by the
// same ID as its source CandidateItem. PublishedUTC is passed through as the
// oracle returned it, never re-derived.
type ScoredItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Source       string   `json:"source"`
	PublishedUTC *string  `json:"published_utc"`
	Score        float64  `json:"score"`
	Why          string   `json:"why"`
	Tags         []string `json:"tags"`
}

// BatchResult is what the scoring oracle returns for one batch of items.
type BatchResult struct {
	Notes  string       `json:"notes"`
	Ranked []ScoredItem `json:"ranked"`
}

// TriageResult is the batch-merged final artifact, ranked by score descending.
type TriageResult struct {
	WeekOf string       `json:"week_of"`
	Notes  string       `json:"notes"`
	Ranked []ScoredItem `json:"ranked"`
}

// Feed names one configured feed endpoint. Name is optional; when empty the
// feed-declared title (or the URL) is used as the item source.
type Feed struct {
	Name string
	URL  string
}

// Fingerprint derives the stable content identity of a feed entry. It is a
// pure function of (source, title, link): computed once at ingestion and
// carried unchanged so scored results can be rejoined to their source item.
func Fingerprint(source, title, link string) string {
	sum := sha1.Sum([]byte(source + "|" + title + "|" + link))
	return hex.EncodeToString(sum[:])
}
