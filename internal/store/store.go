package store

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"TocDigest/internal/domain"
	"TocDigest/internal/ports"
)

// Parser is the slice of gofeed.Parser the store depends on.
type Parser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// Limits bounds how much the store ingests per run.
type Limits struct {
	MaxPerFeed      int
	MaxTotal        int
	LookbackDays    int
	SummaryMaxChars int
}

// Store fetches, normalizes, deduplicates, date-filters, and caps candidate
// items from the configured feeds into one identity-stable collection.
type Store struct {
	parser Parser
	limits Limits
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.FeedSource = (*Store)(nil)

// New wires a feed parser; pass gofeed.NewParser() in production.
func New(parser Parser, limits Limits, logger *slog.Logger) *Store {
	return &Store{
		parser: parser,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch pulls every configured feed and returns the merged candidate set,
// newest first. A single feed failure yields zero items from that feed and
// the run continues.
func (s *Store) Fetch(ctx context.Context, feeds []domain.Feed) ([]domain.CandidateItem, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -s.limits.LookbackDays)

	var items []domain.CandidateItem
	for _, feed := range feeds {
		parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			s.warn("feed fetch failed", "url", feed.URL, "error", err)
			continue
		}

		source := resolveSource(feed, parsed)
		entries := parsed.Items
		if s.limits.MaxPerFeed > 0 && len(entries) > s.limits.MaxPerFeed {
			entries = entries[:s.limits.MaxPerFeed]
		}

		kept := 0
		for _, entry := range entries {
			item, ok := s.normalize(source, entry, cutoff)
			if !ok {
				continue
			}
			items = append(items, item)
			kept++
		}
		s.debug("feed processed", "source", source, "entries", len(entries), "kept", kept)
	}

	items = dedupe(items)
	sortByPublishedDesc(items)

	if s.limits.MaxTotal > 0 && len(items) > s.limits.MaxTotal {
		items = items[:s.limits.MaxTotal]
	}
	return items, nil
}

// normalize converts one feed entry into a candidate item. Entries missing
// title or link are discarded; entries with a known date older than the
// cutoff are discarded; undated entries are always kept.
func (s *Store) normalize(source string, entry *gofeed.Item, cutoff time.Time) (domain.CandidateItem, bool) {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" || link == "" {
		return domain.CandidateItem{}, false
	}

	published := publishDate(entry)
	if published != nil && published.Before(cutoff) {
		return domain.CandidateItem{}, false
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	return domain.CandidateItem{
		ID:        domain.Fingerprint(source, title, link),
		Source:    source,
		Title:     title,
		Link:      link,
		Published: published,
		Summary:   normalizeSummary(summary, s.limits.SummaryMaxChars),
	}, true
}

// resolveSource picks the display name: explicit config name, else
// feed-declared title, else the raw URL.
func resolveSource(feed domain.Feed, parsed *gofeed.Feed) string {
	if feed.Name != "" {
		return feed.Name
	}
	if title := strings.TrimSpace(parsed.Title); title != "" {
		return title
	}
	return feed.URL
}

// textualDateLayouts covers the common formats feeds put into string date
// fields when the structured timestamps are absent.
var textualDateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// publishDate derives a best-effort UTC publish date, preferring structured
// parsed timestamps over textual fields. Returns nil when nothing parses.
func publishDate(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		utc := entry.PublishedParsed.UTC()
		return &utc
	}
	if entry.UpdatedParsed != nil {
		utc := entry.UpdatedParsed.UTC()
		return &utc
	}

	for _, raw := range []string{entry.Published, entry.Updated} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range textualDateLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				utc := parsed.UTC()
				return &utc
			}
		}
	}
	return nil
}

// normalizeSummary strips HTML markup, collapses whitespace, and caps length.
func normalizeSummary(raw string, max int) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	if max > 0 {
		runes := []rune(text)
		if len(runes) > max {
			text = string(runes[:max]) + "…"
		}
	}
	return text
}

// dedupe collapses items sharing a fingerprint. Position follows first
// occurrence, value follows last occurrence (identity implies field
// equality, so the distinction is cosmetic).
func dedupe(items []domain.CandidateItem) []domain.CandidateItem {
	index := make(map[string]int, len(items))
	out := items[:0:0]
	for _, item := range items {
		if at, ok := index[item.ID]; ok {
			out[at] = item
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// sortByPublishedDesc orders newest first, undated items last, stable on ties.
func sortByPublishedDesc(items []domain.CandidateItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Published, items[j].Published
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}

func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
