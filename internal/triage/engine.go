package triage

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"TocDigest/internal/domain"
	"TocDigest/internal/ports"
)

const (
	maxTransientAttempts = 6
	maxMalformedAttempts = 2
	baseBackoff          = time.Second
	maxBackoff           = 60 * time.Second
	malformedDelay       = 3 * time.Second
	notesSeparator       = " | "
	notesMaxChars        = 2000
)

// Engine partitions candidate items into bounded batches, scores each batch
// through the injected Scorer with retry and backoff, and merges the per-batch
// results into one globally ranked TriageResult. It never thresholds: low
// scores pass through untouched and only the renderer discards them.
type Engine struct {
	scorer    ports.Scorer
	batchSize int
	logger    *slog.Logger

	// injectable for deterministic tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs the engine around a scoring backend.
func New(scorer ports.Scorer, batchSize int, logger *slog.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Engine{
		scorer:    scorer,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Run scores all items and returns the merged, score-descending result.
// One permanently failing batch aborts the whole run; there is no
// partial-digest degradation across batches.
func (e *Engine) Run(ctx context.Context, interests domain.Interests, items []domain.CandidateItem) (domain.TriageResult, error) {
	result := domain.TriageResult{
		WeekOf: e.now().UTC().Format("2006-01-02"),
		Ranked: []domain.ScoredItem{},
	}

	batches := partition(items, e.batchSize)

	var (
		notes     []string
		notesSeen = map[string]bool{}
		scores    = map[string]domain.ScoredItem{}
		firstSeen []string
	)

	for i, batch := range batches {
		e.info("scoring batch", "batch", i+1, "batches", len(batches), "items", len(batch))

		batchResult, err := e.scoreWithRetry(ctx, i+1, interests, batch)
		if err != nil {
			return domain.TriageResult{}, err
		}

		if note := strings.TrimSpace(batchResult.Notes); note != "" && !notesSeen[note] {
			notesSeen[note] = true
			notes = append(notes, note)
		}

		// Highest score wins per identity, so merging is commutative and
		// the outcome does not depend on batch completion order.
		for _, scored := range batchResult.Ranked {
			prev, ok := scores[scored.ID]
			if !ok {
				firstSeen = append(firstSeen, scored.ID)
				scores[scored.ID] = scored
				continue
			}
			if scored.Score > prev.Score {
				scores[scored.ID] = scored
			}
		}
	}

	for _, id := range firstSeen {
		result.Ranked = append(result.Ranked, scores[id])
	}
	sort.SliceStable(result.Ranked, func(i, j int) bool {
		return result.Ranked[i].Score > result.Ranked[j].Score
	})

	result.Notes = truncateNotes(strings.Join(notes, notesSeparator))
	return result, nil
}

// scoreWithRetry drives one batch through its retry state machine:
// transient failures back off exponentially up to maxTransientAttempts
// calls, malformed output retries on a short fixed delay up to
// maxMalformedAttempts calls, anything else is terminal immediately.
func (e *Engine) scoreWithRetry(ctx context.Context, batch int, interests domain.Interests, items []domain.CandidateItem) (domain.BatchResult, error) {
	var transient, malformed int

	for {
		result, err := e.scorer.ScoreBatch(ctx, interests, items)
		if err == nil {
			return result, nil
		}

		var delay time.Duration
		switch {
		case IsTransient(err):
			transient++
			if transient >= maxTransientAttempts {
				return domain.BatchResult{}, &BatchError{Batch: batch, Attempts: transient, Err: err}
			}
			delay = backoff(transient)
		case IsMalformed(err):
			malformed++
			if malformed >= maxMalformedAttempts {
				return domain.BatchResult{}, &BatchError{Batch: batch, Attempts: malformed, Err: err}
			}
			delay = malformedDelay
		default:
			return domain.BatchResult{}, &BatchError{Batch: batch, Attempts: transient + malformed + 1, Err: err}
		}

		e.warn("batch scoring failed, retrying",
			"batch", batch, "delay", delay, "error", err)

		if err := e.sleep(ctx, delay); err != nil {
			return domain.BatchResult{}, &BatchError{Batch: batch, Attempts: transient + malformed, Err: err}
		}
	}
}

// partition splits items into contiguous batches of at most size, preserving
// order; the last batch may be smaller. No item lands in more than one batch.
func partition(items []domain.CandidateItem, size int) [][]domain.CandidateItem {
	var batches [][]domain.CandidateItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

// backoff doubles per failed transient attempt: 1s, 2s, 4s… capped.
func backoff(attempt int) time.Duration {
	d := baseBackoff << (attempt - 1)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

func truncateNotes(notes string) string {
	runes := []rune(notes)
	if len(runes) <= notesMaxChars {
		return notes
	}
	return string(runes[:notesMaxChars]) + "…"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
