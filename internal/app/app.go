package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mmcdole/gofeed"

	"TocDigest/internal/config"
	"TocDigest/internal/domain"
	"TocDigest/internal/interests"
	"TocDigest/internal/ports"
	"TocDigest/internal/prefilter"
	"TocDigest/internal/render"
	"TocDigest/internal/scoring"
	"TocDigest/internal/store"
	"TocDigest/internal/triage"
)

// App wires configuration into the pipeline components and executes one
// stateless digest run: fetch, prefilter, triage, render, write.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	source ports.FeedSource
	scorer ports.Scorer

	dryRun bool
	out    io.Writer
	now    func() time.Time
}

// Options adjust how New assembles the application.
type Options struct {
	// DryRun prints the digest to stdout instead of writing the output file.
	DryRun bool
	// Scorer overrides registry-based backend resolution when non-nil.
	Scorer ports.Scorer
}

// New resolves the scoring backend and builds the item store. Backend
// misconfiguration (unknown name, missing credential) fails here, before
// any feed is fetched.
func New(cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	scorer := opts.Scorer
	if scorer == nil {
		var err error
		scorer, err = scoring.Default().Resolve(cfg.Scoring.Backend, cfg, logger.With("component", "scoring"))
		if err != nil {
			return nil, fmt.Errorf("configure scoring backend: %w", err)
		}
	}

	source := store.New(gofeed.NewParser(), store.Limits{
		MaxPerFeed:      cfg.Limits.MaxPerFeed,
		MaxTotal:        cfg.Limits.MaxTotal,
		LookbackDays:    cfg.Limits.LookbackDays,
		SummaryMaxChars: cfg.Limits.SummaryMaxChars,
	}, logger.With("component", "store"))

	return &App{
		cfg:    cfg,
		logger: logger,
		source: source,
		scorer: scorer,
		dryRun: opts.DryRun,
		out:    os.Stdout,
		now:    time.Now,
	}, nil
}

// Run executes one digest run. On any fatal error it returns without
// touching the output file; on success (including the zero-item path)
// exactly one digest artifact is produced.
func (a *App) Run(ctx context.Context) error {
	doc, err := os.ReadFile(a.cfg.Inputs.InterestsPath)
	if err != nil {
		return fmt.Errorf("read interests document: %w", err)
	}
	seed := interests.Parse(string(doc), a.cfg.Limits.NarrativeMaxChars)

	feeds, err := store.LoadSources(a.cfg.Inputs.FeedsPath)
	if err != nil {
		return err
	}
	if len(feeds) == 0 {
		return fmt.Errorf("feed list %s names no feeds", a.cfg.Inputs.FeedsPath)
	}

	a.logger.Info("run starting",
		"feeds", len(feeds),
		"keywords", len(seed.Keywords),
		"backend", a.scorer.Name())

	items, err := a.source.Fetch(ctx, feeds)
	if err != nil {
		return fmt.Errorf("fetch feeds: %w", err)
	}
	a.logger.Info("candidates fetched", "count", len(items))

	if len(items) == 0 {
		weekOf := a.now().UTC().Format("2006-01-02")
		return a.writeDigest(render.Empty(weekOf, a.cfg.Limits.LookbackDays))
	}

	itemsByID := make(map[string]domain.CandidateItem, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	kept := prefilter.Apply(items, seed.Keywords, a.cfg.Limits.PrefilterKeep)
	a.logger.Info("prefilter applied", "in", len(items), "out", len(kept))

	engine := triage.New(a.scorer, a.cfg.Triage.BatchSize, a.logger.With("component", "triage"))
	result, err := engine.Run(ctx, seed, kept)
	if err != nil {
		return fmt.Errorf("triage: %w", err)
	}
	a.logger.Info("triage complete", "scored", len(result.Ranked))

	md := render.Digest(result, itemsByID, a.cfg.Digest.MinScore, a.cfg.Digest.MaxReturned)
	return a.writeDigest(md)
}

// writeDigest lands the artifact atomically: temp file in the target
// directory, then rename. A failed run never leaves a partial file behind.
func (a *App) writeDigest(md string) error {
	if a.dryRun {
		_, err := io.WriteString(a.out, md)
		return err
	}

	path := a.cfg.Digest.OutputPath
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".digest-*.md")
	if err != nil {
		return fmt.Errorf("create temp digest: %w", err)
	}

	if _, err := tmp.WriteString(md); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write digest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close digest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("move digest into place: %w", err)
	}

	a.logger.Info("digest written", "path", path)
	return nil
}
