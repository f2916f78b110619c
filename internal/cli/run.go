package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TocDigest/internal/app"
	"TocDigest/internal/config"
	"TocDigest/internal/logging"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Feeds     string
	Interests string
	Output    string
	Backend   string
	DryRun    bool
}

// NewRunCommand creates the run command: one full digest run.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, triage, and write the weekly digest",
		Long: `Execute one stateless digest run: fetch the configured feeds, prefilter
candidates against the interests keywords, score the survivors through the
selected backend, and write the Markdown digest.

Example:
  tocdigest run
  tocdigest run --backend mock --dry-run
  tocdigest run --feeds feeds.txt --interests interests.md --output digest.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Feeds, "feeds", "", "path to the feed list file")
	cmd.Flags().StringVar(&opts.Interests, "interests", "", "path to the interests document")
	cmd.Flags().StringVar(&opts.Output, "output", "", "path of the digest to write")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "scoring backend (openai|agent|mock)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the digest to stdout instead of writing the file")

	return cmd
}

func runDigest(opts *RunOptions) error {
	cfg := config.Load()
	if opts.Feeds != "" {
		cfg.Inputs.FeedsPath = opts.Feeds
	}
	if opts.Interests != "" {
		cfg.Inputs.InterestsPath = opts.Interests
	}
	if opts.Output != "" {
		cfg.Digest.OutputPath = opts.Output
	}
	if opts.Backend != "" {
		cfg.Scoring.Backend = opts.Backend
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	logger := logging.New(level)

	application, err := app.New(cfg, logger, app.Options{DryRun: opts.DryRun})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("digest run failed", "error", err)
		return err
	}
	return nil
}
