package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the tocdigest CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "tocdigest",
		Short:        "Weekly table-of-contents digest from journal RSS feeds",
		Long:         "tocdigest pulls recent entries from configured RSS feeds, triages them\nagainst a reader's stated interests, and renders the survivors as a\nMarkdown digest.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}
