package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for findr.
// The root command itself runs a filename search; content search and
// history management live on subcommands.
func NewRootCommand() *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "findr [root...]",
		Short: "Recursive file finder with styled output",
		Long: `Findr recursively searches one or more directory trees for entries
matching name patterns, types, sizes, and modification times, streaming
matches as they are found.

Traversal is depth-first with lexicographic sibling order, so output is
deterministic for a fixed filesystem snapshot. Permission errors and
symlink cycles are reported as warnings and never abort the search.

Examples:
  findr . --name "*.go"
  findr src test --name "*_test.go" --max-depth 3
  findr / --type d --name "cache*" --exclude proc`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, args, opts)
		},
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	addFindFlags(cmd, opts)

	// Add subcommands
	cmd.AddCommand(NewGrepCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
