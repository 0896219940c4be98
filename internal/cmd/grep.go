package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/findr/internal/content"
	"github.com/harrison/findr/internal/display"
	"github.com/harrison/findr/internal/logger"
	"github.com/harrison/findr/internal/query"
	"github.com/harrison/findr/internal/walker"
)

// grepOptions collects the grep subcommand's flags.
type grepOptions struct {
	configPath string
	logLevel   string

	maxDepth   int
	exclude    []string
	skipHidden bool
	follow     bool
	noSummary  bool
	noHistory  bool
}

// NewGrepCommand creates the grep subcommand: content search for a
// literal key across files below the roots.
func NewGrepCommand() *cobra.Command {
	opts := &grepOptions{}

	cmd := &cobra.Command{
		Use:   "grep <key> [root...]",
		Short: "Search file contents for a literal key",
		Long: `Search the contents of files below one or more roots for a literal key,
reporting each match with its line and column and a highlighted excerpt.

Files that look binary or cannot be read are skipped silently. Discovery
uses the same deterministic walk as the filename search, so results for a
fixed filesystem snapshot are stable across runs.

Examples:
  findr grep TODO
  findr grep "http://" src docs --max-depth 4
  findr grep secret . --skip-hidden`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrep(cmd, args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.findr.yaml)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log verbosity: trace, debug, info, warn, error")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", -1, "maximum depth below each root (-1 = unlimited)")
	cmd.Flags().StringSliceVarP(&opts.exclude, "exclude", "x", nil, "glob patterns to skip entirely (repeatable)")
	cmd.Flags().BoolVar(&opts.skipHidden, "skip-hidden", false, "skip dot-entries below the roots")
	cmd.Flags().BoolVarP(&opts.follow, "follow-symlinks", "L", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "suppress the closing summary line")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this search in history")

	return cmd
}

// runGrep walks the roots for regular files and scans each one for the key.
func runGrep(cmd *cobra.Command, key string, roots []string, opts *grepOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logLevel := cfg.LogLevel
	if opts.logLevel != "" {
		logLevel = opts.logLevel
	}
	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), logLevel)

	if len(roots) == 0 {
		roots = []string{"."}
	}

	exclude := append([]string{}, cfg.Exclude...)
	exclude = append(exclude, opts.exclude...)

	q := &query.SearchQuery{
		Roots:          roots,
		Type:           query.TypeFile,
		MaxDepth:       opts.maxDepth,
		Exclude:        exclude,
		FollowSymlinks: opts.follow || cfg.FollowSymlinks,
		SkipHidden:     opts.skipHidden || cfg.SkipHidden,
	}
	if err := q.Validate(); err != nil {
		return err
	}

	engine := walker.New(q, log)
	printer := display.NewPrinter(cmd.OutOrStdout(), false, colorEnabled(cmd.OutOrStdout()))

	start := time.Now()
	fileCount := 0
	err = engine.Walk(cmd.Context(), func(res query.MatchResult) error {
		matches, err := content.SearchFile(res.Path, key)
		if err != nil {
			// Unreadable files are routine during a broad scan; report at
			// debug level and keep going.
			log.Debug("skipping %s: %v", res.Path, err)
			return nil
		}
		if len(matches) > 0 {
			fileCount++
			printer.PrintContentMatches(res.Path, key, matches)
		}
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if !opts.noSummary {
		printer.PrintSummary(fileCount, elapsed, engine.Warnings())
	}
	displaySkipped(cmd.ErrOrStderr(), engine)

	if !opts.noHistory {
		recordHistory(cmd.Context(), cfg, log, historyEntry{
			roots:    q.Roots,
			pattern:  key,
			mode:     "grep",
			matches:  fileCount,
			warnings: engine.Warnings(),
			elapsed:  elapsed,
		})
	}
	return nil
}
