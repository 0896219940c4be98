package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/findr/internal/config"
	"github.com/harrison/findr/internal/display"
	"github.com/harrison/findr/internal/logger"
	"github.com/harrison/findr/internal/query"
	"github.com/harrison/findr/internal/walker"
)

// findOptions collects the root command's flags before they are merged
// with config defaults into a SearchQuery.
type findOptions struct {
	configPath string
	logLevel   string

	name          string
	ignoreCase    bool
	entryType     string
	extensions    []string
	maxDepth      int
	exclude       []string
	follow        bool
	skipHidden    bool
	minSize       string
	maxSize       string
	modifiedSince string

	long      bool
	noSummary bool
	noHistory bool
}

// addFindFlags registers the search flags on the root command.
func addFindFlags(cmd *cobra.Command, opts *findOptions) {
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.findr.yaml)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log verbosity: trace, debug, info, warn, error")

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "glob pattern applied to entry base names")
	cmd.Flags().BoolVarP(&opts.ignoreCase, "iname", "i", false, "match the name pattern case-insensitively")
	cmd.Flags().StringVarP(&opts.entryType, "type", "t", "", "restrict to entry type: f (file), d (dir), l (symlink)")
	cmd.Flags().StringSliceVarP(&opts.extensions, "ext", "e", nil, "restrict to file extensions (repeatable)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", -1, "maximum depth below each root (-1 = unlimited, 0 = root only)")
	cmd.Flags().StringSliceVarP(&opts.exclude, "exclude", "x", nil, "glob patterns to skip entirely (repeatable)")
	cmd.Flags().BoolVarP(&opts.follow, "follow-symlinks", "L", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&opts.skipHidden, "skip-hidden", false, "skip dot-entries below the roots")
	cmd.Flags().StringVar(&opts.minSize, "min-size", "", "minimum file size (e.g. 512, 10K, 4M, 1G)")
	cmd.Flags().StringVar(&opts.maxSize, "max-size", "", "maximum file size (e.g. 512, 10K, 4M, 1G)")
	cmd.Flags().StringVar(&opts.modifiedSince, "modified-since", "", "only entries modified within this duration (e.g. 24h, 30m)")

	cmd.Flags().BoolVarP(&opts.long, "long", "l", false, "show type, size, and modified time columns")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "suppress the closing summary line")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this search in history")
}

// runFind executes a filename search: build the query from flags merged
// with config defaults, validate it, walk, and stream results.
func runFind(cmd *cobra.Command, args []string, opts *findOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logLevel := cfg.LogLevel
	if opts.logLevel != "" {
		logLevel = opts.logLevel
	}
	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), logLevel)

	q, err := buildQuery(args, opts, cfg)
	if err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}

	engine := walker.New(q, log)
	printer := display.NewPrinter(cmd.OutOrStdout(), opts.long, colorEnabled(cmd.OutOrStdout()))

	start := time.Now()
	count := 0
	err = engine.Walk(cmd.Context(), func(res query.MatchResult) error {
		count++
		printer.PrintResult(res)
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if !opts.noSummary {
		printer.PrintSummary(count, elapsed, engine.Warnings())
	}
	displaySkipped(cmd.ErrOrStderr(), engine)

	if !opts.noHistory {
		recordHistory(cmd.Context(), cfg, log, historyEntry{
			roots:    q.Roots,
			pattern:  q.Name,
			mode:     "find",
			matches:  count,
			warnings: engine.Warnings(),
			elapsed:  elapsed,
		})
	}
	return nil
}

// displaySkipped renders a closing warning block on stderr listing the
// paths the walk could not fully search.
func displaySkipped(out io.Writer, engine *walker.Engine) {
	n := engine.Warnings()
	if n == 0 {
		return
	}
	display.Warning{
		Title:      fmt.Sprintf("%d path(s) could not be fully searched", n),
		Paths:      engine.Skipped(),
		Suggestion: "Check permissions on the listed paths, or exclude them with --exclude.",
	}.Display(out)
}

// loadConfig resolves the config path (flag value wins over the default
// location) and loads it.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.LoadConfig(path)
}

// colorEnabled defers to display's TTY detection.
func colorEnabled(w io.Writer) bool {
	return display.ColorEnabled(w)
}

// buildQuery merges CLI flags over config defaults into a SearchQuery.
func buildQuery(args []string, opts *findOptions, cfg *config.Config) (*query.SearchQuery, error) {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	entryType, err := query.ParseEntryType(opts.entryType)
	if err != nil {
		return nil, err
	}

	minSize, err := parseSize(opts.minSize)
	if err != nil {
		return nil, fmt.Errorf("invalid --min-size: %w", err)
	}
	maxSize, err := parseSize(opts.maxSize)
	if err != nil {
		return nil, fmt.Errorf("invalid --max-size: %w", err)
	}

	var modifiedSince time.Time
	if opts.modifiedSince != "" {
		d, err := time.ParseDuration(opts.modifiedSince)
		if err != nil {
			return nil, fmt.Errorf("invalid --modified-since %q: %w", opts.modifiedSince, err)
		}
		modifiedSince = time.Now().Add(-d)
	}

	exclude := append([]string{}, cfg.Exclude...)
	exclude = append(exclude, opts.exclude...)

	return &query.SearchQuery{
		Roots:          roots,
		Name:           opts.name,
		IgnoreCase:     opts.ignoreCase,
		Type:           entryType,
		Extensions:     opts.extensions,
		MinSize:        minSize,
		MaxSize:        maxSize,
		ModifiedSince:  modifiedSince,
		MaxDepth:       opts.maxDepth,
		Exclude:        exclude,
		FollowSymlinks: opts.follow || cfg.FollowSymlinks,
		SkipHidden:     opts.skipHidden || cfg.SkipHidden,
	}, nil
}

// parseSize parses a human-friendly byte size: a plain number, or a number
// with a K, M, or G suffix (binary multiples). Empty input means no bound.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(strings.ToUpper(s), "K"):
		multiplier = 1 << 10
		s = s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "M"):
		multiplier = 1 << 20
		s = s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "G"):
		multiplier = 1 << 30
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse size %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("size must not be negative")
	}
	return n * multiplier, nil
}
