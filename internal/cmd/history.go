package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/findr/internal/config"
	"github.com/harrison/findr/internal/history"
	"github.com/harrison/findr/internal/logger"
)

// historyEntry carries the fields of one finished search run to the store.
type historyEntry struct {
	roots    []string
	pattern  string
	mode     string
	matches  int
	warnings int
	elapsed  time.Duration
}

// recordHistory persists one search run. History is best-effort: any
// failure is logged as a warning and never fails the search itself.
func recordHistory(ctx context.Context, cfg *config.Config, log *logger.ConsoleLogger, entry historyEntry) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.NewStore(cfg.ExpandedDBPath(), cfg.History.Keep)
	if err != nil {
		log.Warn("history disabled for this run: %v", err)
		return
	}
	defer store.Close()

	rec := &history.SearchRecord{
		Roots:      entry.roots,
		Pattern:    entry.pattern,
		Mode:       entry.mode,
		Matches:    entry.matches,
		Warnings:   entry.warnings,
		DurationMS: entry.elapsed.Milliseconds(),
	}
	if err := store.Record(ctx, rec); err != nil {
		log.Warn("failed to record search history: %v", err)
	}
}

// openStore loads config and opens the history store for the history
// subcommands, which unlike searches do fail when the store is broken.
func openStore(configPath string) (*history.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	store, err := history.NewStore(cfg.ExpandedDBPath(), cfg.History.Keep)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return store, nil
}

// NewHistoryCommand creates the history subcommand and its children.
func NewHistoryCommand() *cobra.Command {
	var configPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and manage recorded searches",
		Long: `List recent searches recorded in the history database.

Every completed search is recorded (unless --no-history was given or
history is disabled in the config) with its roots, pattern, match count,
and duration.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded searches.")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-4s  %-20s  %4d match(es)  %6dms  %s\n",
					rec.StartedAt.Format("2006-01-02 15:04:05"),
					rec.Mode,
					truncatePattern(rec.Pattern),
					rec.Matches,
					rec.DurationMS,
					strings.Join(rec.Roots, " "))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.findr.yaml)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	cmd.AddCommand(newHistoryStatsCommand(&configPath))
	cmd.AddCommand(newHistoryClearCommand(&configPath))
	cmd.AddCommand(newHistoryExportCommand(&configPath))

	return cmd
}

// newHistoryStatsCommand aggregates the history table.
func newHistoryStatsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:          "stats",
		Short:        "Show aggregate statistics for recorded searches",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.GetStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Search History:\n")
			fmt.Fprintf(out, "  Total runs: %d\n", stats.TotalRuns)
			fmt.Fprintf(out, "  Total matches: %d\n", stats.TotalMatches)
			if len(stats.TopPatterns) > 0 {
				fmt.Fprintf(out, "  Most-used patterns:\n")
				for _, pc := range stats.TopPatterns {
					fmt.Fprintf(out, "    %-20s %d\n", truncatePattern(pc.Pattern), pc.Count)
				}
			}
			return nil
		},
	}
}

// newHistoryClearCommand deletes all history rows.
func newHistoryClearCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:          "clear",
		Short:        "Delete all recorded searches",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared.")
			return nil
		},
	}
}

// newHistoryExportCommand writes the history as JSON.
func newHistoryExportCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:          "export <file>",
		Short:        "Export recorded searches as JSON",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Export(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History exported to %s\n", args[0])
			return nil
		},
	}
}

// truncatePattern keeps listing columns aligned for very long patterns.
func truncatePattern(p string) string {
	if p == "" {
		return "-"
	}
	if len(p) > 20 {
		return p[:17] + "..."
	}
	return p
}
