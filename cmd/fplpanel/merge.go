package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/service"
)

var mergeFlags struct {
	root         string
	output       string
	targetSchema string
	glob         string
	season       string
}

func init() {
	f := mergeCmd.Flags()
	f.StringVar(&mergeFlags.root, "root", "", "Directory holding the per-player CSV files")
	f.StringVar(&mergeFlags.output, "output", "", "Merged panel CSV to write")
	f.StringVar(&mergeFlags.targetSchema, "target-schema", "", "CSV whose header fixes the output columns")
	f.StringVar(&mergeFlags.glob, "glob", "", "File pattern under root, ** matches any depth (default **/*.csv)")
	f.StringVar(&mergeFlags.season, "season", "", "Season for files that carry none, e.g. 2425")
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge heterogeneous per-player CSV files into one panel",
	Long: `Discovers CSV files under --root, normalizes their columns, infers missing
element, gameweek and season values, and writes one deduplicated panel.
Exits non-zero without writing anything when no file yields a valid row.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := mergeOptions()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		d, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		svc := service.NewMergeService(d.sources.NewTableSource(), d.tracker, appLog)
		res, err := svc.Merge(ctx, opts)
		if err != nil {
			return err
		}

		fmt.Printf("Merged %d of %d files (%d skipped): %d rows in, %d duplicates, %d rows out, %d columns\n",
			res.Report.Sources, res.Files, len(res.Skipped), res.Report.RowsIn, res.Report.Duplicates,
			res.Report.RowsOut, len(res.Panel.Columns))
		fmt.Printf("Wrote %s\n", res.Output)
		return nil
	},
}

// mergeOptions combines flags with the merge section of the config
func mergeOptions() (service.MergeOptions, error) {
	opts := service.MergeOptions{
		Root:         firstNonEmpty(mergeFlags.root, cfg.Merge.Root),
		Output:       firstNonEmpty(mergeFlags.output, cfg.Merge.Output),
		TargetSchema: firstNonEmpty(mergeFlags.targetSchema, cfg.Merge.TargetSchema),
		Glob:         firstNonEmpty(mergeFlags.glob, cfg.Merge.Glob),
	}
	if opts.Root == "" {
		return opts, fmt.Errorf("--root is required")
	}
	if opts.Output == "" {
		return opts, fmt.Errorf("--output is required")
	}
	if raw := firstNonEmpty(mergeFlags.season, cfg.Merge.Season); raw != "" {
		season, err := models.ParseSeason(raw)
		if err != nil {
			return opts, fmt.Errorf("--season: %w", err)
		}
		opts.Season = season
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
