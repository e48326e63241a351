package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/fplpanel/internal/models"
)

var ingestFlags struct {
	season string
	output string
	limit  int
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestFlags.season, "season", "", "Season tag for the ingested rows (default api.season)")
	f.StringVar(&ingestFlags.output, "output", "", "Season panel CSV to write (default api.output)")
	f.IntVar(&ingestFlags.limit, "limit", 0, "Fetch at most this many players")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch the current season from the FPL API into a panel CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := requireValidConfig(ctx); err != nil {
			return err
		}

		d, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		svc, opts, err := d.newIngestion()
		if err != nil {
			return err
		}
		if ingestFlags.season != "" {
			if opts.Season, err = models.ParseSeason(ingestFlags.season); err != nil {
				return fmt.Errorf("--season: %w", err)
			}
		}
		if ingestFlags.output != "" {
			opts.Output = ingestFlags.output
		}
		opts.Limit = ingestFlags.limit

		res, err := svc.Ingest(ctx, opts)
		if err != nil {
			return err
		}

		fmt.Printf("Ingested %d players (%d failed), %d rows\n", res.Players, res.Failed, res.Rows)
		fmt.Printf("Wrote %s\n", res.Output)
		return nil
	},
}
