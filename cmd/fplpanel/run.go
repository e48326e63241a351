package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/fplpanel/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Combine panels, engineer features, predict and select a squad",
	Long: `Loads every season panel, resolves player identities, builds rolling
features, trains the configured model on the training window, scores the
evaluation gameweek and greedily selects a squad. An infeasible squad is
reported but is not an error.`,
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

		pipeline, err := d.newPipeline()
		if err != nil {
			return err
		}
		res, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}

		printRunSummary(res)
		return nil
	},
}

func printRunSummary(res *service.PipelineResult) {
	fmt.Printf("Panel: %d rows from %d sources, %d players\n", res.Rows, res.Merge.Sources, res.Identity.Players)
	fmt.Printf("Features: %d columns, %d training rows, %d evaluation rows\n",
		len(res.Features), res.TrainRows, res.EvalRows)
	if res.Evaluation.N > 0 {
		fmt.Printf("Evaluation: n=%d rmse=%.3f mae=%.3f\n", res.Evaluation.N, res.Evaluation.RMSE, res.Evaluation.MAE)
	}

	if res.Infeasible != nil {
		fmt.Printf("No squad selected: %v\n", res.Infeasible)
		return
	}

	sel := res.Selection
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POSITION\tPLAYER\tTEAM\tPRICE\tPREDICTED")
	for _, p := range sel.Picks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n", p.Position, p.FullName, p.Team, p.Price.StringFixed(1), *p.Score)
	}
	w.Flush()
	fmt.Printf("Total %s, remaining %s, predicted %.2f\n",
		sel.TotalPrice.StringFixed(1), sel.Remaining.StringFixed(1), sel.TotalScore())
}
