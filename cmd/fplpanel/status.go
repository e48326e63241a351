package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/fplpanel/internal/health"
	"github.com/yourusername/fplpanel/internal/ml"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the model service and database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		if err := requireValidConfig(ctx); err != nil {
			return err
		}

		fmt.Printf("fplpanel %s (%s)\n\n", Version, cfg.App.Environment)

		fmt.Printf("Model: %s\n", cfg.Model.Type)
		if check := modelServiceCheck(); check != nil {
			if err := check(ctx); err != nil {
				fmt.Printf("  Service: UNAVAILABLE (%v)\n", err)
			} else {
				fmt.Println("  Service: ONLINE")
			}
		}

		fmt.Println("\nDatabase:")
		if !cfg.Database.Enabled {
			fmt.Println("  disabled")
			return nil
		}
		d, err := setupDependencies(ctx)
		if err != nil {
			fmt.Printf("  UNAVAILABLE (%v)\n", err)
			return nil
		}
		defer d.Close()
		if err := d.db.HealthCheck(ctx); err != nil {
			fmt.Printf("  UNAVAILABLE (%v)\n", err)
			return nil
		}
		fmt.Println("  ONLINE")
		displayDatabaseStats(ctx, d)
		return nil
	},
}

func displayDatabaseStats(ctx context.Context, d *deps) {
	counts, err := d.repos.Panel.CountBySeason(ctx)
	if err != nil {
		fmt.Printf("  Panel rows: error (%v)\n", err)
	} else {
		seasons := make([]int, 0, len(counts))
		for s := range counts {
			seasons = append(seasons, s)
		}
		sort.Ints(seasons)
		for _, s := range seasons {
			fmt.Printf("  Panel rows %d: %d\n", s, counts[s])
		}
	}

	runs, err := d.repos.Run.List(ctx, 5)
	if err != nil {
		fmt.Printf("  Recent runs: error (%v)\n", err)
		return
	}
	fmt.Println("  Recent runs:")
	for _, r := range runs {
		line := fmt.Sprintf("    %s %-8s %-10s in=%d out=%d", r.StartedAt.Format(time.RFC3339), r.Kind, r.Status, r.RowsIn, r.RowsOut)
		if r.Error != "" {
			line += " error=" + r.Error
		}
		fmt.Println(line)
	}
}

// modelServiceCheck probes the remote model service. The gRPC health
// endpoint is preferred when configured. Local models need no check.
func modelServiceCheck() health.CheckFunc {
	if cfg.Model.Type != "remote" {
		return nil
	}
	if cfg.Model.GRPCAddress != "" {
		return func(ctx context.Context) error {
			return ml.ProbeGRPC(ctx, cfg.Model.GRPCAddress, cfg.Model.ServiceName, cfg.Model.RequestTimeout())
		}
	}
	return func(ctx context.Context) error {
		reg, err := ml.NewRegressor(cfg.Model, nil, appLog)
		if err != nil {
			return err
		}
		checker, ok := reg.(ml.HealthChecker)
		if !ok {
			return nil
		}
		return checker.HealthCheck(ctx)
	}
}
