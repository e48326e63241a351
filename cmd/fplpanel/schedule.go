package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/fplpanel/internal/health"
	"github.com/yourusername/fplpanel/internal/metrics"
	"github.com/yourusername/fplpanel/internal/scheduler"
)

var scheduleFlags struct {
	runNow bool
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleFlags.runNow, "run-now", false, "Run once immediately before waiting for the first tick")
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run ingest and the pipeline on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := requireValidConfig(ctx); err != nil {
			return err
		}
		if cfg.Schedule.Cron == "" {
			return fmt.Errorf("schedule.cron is required")
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
		schedCfg := scheduler.Config{Pipeline: pipeline}
		if cfg.Schedule.Ingest {
			ingest, opts, err := d.newIngestion()
			if err != nil {
				return err
			}
			schedCfg.Ingest = ingest
			schedCfg.IngestOptions = opts
		}

		sched, err := scheduler.NewScheduler(schedCfg, appLog)
		if err != nil {
			return err
		}
		if err := sched.SchedulePipeline(cfg.Schedule.Cron); err != nil {
			return err
		}

		var srv *health.Server
		if cfg.Metrics.Enabled {
			srv = newHealthServer(d, sched)
			if err := srv.Start(ctx); err != nil {
				return err
			}
		}

		if scheduleFlags.runNow {
			_ = sched.RunOnce(ctx)
		}

		if err := sched.Start(); err != nil {
			return err
		}
		if srv != nil {
			srv.SetReady(true)
		}
		appLog.WithFields(logrus.Fields{
			"cron":     cfg.Schedule.Cron,
			"next_run": sched.GetNextRun(),
		}).Info("Waiting for scheduled runs")

		<-ctx.Done()
		appLog.Info("Shutdown signal received")
		if srv != nil {
			srv.SetReady(false)
		}
		return sched.Stop()
	},
}

func newHealthServer(d *deps, sched *scheduler.Scheduler) *health.Server {
	hcfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		Logger:      appLog,
		Metrics:     metrics.Handler(),
		MetricsPath: cfg.Metrics.Path,
		NextRun:     sched.GetNextRun,
	}
	if d.db != nil {
		hcfg.DB = d.db
	}
	if check := modelServiceCheck(); check != nil {
		hcfg.Checks = map[string]health.CheckFunc{"model_service": check}
	}
	return health.NewServer(hcfg)
}
