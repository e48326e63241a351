// Package main provides the fplpanel command line entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/fplpanel/internal/config"
	"github.com/yourusername/fplpanel/internal/database"
	"github.com/yourusername/fplpanel/internal/datasource"
	"github.com/yourusername/fplpanel/internal/logger"
	"github.com/yourusername/fplpanel/internal/metrics"
	"github.com/yourusername/fplpanel/internal/ml"
	"github.com/yourusername/fplpanel/internal/panel"
	"github.com/yourusername/fplpanel/internal/repository"
	"github.com/yourusername/fplpanel/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// exit codes
const (
	exitError         = 1
	exitNoUsableInput = 2
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.AddCommand(mergeCmd, ingestCmd, runCmd, scheduleCmd, statusCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "fplpanel",
	Short:         "Build FPL player panels, engineer features and pick a squad",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel)
		metrics.InitRegistry()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fplpanel %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, panel.ErrNoUsableInput) {
			os.Exit(exitNoUsableInput)
		}
		os.Exit(exitError)
	}
}

// loadConfig reads the config file if present. Commands that talk to the
// API, the model service or the database call requireValidConfig as well.
func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	return err
}

// requireValidConfig overlays AWS secrets when configured and validates
func requireValidConfig(ctx context.Context) error {
	if cfg.App.SecretsName != "" {
		if cfg.App.SecretsRegion == "" {
			return fmt.Errorf("app.secrets_region must be set when app.secrets_name is")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, cfg.App.SecretsRegion, cfg.App.SecretsName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Debug("Configuration loaded and validated")
	return nil
}

// deps holds the wiring shared by the commands
type deps struct {
	db      *database.DB
	repos   *repository.Repositories
	tracker *service.RunTracker
	sources *datasource.Factory
}

// setupDependencies connects to the database when enabled. A disabled
// database leaves repos nil and runs are only logged.
func setupDependencies(ctx context.Context) (*deps, error) {
	d := &deps{sources: datasource.NewFactory(cfg, appLog)}

	db, err := database.Initialize(ctx, cfg, appLog)
	switch {
	case errors.Is(err, database.ErrDisabled):
		d.tracker = service.NewRunTracker(nil, appLog)
		return d, nil
	case err != nil:
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	d.db = db
	d.repos = repos
	d.tracker = service.NewRunTracker(repos.Run, appLog)
	return d, nil
}

func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

func (d *deps) panelRepository() repository.PanelRepository {
	if d.repos == nil {
		return nil
	}
	return d.repos.Panel
}

// newPipeline wires the full pipeline from configuration
func (d *deps) newPipeline() (*service.PipelineService, error) {
	pcfg, err := service.PipelineConfigFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	merge := service.NewMergeService(d.sources.NewTableSource(), nil, appLog)
	factory := func(features []string) (ml.Regressor, error) {
		return ml.NewRegressor(cfg.Model, features, appLog)
	}
	return service.NewPipelineService(pcfg, merge, factory, d.panelRepository(), d.tracker, appLog)
}

// newIngestion wires the API ingestion and its options from configuration
func (d *deps) newIngestion() (*service.IngestionService, service.IngestOptions, error) {
	season, err := cfg.API.SeasonOrdinal()
	if err != nil {
		return nil, service.IngestOptions{}, err
	}
	source, err := d.sources.NewPlayerSource()
	if err != nil {
		return nil, service.IngestOptions{}, err
	}
	svc := service.NewIngestionService(source, d.tracker, appLog)
	return svc, service.IngestOptions{Season: season, Output: cfg.API.Output}, nil
}
