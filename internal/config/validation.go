package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/yourusername/fplpanel/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("season", validateSeason)
	_ = v.RegisterValidation("position", validatePosition)
	_ = v.RegisterValidation("stat", validateStat)
	_ = v.RegisterValidation("cron", validateCron)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSeason accepts any form ParseSeason understands, e.g. 2324 or 2023-24
func validateSeason(fl validator.FieldLevel) bool {
	_, err := models.ParseSeason(fl.Field().String())
	return err == nil
}

func validatePosition(fl validator.FieldLevel) bool {
	_, ok := models.ParsePosition(fl.Field().String())
	return ok
}

func validateStat(fl validator.FieldLevel) bool {
	_, ok := models.StatByName(fl.Field().String())
	return ok
}

func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Features.TargetGW <= cfg.Features.TrainGWUntil {
		return fmt.Errorf("features.target_gw (%d) must be after features.train_gw_until (%d)",
			cfg.Features.TargetGW, cfg.Features.TrainGWUntil)
	}

	for i := 1; i < len(cfg.Features.Windows); i++ {
		if cfg.Features.Windows[i] <= cfg.Features.Windows[i-1] {
			return fmt.Errorf("features.windows must be strictly ascending, got %v", cfg.Features.Windows)
		}
	}

	current, train, err := cfg.Features.Seasons()
	if err != nil {
		return err
	}
	for _, s := range train {
		if s == current {
			return fmt.Errorf("features.current_season %d cannot also be a training season", current)
		}
	}

	formation, err := cfg.Selection.Positions()
	if err != nil {
		return err
	}
	total := 0
	for _, n := range formation {
		total += n
	}
	if total == 0 {
		return fmt.Errorf("selection.formation must require at least one player")
	}

	if cfg.Database.Enabled {
		var missing []string
		if cfg.Database.Host == "" {
			missing = append(missing, "host")
		}
		if cfg.Database.Name == "" {
			missing = append(missing, "name")
		}
		if cfg.Database.User == "" {
			missing = append(missing, "user")
		}
		if cfg.Database.Port == 0 {
			missing = append(missing, "port")
		}
		if len(missing) > 0 {
			return fmt.Errorf("database is enabled but missing: %s", strings.Join(missing, ", "))
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		return fmt.Errorf("metrics.port is required when metrics are enabled")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: %s, got '%v'\n", field, fieldError.Param(), value)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "season":
			errMsg += fmt.Sprintf("- Field '%s' must be a season such as 2324 or 2023-24, got '%v'\n", field, value)
		case "position":
			errMsg += fmt.Sprintf("- Field '%s' has unknown position '%v'\n", field, value)
		case "stat":
			errMsg += fmt.Sprintf("- Field '%s' has unknown statistic '%v'\n", field, value)
		case "cron":
			errMsg += fmt.Sprintf("- Field '%s' must be a standard cron expression, got '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
