// Package config provides configuration management for the advisor backtester.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("datasource", validateDataSource)
	_ = v.RegisterValidation("advisor", validateAdvisor)
	_ = v.RegisterValidation("storage", validateStorage)

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
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateDataSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "polygon", "csv":
		return true
	default:
		return false
	}
}

func validateAdvisor(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "rule", "http":
		return true
	default:
		return false
	}
}

func validateStorage(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "none", "postgres", "sqlite":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Backtest.MinRequiredBars > cfg.Backtest.LookbackBars {
		return fmt.Errorf("min_required_bars cannot exceed lookback_bars")
	}

	if cfg.Indicators.EMAFast >= cfg.Indicators.EMASlow {
		return fmt.Errorf("ema_fast must be shorter than ema_slow")
	}
	if cfg.Indicators.MACDFast >= cfg.Indicators.MACDSlow {
		return fmt.Errorf("macd_fast must be shorter than macd_slow")
	}

	if cfg.Risk.StopLossMin > cfg.Risk.StopLossMax {
		return fmt.Errorf("stop_loss_min cannot exceed stop_loss_max")
	}
	if cfg.Risk.TakeProfitMin > cfg.Risk.TakeProfitMax {
		return fmt.Errorf("take_profit_min cannot exceed take_profit_max")
	}
	if cfg.Risk.PositionSizeMin > cfg.Risk.PositionSizeMax {
		return fmt.Errorf("position_size_min cannot exceed position_size_max")
	}

	if cfg.Signal.RSIOversold >= cfg.Signal.RSIOverbought {
		return fmt.Errorf("rsi_oversold must be below rsi_overbought")
	}

	switch cfg.DataSource.Provider {
	case "polygon":
		if cfg.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for the polygon provider")
		}
	case "csv":
		if cfg.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv provider")
		}
	}

	if cfg.Advisor.Type == "http" && cfg.Advisor.URL == "" {
		return fmt.Errorf("advisor.url is required for the http advisor")
	}

	if cfg.Storage.Driver == "postgres" {
		if cfg.Storage.Database.User == "" || cfg.Storage.Database.Password == "" {
			return fmt.Errorf("storage.database user and password are required for postgres")
		}
		if cfg.IsProduction() && cfg.Storage.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required for sqlite")
	}

	if cfg.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule.cron expression: %w", err)
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "datasource":
			fmt.Fprintf(&b, "- Field '%s' must be one of: polygon, csv\n", field)
		case "advisor":
			fmt.Fprintf(&b, "- Field '%s' must be one of: rule, http\n", field)
		case "storage":
			fmt.Fprintf(&b, "- Field '%s' must be one of: none, postgres, sqlite\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() && cfg.App.LogLevel == "debug" {
		return fmt.Errorf("debug logging should not be enabled in production")
	}
	if cfg.IsProduction() && os.Getenv("ENVIRONMENT") != "production" {
		return fmt.Errorf("ENVIRONMENT must be set to production when app.environment is production")
	}
	return nil
}
