// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/advisor-backtest/internal/config"
	"github.com/yourusername/advisor-backtest/internal/logger"
	"github.com/yourusername/advisor-backtest/internal/metrics"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
	log        *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")

	rootCmd.AddCommand(runCmd, analyzeCmd, historyCmd, scheduleCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Point-in-time backtests of an advisor's weekly trading decisions",
	Long: `Replays weekly BUY/SELL/HOLD decisions for one instrument using only data
available at each decision date, and compares the result with buy-and-hold.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(cmd.Context(), cmd); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		metrics.InitRegistry()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backtest %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file, the YAML configuration and, when enabled,
// the AWS Secrets Manager overlay. Command flags are applied before validation.
func loadConfig(ctx context.Context, cmd *cobra.Command) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	applyFlagOverrides(cmd, cfg)
	return config.Validate(cfg)
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}
	if changed("instrument") {
		cfg.Backtest.Instrument, _ = flags.GetString("instrument")
	}
	if changed("weeks") {
		cfg.Backtest.Weeks, _ = flags.GetInt("weeks")
	}
	if changed("capital") {
		cfg.Backtest.InitialCapital, _ = flags.GetFloat64("capital")
	}
	if changed("output") {
		cfg.Backtest.OutputPath, _ = flags.GetString("output")
	}
	if changed("history-csv") {
		cfg.Backtest.HistoryCSVPath, _ = flags.GetString("history-csv")
	}
	if changed("advisor") {
		cfg.Advisor.Type, _ = flags.GetString("advisor")
	}
}
