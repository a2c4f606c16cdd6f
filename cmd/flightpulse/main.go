package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FeelPulse/flightpulse/internal/config"
	"github.com/FeelPulse/flightpulse/internal/logger"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "flightpulse",
	Short: "FlightPulse - conversational flight search and booking",
	Long: `FlightPulse turns a plain-language request such as
"KUL to BKK next Friday, direct, under $400" into a flight search,
shows the best options and books the one you pick.`,
	SilenceUsage: true,
	RunE:         runInteractive,
}

func main() {
	rootCmd.AddCommand(runCmd, checkCmd, setupCmd, sandboxCmd, historyCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flightpulse/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
}

// loadConfig reads the config file and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	// package loggers hold the default logger, so configure it in place
	logger.GetDefaultLogger().SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.GetDefaultLogger().SetOutput(os.Stderr)
	return cfg, nil
}

// requireValid prints warnings and fails on validation errors
func requireValid(cfg *config.Config) error {
	result := cfg.Validate()
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", w)
	}
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("invalid configuration (run 'flightpulse setup'):\n  - %s", strings.Join(result.Errors, "\n  - "))
}
