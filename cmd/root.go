// Package cmd implements the circ command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/circ/internal/config"
	"github.com/zjrosen/circ/internal/log"
	"github.com/zjrosen/circ/internal/telemetry"
)

var (
	cfgFile     string
	memberEmail string
	cfg         config.Config

	telemetryShutdown telemetry.Shutdown
)

var rootCmd = &cobra.Command{
	Use:   "circ",
	Short: "Library circulation ledger",
	Long: `circ tracks a small library's lending ledger: members borrow and
return books, accrue overdue penalties, pay them down, and search the
catalog.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			if err := telemetryShutdown(context.Background()); err != nil {
				log.ErrorErr(log.CatCLI, "Telemetry shutdown failed", err)
			}
		}
		return log.Close()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.circ/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the library database file")
	rootCmd.PersistentFlags().StringVarP(&memberEmail, "member", "m", "", "member email for ledger operations")
}

// initApp loads configuration (file, CIRC_* environment, flags) and wires
// logging and telemetry before any command runs.
func initApp(cmd *cobra.Command, args []string) error {
	v := viper.New()

	defaults := config.Defaults()
	v.SetDefault("database_path", defaults.DatabasePath)
	v.SetDefault("page_size", defaults.PageSize)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("telemetry.enabled", defaults.Telemetry.Enabled)
	v.SetDefault("telemetry.exporter", defaults.Telemetry.Exporter)
	v.SetDefault("telemetry.endpoint", defaults.Telemetry.Endpoint)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".circ"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CIRC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("database_path", cmd.Flags().Lookup("db")); err != nil {
		return fmt.Errorf("binding db flag: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	telemetryShutdown = shutdown

	log.Debug(log.CatCLI, "Configuration loaded", "db", cfg.DatabasePath, "page_size", cfg.PageSize)
	return nil
}
