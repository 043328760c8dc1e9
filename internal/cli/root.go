package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stockdash/internal/config"
	"stockdash/internal/logger"
)

// RootConfig carries the persistent flags and what PersistentPreRunE builds
// from them.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string

	Config *config.Config
	Log    *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "stockdash",
		Short:         "stockdash: load metrics files into SQLite and compare two tickers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite database (default from config, newstock_data.db)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rc.ConfigPath)
		if err != nil {
			return err
		}
		if rc.DBPath != "" {
			cfg.Store.Path = rc.DBPath
		}
		if rc.LogLevel != "" {
			cfg.Log.Level = rc.LogLevel
		}
		rc.Config = cfg
		rc.Log = logger.New(cmd.ErrOrStderr(), cfg.Log.Level)
		return nil
	}

	cmd.AddCommand(
		newLoadCmd(rc),
		newServeCmd(rc),
		newCompareCmd(rc),
		newYearsCmd(rc),
		newTablesCmd(rc),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
