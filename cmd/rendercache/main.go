// Command rendercache drives the list render cache: it validates config
// files, runs a synthetic scrolling benchmark, and serves cache stats over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/rendercache/config"
	"github.com/IvanBrykalov/rendercache/internal/logging"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:           "rendercache",
		Short:         "Render cache for virtualized lists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rf.configPath, "config", "", "config file (.yaml, .yml or .json)")
	root.PersistentFlags().StringVar(&rf.logLevel, "log-level", "", "log level: debug | info | warn | error (overrides config)")
	root.PersistentFlags().StringVar(&rf.logFormat, "log-format", "", "log format: json | text (overrides config)")

	root.AddCommand(newValidateCmd(), newBenchCmd(rf), newServeCmd(rf))
	return root
}

// load resolves the effective config and installs the logger.
func (rf *rootFlags) load() (config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if rf.configPath != "" {
		loaded, err := config.Load(rf.configPath)
		if err != nil {
			return cfg, nil, err
		}
		cfg = *loaded
	}
	if rf.logLevel != "" {
		cfg.Log.Level = rf.logLevel
	}
	if rf.logFormat != "" {
		cfg.Log.Format = rf.logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, nil, err
	}
	return cfg, logging.Setup(cfg.Log.Level, cfg.Log.Format), nil
}
