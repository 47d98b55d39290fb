package main

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"exodash/internal/config"
	"exodash/internal/engine"
	"exodash/internal/logging"
)

// Version is set with -ldflags "-X main.Version=..." by release builds.
var Version string

var rootCmd = &cobra.Command{
	Use:           "exodash",
	Short:         "Interactive dashboard for the NASA exoplanet dataset.",
	Long:          "Serves a single-page dashboard that charts the NASA exoplanet table, and renders or exports it from the command line.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println("exodash", version())
			return nil
		}
		// no subcommand: serve
		return runServe(cmd, args)
	},
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown version)"
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("data", "", "path to the exoplanet CSV")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("version", false, "print the version and exit")
	addServeFlags(rootCmd)

	rootCmd.AddCommand(serveCmd, renderCmd, exportCmd)
}

// setup loads the configuration, configures logging and loads the table.
// The caller releases the table.
func setup(cmd *cobra.Command) (config.Config, *engine.Table, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		return config.Config{}, nil, err
	}
	table, err := engine.LoadTable(cfg.DataPath, cfg.Columns)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, table, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
