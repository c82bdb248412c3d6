// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for oratab.
// The bare command launches the terminal UI; the subcommands cover the
// chores that are nicer outside a full-screen application: validating the
// config file, listing connections, storing passwords and pinging servers.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"oratab/cli/internal/config"
	"oratab/cli/internal/keychain"
	"oratab/cli/internal/logging"
	"oratab/cli/internal/query"
	"oratab/cli/internal/ui"
)

var (
	showVersion bool
	configPath  string
)

// rootCmd represents the base command. Without a subcommand it loads the
// configuration and starts the tview application.
var rootCmd = &cobra.Command{
	Use:   "oratab",
	Short: "Terminal SQL tabs for Oracle databases",
	Long: `oratab renders your configured query tabs in a terminal UI. Each tab pairs
one SQL file with one CSV results file; queries are edited in $EDITOR,
executed against a named connection, and exported to $SPREADSHEET.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("oratab %s\n", Version)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logging.Setup(cfg.LogLevel)
		for _, w := range cfg.Warnings {
			log.Warn(w)
		}
		cfg.ResolvePasswords(secretSource(log))

		runner := query.NewRunner(log)
		app, err := ui.New(cfg, runner, log, loadConfig)
		if err != nil {
			return err
		}
		log.Info("starting terminal UI")
		return app.Run()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: XDG config dir)")
}

// loadConfig honors the --config override and falls back to the XDG path.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// secretSource opens the OS keychain, or returns nil when no credential
// store is usable. Missing keychain support is never fatal; passwords can
// live in the config file or the environment instead.
func secretSource(log *logrus.Logger) config.SecretSource {
	m, err := keychain.GetManager()
	if err != nil {
		if log != nil {
			log.Debug("no credential store: ", err)
		}
		return nil
	}
	return m
}
