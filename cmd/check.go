// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"oratab/cli/internal/config"
	"oratab/cli/internal/logging"
)

// checkCmd validates the configuration file and reports what oratab would
// run with, passwords masked. Useful after editing the TOML by hand.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	Long: `The check command loads the oratab configuration, applies the same strict
validation the TUI uses, and prints the resulting tabs and connections.
Passwords are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			path, err = config.Path()
			if err != nil {
				return err
			}
		}

		cfg, err := config.LoadFrom(path)
		if err != nil {
			pterm.Println("❌ " + logging.Mask(err.Error()))
			return err
		}

		pterm.Println("✅ " + path)
		pterm.Println()

		tabRows := pterm.TableData{{"Tab", "SQL file", "Results file"}}
		for _, id := range cfg.TabIDs() {
			tab := cfg.Tabs[id]
			tabRows = append(tabRows, []string{id, tab.SQLFile, tab.ResultsFile})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(tabRows).Render(); err != nil {
			return err
		}
		pterm.Println()

		connRows := pterm.TableData{{"Connection", "Description", "Driver", "Endpoint", "Password"}}
		for _, name := range cfg.ConnectionNames() {
			conn := cfg.Connections[name]
			connRows = append(connRows, []string{
				name, conn.Desc, driverLabel(conn), endpointLabel(conn), passwordLabel(name, conn),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(connRows).Render(); err != nil {
			return err
		}

		for _, w := range cfg.Warnings {
			pterm.Println()
			pterm.Println("⚠️  " + w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func driverLabel(conn config.Connection) string {
	if conn.Driver == "" {
		return config.DriverOracle
	}
	return conn.Driver
}

func endpointLabel(conn config.Connection) string {
	if conn.Driver == config.DriverSQLite {
		return conn.Database
	}
	host := conn.Host
	if conn.Port != 0 {
		host = fmt.Sprintf("%s:%d", conn.Host, conn.Port)
	}
	return fmt.Sprintf("%s@%s/%s", conn.User, host, conn.Database)
}

// passwordLabel says where a password would come from without revealing it.
func passwordLabel(name string, conn config.Connection) string {
	switch {
	case conn.Driver == config.DriverSQLite:
		return "n/a"
	case conn.Passwd != "":
		return "config"
	default:
		return "env/keychain (" + config.EnvPasswordVar(name) + ")"
	}
}
