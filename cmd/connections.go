// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"oratab/cli/internal/config"
	"oratab/cli/internal/keychain"
)

// connectionsCmd lists the configured connections.
var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "List configured database connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rows := pterm.TableData{{"Name", "Description", "Driver", "Endpoint"}}
		for _, name := range cfg.ConnectionNames() {
			conn := cfg.Connections[name]
			rows = append(rows, []string{name, conn.Desc, driverLabel(conn), endpointLabel(conn)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

// setPasswordCmd stores a connection password in the OS keychain so the
// TOML file never has to contain it.
var setPasswordCmd = &cobra.Command{
	Use:   "set-password <connection>",
	Short: "Store a connection password in the OS keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, ok := cfg.Connections[name]
		if !ok {
			return fmt.Errorf("no connection named %q in the config", name)
		}
		if conn.Driver == config.DriverSQLite {
			return fmt.Errorf("connection %q is sqlite and needs no password", name)
		}

		fmt.Printf("Password for %s@%s: ", conn.User, conn.Host)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(pw)) == "" {
			return errors.New("empty password not stored")
		}

		km, err := keychain.GetManager()
		if err != nil {
			pterm.Println("❌ " + err.Error())
			return err
		}
		if err := km.SetConnectionPassword(name, string(pw)); err != nil {
			return err
		}
		pterm.Println("✅ Password stored for connection " + name)
		return nil
	},
}

// deletePasswordCmd removes a stored connection password.
var deletePasswordCmd = &cobra.Command{
	Use:   "delete-password <connection>",
	Short: "Remove a stored connection password from the OS keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.DeleteConnectionPassword(args[0]); err != nil {
			return err
		}
		pterm.Println("✅ Password removed for connection " + args[0])
		return nil
	},
}

func init() {
	connectionsCmd.AddCommand(setPasswordCmd)
	connectionsCmd.AddCommand(deletePasswordCmd)
	rootCmd.AddCommand(connectionsCmd)
}
