// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"oratab/cli/internal/logging"
	"oratab/cli/internal/query"
)

var pingTimeout time.Duration

// pingCmd verifies connectivity for one named connection.
var pingCmd = &cobra.Command{
	Use:   "ping <connection>",
	Short: "Verify connectivity for a configured connection",
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
		log := logging.Setup(cfg.LogLevel)
		cfg.ResolvePasswords(secretSource(log))
		conn = cfg.Connections[name]

		runner := query.NewRunner(log)
		defer runner.Close()

		cursor.Hide()
		stopSpinner := startInlineSpinner(os.Stderr, "verifying connection to "+name,
			[]string{"-", "\\", "|", "/"}, 100*time.Millisecond)

		ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
		defer cancel()
		pingErr := runner.Ping(ctx, name, conn)

		stopSpinner()
		cursor.Show()

		if pingErr != nil {
			pterm.Println("❌ " + logging.PresentError("ping "+name, pingErr))
			return pingErr
		}
		pterm.Println("✅ Connection " + name + " is reachable")
		return nil
	},
}

func init() {
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 5*time.Second, "Connection timeout")
	rootCmd.AddCommand(pingCmd)
}

// startInlineSpinner starts a simple inline spinner animation on a single
// line and returns a function that stops it and clears the line.
func startInlineSpinner(w *os.File, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", len(line)))
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()
	return func() {
		close(stop)
		<-done
	}
}
