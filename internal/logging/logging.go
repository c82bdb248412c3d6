// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// While the TUI owns the terminal, all diagnostics go to a logrus logger
// backed by a file in the XDG state directory. Anything that might carry a
// DSN or password passes through Mask before it is written or displayed.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"oratab/cli/internal/xdg"
)

// FileName is the log file created under the XDG state dir.
const FileName = "oratab.log"

// Setup configures the shared logrus logger to write to the state-dir log
// file at the given level. Unknown levels fall back to info. When the state
// dir cannot be resolved the logger is silenced rather than spamming the
// terminal the TUI is drawing on.
func Setup(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	dir, err := xdg.StateDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return log
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return log
	}
	log.SetOutput(f)
	return log
}

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Mask(err.Error())
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}
