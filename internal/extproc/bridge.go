// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package extproc launches the user's external tools against a tab's files.
// The editor bridge opens a tab's SQL file in $EDITOR and the export bridge
// opens a results file in $SPREADSHEET. Both are scoped launches: spawn the
// program with the target file as its only argument, hand it the terminal,
// and wait for it to exit on every path. A non-zero exit is reported as a
// recoverable error; there is no retry and no way to cancel the child from
// our side once it is running.
package extproc

import (
	"io"
	"os"
	"os/exec"

	"oratab/cli/internal/errors"
)

// Environment variables naming the external tools.
const (
	EditorEnv      = "EDITOR"
	SpreadsheetEnv = "SPREADSHEET"
)

// LookupTool resolves the command named by envVar. Absence is reported at
// invocation time, not at startup, so a user who never exports never needs
// SPREADSHEET set.
func LookupTool(envVar string) (string, error) {
	tool := os.Getenv(envVar)
	if tool == "" {
		return "", errors.Newf(errors.Configuration, "%s is not set; export it to use this command", envVar)
	}
	return tool, nil
}

// Bridge runs one external tool. The zero streams default to the process
// terminal; tests substitute buffers.
type Bridge struct {
	Tool   string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a bridge for the given tool wired to the process terminal.
func New(tool string) *Bridge {
	return &Bridge{
		Tool:   tool,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// FromEnv creates a bridge for the tool named by envVar.
func FromEnv(envVar string) (*Bridge, error) {
	tool, err := LookupTool(envVar)
	if err != nil {
		return nil, err
	}
	return New(tool), nil
}

// Run launches the tool with file as its only argument and blocks until the
// process exits. Start failures and non-zero exits both surface as
// external_tool errors; the caller decides whether to retry.
func (b *Bridge) Run(file string) error {
	cmd := exec.Command(b.Tool, file)
	cmd.Stdin = b.Stdin
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr

	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.ExternalTool, "start "+b.Tool, err)
	}
	if err := cmd.Wait(); err != nil {
		return errors.Wrap(errors.ExternalTool, b.Tool+" failed", err)
	}
	return nil
}
