// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package extproc

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"oratab/cli/internal/errors"
)

func TestLookupTool(t *testing.T) {
	t.Setenv(EditorEnv, "vim")
	tool, err := LookupTool(EditorEnv)
	if err != nil || tool != "vim" {
		t.Errorf("LookupTool() = %q, %v", tool, err)
	}

	t.Setenv(SpreadsheetEnv, "")
	if _, err := LookupTool(SpreadsheetEnv); !errors.IsKind(err, errors.Configuration) {
		t.Errorf("LookupTool(unset) error = %v, want configuration kind", err)
	}
}

func quietBridge(tool string) *Bridge {
	return &Bridge{Tool: tool, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
}

func TestRunSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh test scripts")
	}
	if err := quietBridge("true").Run("ignored"); err != nil {
		t.Errorf("Run(true) = %v", err)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh test scripts")
	}
	err := quietBridge("false").Run("ignored")
	if !errors.IsKind(err, errors.ExternalTool) {
		t.Errorf("Run(false) error = %v, want external_tool kind", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	err := quietBridge("oratab-no-such-binary").Run("ignored")
	if !errors.IsKind(err, errors.ExternalTool) {
		t.Errorf("Run(missing) error = %v, want external_tool kind", err)
	}
}

func TestRunPassesFileArgument(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh test scripts")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nprintf 'edited' >> \"$1\"\n"), 0o700); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "query.sql")

	if err := quietBridge(script).Run(target); err != nil {
		t.Fatalf("Run(script) = %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "edited" {
		t.Errorf("target content = %q, want %q", got, "edited")
	}
}
