// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package ui

import (
	"strings"
	"testing"

	"github.com/rivo/tview"
)

func TestRenderTable(t *testing.T) {
	table := tview.NewTable()
	renderTable(table, []string{"id", "val"}, [][]string{{"1", "a"}, {"2", "b"}})

	if got := table.GetRowCount(); got != 3 {
		t.Fatalf("GetRowCount() = %d, want 3 (header + 2 rows)", got)
	}
	if got := table.GetCell(0, 1).Text; got != "val" {
		t.Errorf("header cell = %q, want val", got)
	}
	if got := table.GetCell(2, 0).Text; got != "2" {
		t.Errorf("data cell = %q, want 2", got)
	}
}

func TestRenderTableRaggedRow(t *testing.T) {
	table := tview.NewTable()
	renderTable(table, []string{"a", "b"}, [][]string{{"only"}})
	if got := table.GetCell(1, 1).Text; got != "" {
		t.Errorf("missing cell = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := truncate(long, maxColWidth)
	if len([]rune(got)) != maxColWidth {
		t.Errorf("truncate() length = %d, want %d", len([]rune(got)), maxColWidth)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncate() = %q, want ellipsis suffix", got)
	}
}
