// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"oratab/cli/internal/query"
)

const (
	maxColWidth    = 40
	minColWidth    = 8
	maxDisplayRows = 1000
)

// renderResults re-reads the tab's results file and fills the table. The
// file, not the in-memory reference, is the source of truth for cell data.
func (a *App) renderResults(v *tabView, ref *query.ResultRef) {
	columns, rows, err := query.ReadResults(ref.Path)
	if err != nil {
		a.statusError("render results", err)
		return
	}

	truncated := false
	if len(rows) > maxDisplayRows {
		rows = rows[:maxDisplayRows]
		truncated = true
	}
	renderTable(v.table, columns, rows)

	title := fmt.Sprintf(" Results (%d rows) — %s ", ref.Rows, ref.Path)
	if truncated {
		title = fmt.Sprintf(" Results (%d rows, showing %d) — %s ", ref.Rows, maxDisplayRows, ref.Path)
	}
	v.table.SetTitle(title)
	if len(rows) > 0 {
		v.table.Select(1, 0)
	}
}

// renderTable fills a tview table with a bold header row and the data rows,
// clamping column widths so one wide value cannot push the rest offscreen.
func renderTable(table *tview.Table, columns []string, rows [][]string) {
	table.Clear()

	widths := make([]int, len(columns))
	for c, name := range columns {
		w := len(name)
		if w < minColWidth {
			w = minColWidth
		}
		for r := 0; r < len(rows) && r < 5; r++ {
			if c < len(rows[r]) && len(rows[r][c]) > w {
				w = len(rows[r][c])
			}
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		widths[c] = w
	}

	for c, name := range columns {
		cell := tview.NewTableCell(name).
			SetSelectable(true).
			SetAttributes(tcell.AttrBold).
			SetMaxWidth(widths[c])
		table.SetCell(0, c, cell)
	}
	for r, row := range rows {
		for c := range columns {
			s := ""
			if c < len(row) {
				s = row[c]
			}
			if len(s) > widths[c] {
				s = truncate(s, widths[c])
			}
			table.SetCell(r+1, c, tview.NewTableCell(s).SetMaxWidth(widths[c]))
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
