// Package main is the entry point for the oratab terminal SQL client.
// It renders configured query tabs in a tview UI and bridges to the
// user's editor and spreadsheet tools.
package main

import (
	"oratab/cli/cmd"
)

func main() {
	cmd.Execute()
}
