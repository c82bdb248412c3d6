// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package ui renders the configured tabs in a tview terminal application.
// Each tab shows its SQL file content and the last results table; editing
// happens in $EDITOR via terminal suspend, execution runs on a background
// goroutine and posts back through QueueUpdateDraw so the other tabs stay
// interactive while one is busy.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"oratab/cli/internal/config"
	"oratab/cli/internal/query"
	"oratab/cli/internal/session"
)

// tabView groups the widgets for one configured tab.
type tabView struct {
	id    string
	sess  *session.Session
	query *tview.TextView
	table *tview.Table
	flex  *tview.Flex
}

// App is the oratab terminal application.
type App struct {
	cfg    *config.Config
	runner *query.Runner
	log    *logrus.Logger
	reload func() (*config.Config, error)

	app        *tview.Application
	pages      *tview.Pages
	tabBar     *tview.TextView
	connSelect *tview.DropDown
	status     *tview.TextView

	order   []string // tab ids in display order
	views   map[string]*tabView
	current int
}

// New builds the application from the loaded config. Session state is
// primed from the tabs' files, so a restart keeps the last results.
// reload re-reads the config file for F2; it must honor the same path the
// initial load used.
func New(cfg *config.Config, runner *query.Runner, log *logrus.Logger, reload func() (*config.Config, error)) (*App, error) {
	a := &App{
		cfg:    cfg,
		runner: runner,
		log:    log,
		reload: reload,
		app:    tview.NewApplication(),
		views:  make(map[string]*tabView),
	}

	for _, id := range cfg.TabIDs() {
		tab := cfg.Tabs[id]
		sess, err := session.Load(id, tab)
		if err != nil {
			return nil, err
		}
		a.order = append(a.order, id)
		a.views[id] = a.newTabView(sess)
	}
	a.buildLayout()
	return a, nil
}

func (a *App) newTabView(sess *session.Session) *tabView {
	v := &tabView{id: sess.ID, sess: sess}

	v.query = tview.NewTextView().SetDynamicColors(false).SetScrollable(true)
	v.query.SetBorder(true).SetTitle(fmt.Sprintf(" Query %s — %s (F3 to edit) ", sess.ID, sess.Tab.SQLFile))
	v.query.SetText(sess.QueryText())

	v.table = tview.NewTable().SetFixed(1, 0).SetSelectable(true, true)
	v.table.SetBorder(true).SetTitle(" Results ")

	v.flex = tview.NewFlex().SetDirection(tview.FlexRow)
	v.flex.AddItem(v.query, 0, 1, false)
	v.flex.AddItem(v.table, 0, 2, true)
	return v
}

func (a *App) buildLayout() {
	a.tabBar = tview.NewTextView().SetDynamicColors(true)
	a.connSelect = tview.NewDropDown().SetLabel(" Connection: ")
	for _, name := range a.cfg.ConnectionNames() {
		conn := a.cfg.Connections[name]
		a.connSelect.AddOption(fmt.Sprintf("%s (%s)", conn.Desc, name), nil)
	}
	a.status = tview.NewTextView().SetDynamicColors(true)

	a.pages = tview.NewPages()
	for _, id := range a.order {
		v := a.views[id]
		a.pages.AddPage(id, v.flex, true, false)
		if ref := v.sess.Result(); ref != nil {
			a.renderResults(v, ref)
		}
	}

	a.app.SetInputCapture(a.handleKey)
	a.setStatus("[yellow]F2[white] reload  [yellow]F3[white] edit  [yellow]F5[white] execute  [yellow]x[white] export  [yellow]?[white] about  [yellow]Ctrl-Q[white] quit")
	a.selectTab(0)
}

// Run starts the event loop and blocks until quit.
func (a *App) Run() error {
	flex := tview.NewFlex().SetDirection(tview.FlexRow)
	flex.AddItem(a.tabBar, 1, 0, false)
	flex.AddItem(a.connSelect, 1, 0, false)
	flex.AddItem(a.pages, 0, 1, true)
	flex.AddItem(a.status, 1, 0, false)

	defer a.runner.Close()
	return a.app.SetRoot(flex, true).EnableMouse(true).Run()
}

// currentView returns the visible tab's view.
func (a *App) currentView() *tabView {
	if len(a.order) == 0 {
		return nil
	}
	return a.views[a.order[a.current]]
}

func (a *App) selectTab(i int) {
	if len(a.order) == 0 {
		return
	}
	if i < 0 {
		i = len(a.order) - 1
	}
	a.current = i % len(a.order)
	a.pages.SwitchToPage(a.order[a.current])
	a.redrawTabBar()
}

func (a *App) redrawTabBar() {
	bar := ""
	for i, id := range a.order {
		if i == a.current {
			bar += fmt.Sprintf("[black:aqua] %s [-:-] ", id)
		} else {
			bar += fmt.Sprintf("[aqua] %s [-] ", id)
		}
	}
	a.tabBar.SetText(bar)
}

// setStatus writes a message to the status line. Callers pass already
// masked text; errors go through statusError instead.
func (a *App) setStatus(format string, args ...any) {
	a.status.SetText(fmt.Sprintf(format, args...))
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyF2:
		a.reloadConfig()
		return nil
	case tcell.KeyF3:
		a.editCurrent()
		return nil
	case tcell.KeyF5:
		a.executeCurrent()
		return nil
	case tcell.KeyCtrlN:
		a.selectTab(a.current + 1)
		return nil
	case tcell.KeyCtrlP:
		a.selectTab(a.current - 1)
		return nil
	case tcell.KeyCtrlQ:
		a.app.Stop()
		return nil
	}

	switch r := ev.Rune(); {
	case r == 'x':
		a.exportCurrent()
		return nil
	case r == '?':
		a.setStatus("oratab — terminal SQL tabs for Oracle. F3 edits in $EDITOR, F5 executes, x exports to $SPREADSHEET.")
		return nil
	case r >= '1' && r <= '9':
		idx := int(r - '1')
		if idx < len(a.order) {
			a.selectTab(idx)
			return nil
		}
	}
	return ev
}

// selectedConnection resolves the dropdown selection to a named connection.
func (a *App) selectedConnection() (string, config.Connection, bool) {
	idx, _ := a.connSelect.GetCurrentOption()
	names := a.cfg.ConnectionNames()
	if idx < 0 || idx >= len(names) {
		return "", config.Connection{}, false
	}
	name := names[idx]
	return name, a.cfg.Connections[name], true
}
