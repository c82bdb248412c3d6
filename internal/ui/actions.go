// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package ui

import (
	"context"
	stderrors "errors"

	"oratab/cli/internal/config"
	"oratab/cli/internal/extproc"
	"oratab/cli/internal/keychain"
	"oratab/cli/internal/logging"
	"oratab/cli/internal/session"
)

// statusError reports an error on the status line, masked. Nothing here is
// allowed to crash the event loop; every failure ends up as a red line.
func (a *App) statusError(op string, err error) {
	if stderrors.Is(err, session.ErrBusy) {
		a.setStatus("[yellow]Tab %s is busy; wait for the current operation to finish", a.order[a.current])
		return
	}
	a.log.WithField("op", op).Warn(logging.Mask(err.Error()))
	a.setStatus("[red]%s", logging.PresentError(op, err))
}

// editCurrent suspends the terminal and opens the tab's SQL file in
// $EDITOR. The session re-reads the file afterwards either way.
func (a *App) editCurrent() {
	v := a.currentView()
	if v == nil {
		return
	}
	bridge, err := extproc.FromEnv(extproc.EditorEnv)
	if err != nil {
		a.statusError("edit", err)
		return
	}

	var editErr error
	a.app.Suspend(func() {
		editErr = v.sess.Edit(bridge)
	})
	v.query.SetText(v.sess.QueryText())
	if editErr != nil {
		a.statusError("edit", editErr)
		return
	}
	a.setStatus("[green]Reloaded query for tab %s", v.id)
}

// executeCurrent runs the tab's query on a background goroutine against
// the selected connection. The session state machine rejects a second
// operation on the same tab; other tabs stay interactive.
func (a *App) executeCurrent() {
	v := a.currentView()
	if v == nil {
		return
	}
	name, conn, ok := a.selectedConnection()
	if !ok {
		a.setStatus("[yellow]Select a connection first")
		return
	}

	a.setStatus("[yellow]Executing tab %s on %s...", v.id, name)
	go func() {
		ref, err := v.sess.Execute(context.Background(), a.runner, name, conn)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.statusError("execute", err)
				return
			}
			a.renderResults(v, ref)
			a.setStatus("[green]Fetched %d rows on %s into %s", ref.Rows, name, ref.Path)
		})
	}()
}

// exportCurrent suspends the terminal and opens the results file in
// $SPREADSHEET.
func (a *App) exportCurrent() {
	v := a.currentView()
	if v == nil {
		return
	}
	bridge, err := extproc.FromEnv(extproc.SpreadsheetEnv)
	if err != nil {
		a.statusError("export", err)
		return
	}

	var exportErr error
	a.app.Suspend(func() {
		exportErr = v.sess.Export(bridge)
	})
	if exportErr != nil {
		a.statusError("export", exportErr)
		return
	}
	a.setStatus("[green]Exported tab %s results", v.id)
}

// reloadConfig re-reads the config file. Connection definitions apply
// immediately; tab layout changes need a restart, which is reported rather
// than silently ignored.
func (a *App) reloadConfig() {
	cfg, err := a.reload()
	if err != nil {
		a.statusError("reload config", err)
		return
	}
	cfg.ResolvePasswords(a.secretSource())

	sameTabs := len(cfg.Tabs) == len(a.cfg.Tabs)
	if sameTabs {
		for id, tab := range cfg.Tabs {
			if a.cfg.Tabs[id] != tab {
				sameTabs = false
				break
			}
		}
	}

	a.cfg.Connections = cfg.Connections
	a.cfg.LogLevel = cfg.LogLevel
	a.connSelect.SetOptions(nil, nil)
	for _, name := range a.cfg.ConnectionNames() {
		conn := a.cfg.Connections[name]
		a.connSelect.AddOption(conn.Desc+" ("+name+")", nil)
	}

	if !sameTabs {
		a.setStatus("[yellow]Configuration reloaded; restart oratab to apply tab changes")
		return
	}
	a.setStatus("[green]Configuration reloaded")
}

// secretSource returns the keychain-backed password source, or nil when no
// credential store is usable on this system.
func (a *App) secretSource() config.SecretSource {
	m, err := keychain.GetManager()
	if err != nil {
		a.log.Debug("no credential store: ", err)
		return nil
	}
	return m
}
