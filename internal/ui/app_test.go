// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package ui

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"oratab/cli/internal/config"
	"oratab/cli/internal/query"
)

func testApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Tabs: map[string]config.Tab{
			"1": {SQLFile: filepath.Join(dir, "q1.sql"), ResultsFile: filepath.Join(dir, "r1.csv")},
			"2": {SQLFile: filepath.Join(dir, "q2.sql"), ResultsFile: filepath.Join(dir, "r2.csv")},
		},
		Connections: map[string]config.Connection{
			"hr": {Desc: "HR", Host: "db1", Database: "HRPRD", User: "u", Passwd: "p"},
		},
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	a, err := New(cfg, query.NewRunner(log), log, func() (*config.Config, error) { return cfg, nil })
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestNewBuildsTabViews(t *testing.T) {
	a := testApp(t)
	if len(a.order) != 2 || a.order[0] != "1" || a.order[1] != "2" {
		t.Errorf("tab order = %v", a.order)
	}
	v := a.currentView()
	if v == nil || v.id != "1" {
		t.Fatalf("currentView() = %+v, want tab 1", v)
	}
}

func TestSelectTabWraps(t *testing.T) {
	a := testApp(t)
	a.selectTab(a.current + 1)
	if a.currentView().id != "2" {
		t.Errorf("current = %s, want 2", a.currentView().id)
	}
	a.selectTab(a.current + 1)
	if a.currentView().id != "1" {
		t.Errorf("current = %s, want wrap to 1", a.currentView().id)
	}
	a.selectTab(a.current - 1)
	if a.currentView().id != "2" {
		t.Errorf("current = %s, want wrap back to 2", a.currentView().id)
	}
}

func TestSessionsPrimedFromFiles(t *testing.T) {
	a := testApp(t)
	tab := a.cfg.Tabs["1"]
	if err := os.WriteFile(tab.SQLFile, []byte("select 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := a.views["1"].sess.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := a.views["1"].sess.QueryText(); got != "select 1" {
		t.Errorf("QueryText() = %q", got)
	}
}

func TestSelectedConnectionRequiresChoice(t *testing.T) {
	a := testApp(t)
	if _, _, ok := a.selectedConnection(); ok {
		t.Error("selectedConnection() = ok with nothing selected")
	}
}
