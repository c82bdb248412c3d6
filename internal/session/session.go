// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session tracks the runtime state of one configured tab: the
// current query text and the most recent result reference. The tab's files
// are the source of truth; the session is a cache that re-reads them
// lazily, so edits made outside oratab are picked up on the next reload.
//
// A session is a small state machine: Idle -> Editing -> Idle and
// Idle -> Executing -> Idle. The two never overlap; the UI rejects the
// competing command while one is in flight and keeps the other tabs
// interactive.
package session

import (
	"context"
	stderrors "errors"
	"os"
	"sync"

	"oratab/cli/internal/config"
	"oratab/cli/internal/errors"
	"oratab/cli/internal/extproc"
	"oratab/cli/internal/query"
)

// State is the session lifecycle state.
type State int

const (
	Idle State = iota
	Editing
	Executing
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Executing:
		return "executing"
	default:
		return "idle"
	}
}

// ErrBusy is returned when an edit and an execute would overlap on one tab.
var ErrBusy = stderrors.New("session is busy")

// Executor runs a query and materializes its results. *query.Runner is the
// production implementation; tests substitute fakes.
type Executor interface {
	Execute(ctx context.Context, name string, conn config.Connection, sqlText, resultsPath string) (*query.ResultRef, error)
}

// Session is the runtime state for one tab.
type Session struct {
	ID  string
	Tab config.Tab

	mu     sync.Mutex
	text   string
	result *query.ResultRef
	state  State
}

// Load creates the session for a tab. An absent SQL file is not fatal: the
// file may simply not exist yet on first run, so the query starts empty.
// An existing results file repopulates the result reference, so a restart
// does not lose the last run.
func Load(id string, tab config.Tab) (*Session, error) {
	s := &Session{ID: id, Tab: tab}

	text, err := readQueryFile(tab.SQLFile)
	if err != nil && !errors.IsKind(err, errors.MissingFile) {
		return nil, err
	}
	s.text = text

	if ref, err := query.ReadRef(tab.ResultsFile); err == nil {
		s.result = ref
	}
	return s, nil
}

// QueryText returns the cached query text.
func (s *Session) QueryText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Result returns the last result reference, or nil before any execution.
func (s *Session) Result() *query.ResultRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reload re-reads the SQL file into the cache. Outside edits win; the file
// is the source of truth.
func (s *Session) Reload() error {
	text, err := readQueryFile(s.Tab.SQLFile)
	if err != nil && !errors.IsKind(err, errors.MissingFile) {
		return err
	}
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	return nil
}

// Edit runs the editor bridge on the tab's SQL file and re-reads the file
// afterwards. The re-read happens even when the editor exits non-zero: the
// file may have changed anyway, which mirrors external-editor semantics.
func (s *Session) Edit(bridge *extproc.Bridge) error {
	if err := s.begin(Editing); err != nil {
		return err
	}
	defer s.end()

	runErr := bridge.Run(s.Tab.SQLFile)
	if err := s.Reload(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Execute sends the current query text to the named connection. On success
// the result reference is replaced; on failure it is left untouched and the
// error is returned for the status line.
func (s *Session) Execute(ctx context.Context, exec Executor, name string, conn config.Connection) (*query.ResultRef, error) {
	if err := s.begin(Executing); err != nil {
		return nil, err
	}
	defer s.end()

	s.mu.Lock()
	text := s.text
	s.mu.Unlock()

	ref, err := exec.Execute(ctx, name, conn, text, s.Tab.ResultsFile)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.result = ref
	s.mu.Unlock()
	return ref, nil
}

// Export runs the spreadsheet bridge on the results file. It fails when no
// execution has produced results for this tab yet.
func (s *Session) Export(bridge *extproc.Bridge) error {
	s.mu.Lock()
	ref := s.result
	s.mu.Unlock()
	if ref == nil {
		return errors.Newf(errors.MissingResults, "tab %s: execute a query before exporting", s.ID)
	}
	return bridge.Run(ref.Path)
}

// begin transitions Idle -> next, rejecting overlapping operations.
func (s *Session) begin(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return ErrBusy
	}
	s.state = next
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.state = Idle
	s.mu.Unlock()
}

// readQueryFile reads a SQL file, mapping absence to a missing_file error
// so callers can apply the treat-as-empty policy.
func readQueryFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.MissingFile, "sql file %s does not exist yet", path)
		}
		return "", errors.Wrap(errors.Configuration, "read sql file "+path, err)
	}
	return string(b), nil
}
