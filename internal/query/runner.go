// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query executes a tab's SQL against a named connection and
// materializes the results into the tab's CSV file.
//
// The Runner owns the mapping from connection names to live database
// handles. A handle is opened lazily on the first execution for a name and
// reused afterwards; this is pooling by identifier, not a general pool. A
// failed query taints its handle: the handle is closed and dropped, and the
// next execution reconnects. Executions are serialized per connection name
// so two tabs sharing a connection never interleave on the wire.
package query

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sijms/go-ora/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"oratab/cli/internal/config"
	"oratab/cli/internal/dsn"
	"oratab/cli/internal/errors"
)

// ResultRef describes the most recent materialized result set for a tab.
type ResultRef struct {
	Path    string
	Columns []string
	Rows    int
}

// Runner executes queries over lazily opened per-connection handles.
type Runner struct {
	mu      sync.Mutex
	handles map[string]*sql.DB
	locks   map[string]*sync.Mutex
	log     *logrus.Logger
}

// NewRunner creates a Runner. The logger may be nil.
func NewRunner(log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{
		handles: make(map[string]*sql.DB),
		locks:   make(map[string]*sync.Mutex),
		log:     log,
	}
}

// connLock returns the serialization mutex for a connection name.
func (r *Runner) connLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[name]
	if !ok {
		l = &sync.Mutex{}
		r.locks[name] = l
	}
	return l
}

// serialize runs fn while holding the connection's mutex.
func (r *Runner) serialize(name string, fn func() error) error {
	l := r.connLock(name)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// handle returns the live handle for name, opening and pinging it first if
// none exists. Callers must hold the connection lock.
func (r *Runner) handle(ctx context.Context, name string, conn config.Connection) (*sql.DB, error) {
	r.mu.Lock()
	db, ok := r.handles[name]
	r.mu.Unlock()
	if ok {
		return db, nil
	}

	driver, err := dsn.DriverName(conn.Driver)
	if err != nil {
		return nil, errors.Wrap(errors.Configuration, "connection "+name, err)
	}
	connStr, err := dsn.Build(name, conn)
	if err != nil {
		return nil, errors.Wrap(errors.Configuration, "connection "+name, err)
	}

	db, err = sql.Open(driver, connStr)
	if err != nil {
		return nil, errors.Wrap(errors.Query, "open connection "+name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.Query, "connect to "+name, err)
	}

	r.mu.Lock()
	r.handles[name] = db
	r.mu.Unlock()
	r.log.WithField("connection", name).Debug("opened database handle")
	return db, nil
}

// discard drops the handle for name. The next execution reconnects.
func (r *Runner) discard(name string) {
	r.mu.Lock()
	db, ok := r.handles[name]
	delete(r.handles, name)
	r.mu.Unlock()
	if ok {
		_ = db.Close()
		r.log.WithField("connection", name).Debug("discarded tainted database handle")
	}
}

// Execute runs sqlText against the named connection and writes the rows to
// resultsPath as CSV (header row of column names, one row per result row,
// NULL rendered as empty). The write is atomic: the previous results file
// survives any failure. On a driver error the handle is discarded and a
// query-kind error carrying the driver message is returned.
func (r *Runner) Execute(ctx context.Context, name string, conn config.Connection, sqlText, resultsPath string) (*ResultRef, error) {
	if isBlank(sqlText) {
		return nil, errors.New(errors.Query, "query text is empty")
	}

	var ref *ResultRef
	err := r.serialize(name, func() error {
		db, err := r.handle(ctx, name, conn)
		if err != nil {
			return err
		}

		rows, err := db.QueryContext(ctx, sqlText)
		if err != nil {
			r.discard(name)
			return errors.Wrap(errors.Query, "execute on "+name, err)
		}
		defer func() { _ = rows.Close() }()

		columns, data, err := scanRows(rows)
		if err != nil {
			r.discard(name)
			return errors.Wrap(errors.Query, "read rows from "+name, err)
		}

		if err := writeResults(resultsPath, columns, data); err != nil {
			return err
		}
		ref = &ResultRef{Path: resultsPath, Columns: columns, Rows: len(data)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{"connection": name, "rows": ref.Rows}).Info("query executed")
	return ref, nil
}

// Ping verifies connectivity for the named connection, opening the handle
// if needed. A failed ping discards the handle.
func (r *Runner) Ping(ctx context.Context, name string, conn config.Connection) error {
	return r.serialize(name, func() error {
		db, err := r.handle(ctx, name, conn)
		if err != nil {
			return err
		}
		if err := db.PingContext(ctx); err != nil {
			r.discard(name)
			return errors.Wrap(errors.Query, "ping "+name, err)
		}
		return nil
	})
}

// Close releases every open handle.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, db := range r.handles {
		_ = db.Close()
		delete(r.handles, name)
	}
}

// scanRows drains rows into string cells. Every column is scanned as
// NullString so drivers with exotic column types still render; NULL becomes
// the empty string, which keeps the CSV round-trippable.
func scanRows(rows *sql.Rows) ([]string, [][]string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var data [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, data, nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
