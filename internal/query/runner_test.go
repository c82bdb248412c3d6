// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"oratab/cli/internal/config"
	"oratab/cli/internal/errors"
)

// sqliteConn creates a SQLite database with a small fixture table and
// returns the connection descriptor for it.
func sqliteConn(t *testing.T) (string, config.Connection) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	stmts := []string{
		`CREATE TABLE t (id INTEGER, val TEXT)`,
		`INSERT INTO t VALUES (1, 'a'), (2, 'b')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	return "fixture", config.Connection{Desc: "fixture", Driver: config.DriverSQLite, Database: dbPath}
}

func TestExecuteWritesDeterministicCSV(t *testing.T) {
	name, conn := sqliteConn(t)
	r := NewRunner(nil)
	defer r.Close()

	out := filepath.Join(t.TempDir(), "results.csv")
	ref, err := r.Execute(context.Background(), name, conn, "SELECT id, val FROM t ORDER BY id", out)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ref.Rows != 2 || len(ref.Columns) != 2 || ref.Columns[0] != "id" || ref.Columns[1] != "val" {
		t.Errorf("ResultRef = %+v", ref)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "id,val\n1,a\n2,b\n" {
		t.Errorf("results file = %q, want %q", got, "id,val\n1,a\n2,b\n")
	}
}

func TestExecuteZeroRowsWritesHeaderOnly(t *testing.T) {
	name, conn := sqliteConn(t)
	r := NewRunner(nil)
	defer r.Close()

	out := filepath.Join(t.TempDir(), "results.csv")
	ref, err := r.Execute(context.Background(), name, conn, "SELECT id, val FROM t WHERE id < 0", out)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ref.Rows != 0 {
		t.Errorf("Rows = %d, want 0", ref.Rows)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "id,val\n" {
		t.Errorf("results file = %q, want header only", got)
	}
}

func TestExecuteNullRendersEmpty(t *testing.T) {
	name, conn := sqliteConn(t)
	r := NewRunner(nil)
	defer r.Close()

	out := filepath.Join(t.TempDir(), "results.csv")
	_, err := r.Execute(context.Background(), name, conn, "SELECT NULL AS n, 'x' AS v", out)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	got, _ := os.ReadFile(out)
	if string(got) != "n,v\n,x\n" {
		t.Errorf("results file = %q, want %q", got, "n,v\n,x\n")
	}
}

func TestExecuteFailurePreservesResultsFile(t *testing.T) {
	name, conn := sqliteConn(t)
	r := NewRunner(nil)
	defer r.Close()

	out := filepath.Join(t.TempDir(), "results.csv")
	if _, err := r.Execute(context.Background(), name, conn, "SELECT id, val FROM t ORDER BY id", out); err != nil {
		t.Fatal(err)
	}

	_, err := r.Execute(context.Background(), name, conn, "SELECT * FROM no_such_table", out)
	if !errors.IsKind(err, errors.Query) {
		t.Fatalf("error = %v, want query kind", err)
	}

	got, _ := os.ReadFile(out)
	if string(got) != "id,val\n1,a\n2,b\n" {
		t.Errorf("results file after failure = %q, want previous content", got)
	}

	// The handle was discarded; the next execution reconnects and works.
	if _, err := r.Execute(context.Background(), name, conn, "SELECT id, val FROM t ORDER BY id", out); err != nil {
		t.Errorf("Execute() after reconnect: %v", err)
	}
}

func TestExecuteBlankQuery(t *testing.T) {
	r := NewRunner(nil)
	defer r.Close()
	_, err := r.Execute(context.Background(), "x", config.Connection{}, "  \n\t", "/tmp/unused.csv")
	if !errors.IsKind(err, errors.Query) {
		t.Errorf("error = %v, want query kind", err)
	}
}

func TestExecuteBadDescriptor(t *testing.T) {
	r := NewRunner(nil)
	defer r.Close()
	conn := config.Connection{Desc: "broken", Host: "db1", Database: "ORCL", User: "scott"} // no password
	_, err := r.Execute(context.Background(), "broken", conn, "SELECT 1 FROM dual", filepath.Join(t.TempDir(), "r.csv"))
	if !errors.IsKind(err, errors.Configuration) {
		t.Errorf("error = %v, want configuration kind", err)
	}
}

func TestSerializePerConnection(t *testing.T) {
	r := NewRunner(nil)
	defer r.Close()

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = r.serialize("shared", func() error {
			record("enter-1")
			time.Sleep(50 * time.Millisecond)
			record("exit-1")
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond) // ensure call order
	go func() {
		defer wg.Done()
		_ = r.serialize("shared", func() error {
			record("enter-2")
			record("exit-2")
			return nil
		})
	}()
	wg.Wait()

	want := []string{"enter-1", "exit-1", "enter-2", "exit-2"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v (no interleaving, call order preserved)", order, want)
		}
	}
}

func TestSerializeDistinctConnectionsDoNotBlock(t *testing.T) {
	r := NewRunner(nil)
	defer r.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = r.serialize("a", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	done := make(chan struct{})
	go func() {
		_ = r.serialize("b", func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("execution on connection b blocked behind connection a")
	}
	close(release)
}

func TestReadRef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.csv")
	if err := os.WriteFile(path, []byte("id,val\n1,a\n2,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ref, err := ReadRef(path)
	if err != nil {
		t.Fatalf("ReadRef() error: %v", err)
	}
	if ref.Rows != 2 || len(ref.Columns) != 2 {
		t.Errorf("ReadRef() = %+v", ref)
	}
}

func TestReadRefMissing(t *testing.T) {
	_, err := ReadRef(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.IsKind(err, errors.MissingResults) {
		t.Errorf("error = %v, want missing_results kind", err)
	}
}
