// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"oratab/cli/internal/errors"
)

// writeResults writes the CSV results file: header row of column names,
// one row per result row. Zero rows still produce the header. The file is
// written to a temp sibling and renamed into place so a failure mid-write
// never clobbers the previous results.
func writeResults(path string, columns []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.Query, "create results dir", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrap(errors.Query, "create results file", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		return errors.Wrap(errors.Query, "write results header", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrap(errors.Query, "write results row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(errors.Query, "flush results", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.Query, "close results file", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.Query, "replace results file", err)
	}
	return nil
}

// ReadResults reads an existing results file back into memory: the header
// row of column names and the data rows. A missing file returns a
// missing_results error; a file that does not parse as CSV is treated the
// same way, since it cannot have been written by us.
func ReadResults(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Newf(errors.MissingResults, "no results file at %s", path)
		}
		return nil, nil, errors.Wrap(errors.MissingResults, "open results file", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, nil, errors.Wrap(errors.MissingResults, "read results header", err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.MissingResults, "read results rows", err)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// ReadRef rebuilds a ResultRef from an existing results file, so a restart
// does not lose the last run's row count and columns.
func ReadRef(path string) (*ResultRef, error) {
	header, rows, err := ReadResults(path)
	if err != nil {
		return nil, err
	}
	return &ResultRef{Path: path, Columns: header, Rows: len(rows)}, nil
}
