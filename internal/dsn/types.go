// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn assembles driver connection strings from configured
// connection descriptors. Each supported engine has its own builder that
// validates the descriptor's required fields and URL-escapes credentials,
// so passwords with special characters survive the round trip into the
// driver untouched.
package dsn

import "fmt"

// Default ports applied when a connection omits the port key.
const (
	DefaultOraclePort   = 1521
	DefaultPostgresPort = 5432
)

// BuildError describes a descriptor that cannot be turned into a DSN.
type BuildError struct {
	Connection string
	Reason     string
	Hint       string
}

func (e *BuildError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("connection %q: %s\nHint: %s", e.Connection, e.Reason, e.Hint)
	}
	return fmt.Sprintf("connection %q: %s", e.Connection, e.Reason)
}

// NewBuildError creates a new BuildError.
func NewBuildError(conn, reason, hint string) *BuildError {
	return &BuildError{
		Connection: conn,
		Reason:     reason,
		Hint:       hint,
	}
}
