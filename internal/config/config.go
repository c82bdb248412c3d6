// Package config loads and validates the oratab configuration file.
// The file is TOML in the XDG config dir and declares the query tabs and
// the named database connections. Loading is strict: unknown keys and
// missing required keys are rejected with a descriptive error instead of
// being papered over with defaults. Passwords may be omitted from the file
// and resolved from the environment or the OS keychain instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"oratab/cli/internal/errors"
	"oratab/cli/internal/xdg"
)

// FileName is the config file expected under the XDG config dir.
const FileName = "oratab.toml"

// Driver names accepted in a connection's driver key.
const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// EnvPasswordPrefix is the prefix for per-connection password overrides,
// e.g. ORATAB_PASSWD_HR for the connection named "hr".
const EnvPasswordPrefix = "ORATAB_PASSWD_"

// Tab pairs one SQL source file with one CSV results file.
type Tab struct {
	SQLFile     string `toml:"sql_file"`
	ResultsFile string `toml:"results_file"`
}

// Connection is a named database endpoint descriptor.
type Connection struct {
	Desc     string `toml:"desc"`
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Passwd   string `toml:"passwd"`
}

// Config is the full oratab configuration.
type Config struct {
	LogLevel    string                `toml:"log_level"`
	Tabs        map[string]Tab        `toml:"tab"`
	Connections map[string]Connection `toml:"connections"`

	// Warnings collects non-fatal findings from validation, e.g. two tabs
	// sharing a results file (last writer wins).
	Warnings []string `toml:"-"`
}

// SecretSource resolves a password for a named connection. The OS keychain
// manager implements this; tests substitute a fake.
type SecretSource interface {
	ConnectionPassword(name string) (string, error)
}

// Path returns the expected location of the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config file from the XDG config dir.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, errors.Wrap(errors.Configuration, "resolve config dir", err)
	}
	return LoadFrom(p)
}

// LoadFrom reads and validates a config file at an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.Configuration, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.Configuration, "stat config file", err)
	}

	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, errors.Wrap(errors.Configuration, "parse config file", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf(errors.Configuration, "unknown config keys: %s", strings.Join(keys, ", "))
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.Tabs) == 0 {
		return errors.New(errors.Configuration, "no [tab.<N>] sections configured")
	}
	if len(c.Connections) == 0 {
		return errors.New(errors.Configuration, "no [connections.<name>] sections configured")
	}

	resultsSeen := map[string]string{}
	for _, id := range c.TabIDs() {
		tab := c.Tabs[id]
		if tab.SQLFile == "" {
			return errors.Newf(errors.Configuration, "tab.%s: sql_file is required", id)
		}
		if tab.ResultsFile == "" {
			return errors.Newf(errors.Configuration, "tab.%s: results_file is required", id)
		}
		if tab.SQLFile == tab.ResultsFile {
			return errors.Newf(errors.Configuration, "tab.%s: sql_file and results_file must be distinct", id)
		}
		if other, ok := resultsSeen[tab.ResultsFile]; ok {
			c.Warnings = append(c.Warnings, fmt.Sprintf(
				"tab.%s and tab.%s share results_file %s; last writer wins", other, id, tab.ResultsFile))
		} else {
			resultsSeen[tab.ResultsFile] = id
		}
	}

	for _, name := range c.ConnectionNames() {
		conn := c.Connections[name]
		if err := validateConnection(name, conn); err != nil {
			return err
		}
	}
	return nil
}

func validateConnection(name string, conn Connection) error {
	switch conn.Driver {
	case "", DriverOracle, DriverPostgres:
		if conn.Desc == "" {
			return errors.Newf(errors.Configuration, "connections.%s: desc is required", name)
		}
		if conn.Host == "" {
			return errors.Newf(errors.Configuration, "connections.%s: host is required", name)
		}
		if conn.Database == "" {
			return errors.Newf(errors.Configuration, "connections.%s: database is required", name)
		}
		if conn.User == "" {
			return errors.Newf(errors.Configuration, "connections.%s: user is required", name)
		}
	case DriverSQLite:
		if conn.Desc == "" {
			return errors.Newf(errors.Configuration, "connections.%s: desc is required", name)
		}
		if conn.Database == "" {
			return errors.Newf(errors.Configuration, "connections.%s: database (file path) is required", name)
		}
	default:
		return errors.Newf(errors.Configuration,
			"connections.%s: unknown driver %q (expected %s, %s or %s)",
			name, conn.Driver, DriverOracle, DriverPostgres, DriverSQLite)
	}
	if conn.Port < 0 || conn.Port > 65535 {
		return errors.Newf(errors.Configuration, "connections.%s: invalid port %d", name, conn.Port)
	}
	return nil
}

// TabIDs returns the tab identifiers in display order. Numeric identifiers
// sort numerically so tab.10 lands after tab.9, anything else sorts
// lexically after the numbers.
func (c *Config) TabIDs() []string {
	ids := make([]string, 0, len(c.Tabs))
	for id := range c.Tabs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, erri := strconv.Atoi(ids[i])
		nj, errj := strconv.Atoi(ids[j])
		switch {
		case erri == nil && errj == nil:
			return ni < nj
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

// ConnectionNames returns the connection names sorted for stable display.
func (c *Config) ConnectionNames() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnvPasswordVar returns the environment variable consulted for the named
// connection's password, e.g. ORATAB_PASSWD_HR for "hr".
func EnvPasswordVar(name string) string {
	up := strings.ToUpper(name)
	up = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, up)
	return EnvPasswordPrefix + up
}

// ResolvePasswords fills in empty passwords from the environment and then
// the secret source. Resolution order per connection: config value,
// ORATAB_PASSWD_<NAME>, keychain. A password that stays empty is not an
// error here; executing against that connection fails at the point of use.
func (c *Config) ResolvePasswords(secrets SecretSource) {
	for name, conn := range c.Connections {
		if conn.Passwd != "" || conn.Driver == DriverSQLite {
			continue
		}
		if env := os.Getenv(EnvPasswordVar(name)); env != "" {
			conn.Passwd = env
			c.Connections[name] = conn
			continue
		}
		if secrets == nil {
			continue
		}
		if pw, err := secrets.ConnectionPassword(name); err == nil && pw != "" {
			conn.Passwd = pw
			c.Connections[name] = conn
		}
	}
}
