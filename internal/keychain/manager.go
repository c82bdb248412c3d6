// Copyright (c) 2025 Oratab
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores connection passwords in the OS credential store,
// so the TOML config file never has to contain a secret. Each configured
// connection gets one keychain entry; lookups are thread-safe and the
// manager is shared process-wide.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies the oratab keychain/credential store namespace.
const ServiceName = "oratab"

// passwordKeyPrefix prefixes per-connection password entries.
const passwordKeyPrefix = "conn_passwd_"

var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager creates a new keychain manager with the OS keyring opened.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	globalManager, globalError = NewManager()
	if globalError != nil {
		globalManager = nil
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// No file fallback: a secret either lands in a real credential store or
// the caller keeps it in the environment instead.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.PassBackend,
		}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, errors.New("no usable OS credential store found; keep passwords in ORATAB_PASSWD_<NAME> instead")
	}
	return ring, nil
}

// SetConnectionPassword stores the password for a named connection.
// This method is thread-safe.
func (m *Manager) SetConnectionPassword(name, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{
		Key:   passwordKeyPrefix + name,
		Data:  []byte(password),
		Label: "oratab connection " + name,
	})
}

// ConnectionPassword retrieves the password for a named connection. It
// satisfies config.SecretSource. This method is thread-safe.
func (m *Manager) ConnectionPassword(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, err := m.ring.Get(passwordKeyPrefix + name)
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

// DeleteConnectionPassword removes the stored password for a connection.
// Removing an entry that does not exist is not an error.
func (m *Manager) DeleteConnectionPassword(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.ring.Remove(passwordKeyPrefix + name)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
