package storage

import "errors"

// ErrNotFound is returned by KV.Get for a key that has never been set.
var ErrNotFound = errors.New("key not found")

// KV is the string key-value persistence every backend provides.
// Set fully overwrites the previous value.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	KV

	// GetConfigPath returns a non-sensitive identifier for where data lives.
	GetConfigPath() string
}
