// Package keyring keeps topthree's secrets in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/topthree/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func set(user, what, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetAPIToken returns the sync API token saved by 'topthree login'.
func GetAPIToken() (string, error) {
	return get(constants.DefaultKeyringUser)
}

func SetAPIToken(token string) error {
	return set(constants.DefaultKeyringUser, "API token", token)
}

func DeleteAPIToken() error {
	return del(constants.DefaultKeyringUser, "API token")
}

// GetConnectionString returns the stored PostgreSQL connection string.
// The string itself never carries a password; libpq reads that from the environment or .pgpass.
func GetConnectionString() (string, error) {
	return get(constants.KeyringConnUser)
}

func SetConnectionString(connStr string) error {
	return set(constants.KeyringConnUser, "connection string", connStr)
}

func DeleteConnectionString() error {
	return del(constants.KeyringConnUser, "connection string")
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
