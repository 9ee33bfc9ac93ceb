package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/topthree/internal/backup"
	"github.com/julianstephens/topthree/internal/config"
	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/keyring"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/remote"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/storage/postgres"
	"github.com/julianstephens/topthree/internal/storage/sqlite"
	"github.com/julianstephens/topthree/internal/today"
	"github.com/julianstephens/topthree/internal/utils"
)

// KeyringLocation selects the PostgreSQL connection string stored in the OS keyring.
const KeyringLocation = "keyring"

type Context struct {
	Store   storage.Provider
	Config  config.Config
	Offline bool

	// TokenFunc resolves the API token; nil means env then keyring.
	TokenFunc func() (string, error)
}

// OpenStore picks a backend from a storage location: a PostgreSQL URL or DSN,
// "keyring" for a connection string kept in the OS keyring, ":memory:", a
// .json file, or a SQLite database path.
func OpenStore(location string) (storage.Provider, error) {
	if location == KeyringLocation {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in keyring, run 'topthree keyring set' first")
			}
			return nil, err
		}
		// Credentials are allowed here since the keyring is encrypted
		if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("invalid connection string in keyring: %w", err)
		}
		return postgres.New(connStr), nil
	}

	if utils.IsPostgresURL(location) {
		if _, err := postgres.ValidateConnString(location); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; use 'topthree keyring set', PGPASSWORD or .pgpass")
			}
			return nil, err
		}
		return postgres.New(location), nil
	}

	if location == storage.MemoryLocation {
		return storage.NewMemoryStore(), nil
	}

	path, err := utils.ExpandPath(location)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// Records wraps the loaded store.
func (c *Context) Records() *storage.DailyRecordStore {
	return storage.NewDailyRecordStore(c.Store, nil)
}

// APIToken returns the sync token from the environment or the OS keyring.
func (c *Context) APIToken() (string, error) {
	if c.TokenFunc != nil {
		return c.TokenFunc()
	}
	if token := os.Getenv(constants.EnvAPIToken); token != "" {
		return token, nil
	}
	return keyring.GetAPIToken()
}

// RemoteClient builds the sync client, or returns nil when running local-only:
// --offline, no remote URL, or no token.
func (c *Context) RemoteClient() (*remote.Client, error) {
	if c.Offline || !c.Config.RemoteEnabled() {
		return nil, nil
	}
	token, err := c.APIToken()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("No API token, running local-only")
			return nil, nil
		}
		logger.Warn("Could not read API token, running local-only", "error", err)
		return nil, nil
	}
	return remote.NewClient(c.Config.Remote.URL, token, remote.WithTimeout(c.Config.Remote.Timeout))
}

// Controller builds and initializes today's controller. Callers must Close it.
func (c *Context) Controller(ctx context.Context) (*today.Controller, error) {
	loc, err := c.Config.Location()
	if err != nil {
		return nil, err
	}
	opts := []today.Option{today.WithLocation(loc)}

	client, err := c.RemoteClient()
	if err != nil {
		return nil, fmt.Errorf("invalid remote configuration: %w", err)
	}
	if client != nil {
		opts = append(opts, today.WithRemote(client))
	}

	ctrl := today.New(c.Records(), opts...)
	ctrl.Initialize(ctx)
	return ctrl, nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
