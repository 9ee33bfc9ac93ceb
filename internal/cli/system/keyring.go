package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/keyring"
	"github.com/julianstephens/topthree/internal/storage/postgres"
	"github.com/julianstephens/topthree/internal/utils"
)

// KeyringSetCmd stores a PostgreSQL connection string in the OS keyring.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !utils.IsPostgresURL(cmd.ConnectionString) && !strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println("⚠️  Connection string contains a password. It will be stored in the encrypted OS keyring as-is.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Println("✓ Connection string stored in OS keyring")
	fmt.Printf("  Use --db %s (or storage: %s in config.yaml) to connect with it\n", cli.KeyringLocation, cli.KeyringLocation)
	return nil
}

// KeyringGetCmd prints the stored connection string with its password masked.
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'topthree keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	fmt.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	fmt.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd reports keyring availability and which secrets are stored.
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")

	secrets := []struct {
		label string
		get   func() (string, error)
	}{
		{"Connection string", keyring.GetConnectionString},
		{"API token", keyring.GetAPIToken},
	}
	for _, s := range secrets {
		if _, err := s.get(); err == nil {
			fmt.Printf("✓ %s is stored\n", s.label)
		} else if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("ℹ No %s stored\n", strings.ToLower(s.label))
		}
	}
	return nil
}

// maskPassword hides the password in a URL or key=value connection string.
func maskPassword(connStr string) string {
	if utils.IsPostgresURL(connStr) {
		// url.Parse rejects some unescaped passwords, so split on the last '@'
		scheme, rest, _ := strings.Cut(connStr, "://")
		at := strings.LastIndex(rest, "@")
		if at == -1 {
			return connStr
		}
		user, _, hasPassword := strings.Cut(rest[:at], ":")
		if !hasPassword {
			return connStr
		}
		return scheme + "://" + user + ":****" + rest[at:]
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if k, _, ok := strings.Cut(f, "="); ok && strings.EqualFold(k, "password") {
			fields[i] = k + "=****"
		}
	}
	return strings.Join(fields, " ")
}
