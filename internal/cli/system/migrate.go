package system

import (
	"fmt"

	"github.com/julianstephens/topthree/internal/cli"
)

// versioned is implemented by the SQL backends.
type versioned interface {
	Migrate() (int, error)
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Store.(versioned)
	if !ok {
		return fmt.Errorf("migrate command only supports SQL storage")
	}

	// Init opens without validating the version, then applies what is pending
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer ctx.Store.Close()

	current, _, err := store.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("Database is at schema version %d.\n", current)
	return nil
}
