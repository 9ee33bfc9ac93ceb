package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source storage location (path, PostgreSQL URL, or 'keyring') to copy history from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized topthree storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
	}
	return nil
}

// reset deletes a local database file. Remote databases are never dropped.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		if _, ok := ctx.Store.(*storage.JSONStore); !ok {
			return fmt.Errorf("--force is only supported for local storage")
		}
	}

	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSrc, errSrc := filepath.Abs(c.Source)
		if errDB == nil && errSrc == nil && absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context, location string) error {
	source, err := cli.OpenStore(location)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source storage: %w", err)
	}
	defer source.Close()

	n, err := CopyRecords(storage.NewDailyRecordStore(source, nil), ctx.Records())
	if err != nil {
		return err
	}
	fmt.Printf("  Copied %d day(s) of history\n", n)
	return nil
}

// CopyRecords copies history, today's texts and every submission from src to dst.
func CopyRecords(src, dst *storage.DailyRecordStore) (int, error) {
	history := src.LoadHistory()
	if err := dst.SaveHistory(history); err != nil {
		return 0, fmt.Errorf("failed to save history: %w", err)
	}
	if err := dst.SaveTodayTexts(src.LoadTodayTexts()); err != nil {
		return 0, fmt.Errorf("failed to save slot texts: %w", err)
	}
	for _, date := range history.SortedDates() {
		sub := src.LoadSubmission(date)
		if sub == nil {
			continue
		}
		if err := dst.SaveSubmission(*sub); err != nil {
			return 0, fmt.Errorf("failed to save submission for %s: %w", date, err)
		}
	}
	return len(history), nil
}
