package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/topthree/internal/backup"
	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/storage/sqlite"
	"github.com/julianstephens/topthree/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsStore checks are skipped when storage cannot be loaded.
	needsStore bool
	// warnOnly failures do not fail the command.
	warnOnly bool
	// gate marks the check that decides whether storage is reachable.
	gate bool
	run  func(*cli.Context) error
}

var checks = []check{
	{name: "Storage reachable", gate: true, run: checkStoreReachable},
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Data validation", needsStore: true, run: checkValidation},
	{name: "Backups present", needsStore: true, warnOnly: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Sync server", warnOnly: true, run: checkRemote},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	reachable := true
	for _, c := range checks {
		if c.needsStore && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			fmt.Println(failureLine(c.name, err))
			hasError = true
			if c.gate {
				reachable = false
			}
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func failureLine(name string, err error) string {
	return fmt.Sprintf("❌ %s: FAIL\n   %s", name, cerrors.Formatf("%v", err))
}

func checkStoreReachable(ctx *cli.Context) error {
	if _, err := ctx.Store.Get(constants.KeyHistory); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(versioned)
	if !ok {
		return nil
	}
	current, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	raw, err := rawHistory(ctx)
	if err != nil {
		return err
	}
	result := validation.ValidateHistory(raw)
	if result.Blocking() {
		return fmt.Errorf("%d conflict(s) found, run 'topthree validate'", len(result.Conflicts))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'topthree backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Config.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", ctx.Config.Timezone, err)
	}
	return nil
}

func checkRemote(ctx *cli.Context) error {
	if ctx.Offline || !ctx.Config.RemoteEnabled() {
		return nil
	}
	if _, err := ctx.APIToken(); err != nil {
		return fmt.Errorf("no API token (%v), run 'topthree login'", err)
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := strings.TrimRight(ctx.Config.Remote.URL, "/") + "/health"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("server health check returned %d", res.StatusCode)
	}
	return nil
}
