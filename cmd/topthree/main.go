package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/cli/backups"
	"github.com/julianstephens/topthree/internal/cli/day"
	"github.com/julianstephens/topthree/internal/cli/system"
	"github.com/julianstephens/topthree/internal/config"
	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" env:"TOPTHREE_CONFIG_PATH"`
	DB      string `name:"db" help:"Storage location: SQLite path, .json file, PostgreSQL URL, 'keyring' or ':memory:'. Overrides the config file. For PostgreSQL, credentials must NOT be embedded in the connection string."`
	Debug   bool   `help:"Enable debug logging."`
	Offline bool   `help:"Never contact the sync server."`

	Init     system.InitCmd     `cmd:"" help:"Initialize topthree storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Today    day.TodayCmd       `cmd:"" help:"Show today's three tasks."`
	Set      day.SetCmd         `cmd:"" help:"Set the text of a task slot."`
	Toggle   day.ToggleCmd      `cmd:"" help:"Toggle completion of a task slot."`
	Submit   day.SubmitCmd      `cmd:"" help:"Submit today when all three tasks are done."`
	Stats    day.StatsCmd       `cmd:"" help:"Show streak, completions and heat."`
	Heat     day.HeatCmd        `cmd:"" help:"Show the heat timeline."`
	Validate system.ValidateCmd `cmd:"" help:"Validate stored history for conflicts."`
	Nudge    system.NudgeCmd    `cmd:"" help:"Send a reminder when today is unfinished."`
	Serve    system.ServeCmd    `cmd:"" help:"Run the sync server."`
	Login    system.LoginCmd    `cmd:"" help:"Store the sync API token in the OS keyring."`
	Logout   system.LogoutCmd   `cmd:"" help:"Remove the sync API token."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show keyring availability and stored secrets."`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

// skipLoad lists commands that open or create storage themselves.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"serve":   true,
	"login":   true,
	"logout":  true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Three tasks a day. Finish them, keep the streak."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		cerrors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		cerrors.Fatal(err)
	}

	configDir, err := utils.ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		cerrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	location := cfg.Storage
	if CLI.DB != "" {
		location = CLI.DB
	}
	store, err := cli.OpenStore(location)
	if err != nil {
		cerrors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:   store,
		Config:  cfg,
		Offline: CLI.Offline,
	}

	if cmd := kctx.Selected(); cmd != nil && !skipLoad[cmd.Name] && !(cmd.Parent != nil && cmd.Parent.Name == "keyring") {
		if err := store.Load(); err != nil {
			cerrors.Fatal(err)
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		cerrors.Fatal(err)
	}
}

