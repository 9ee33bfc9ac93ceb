package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/keyring"
	"github.com/julianstephens/topthree/internal/logger"
)

// LoginCmd stores the sync API token in the OS keyring.
type LoginCmd struct {
	Token string `help:"API token. Prompted for when omitted." env:"TOPTHREE_API_TOKEN"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	token := strings.TrimSpace(c.Token)
	if token == "" {
		err := huh.NewInput().
			Title("API token").
			Description(fmt.Sprintf("Token for %s", ctx.Config.Remote.URL)).
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("token cannot be empty")
				}
				return nil
			}).
			Value(&token).
			Run()
		if err != nil {
			return err
		}
		token = strings.TrimSpace(token)
	}

	if err := keyring.SetAPIToken(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	resetSyncMark(ctx)
	fmt.Println("✓ Logged in. Today will sync with the server.")
	if !ctx.Config.RemoteEnabled() {
		fmt.Println("  Set remote.url in config.yaml (or TOPTHREE_API_URL) to enable sync.")
	}
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("Not logged in.")
			return nil
		}
		return fmt.Errorf("failed to remove token: %w", err)
	}
	resetSyncMark(ctx)
	fmt.Println("✓ Logged out. topthree will run local-only.")
	return nil
}

// resetSyncMark makes the next authenticated start check every past day
// against the server, which may belong to a different account.
func resetSyncMark(ctx *cli.Context) {
	if ctx.Store == nil {
		return
	}
	if err := ctx.Store.Load(); err != nil {
		logger.Debug("Storage not loaded, nothing to reset", "error", err)
		return
	}
	if err := ctx.Records().SaveSyncMark(""); err != nil {
		logger.Warn("Failed to reset sync mark", "error", err)
	}
}
