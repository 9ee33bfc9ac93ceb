package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/notifier"
)

// NudgeCmd is meant for cron or a launchd timer.
type NudgeCmd struct {
	DryRun bool `help:"Print the reminder to stdout instead of sending it."`
}

func (c *NudgeCmd) Run(ctx *cli.Context) error {
	// Local state only; a nudge must never wait on the network
	offline := *ctx
	offline.Offline = true

	ctrl, err := offline.Controller(context.Background())
	if err != nil {
		return err
	}
	defer ctrl.Close()

	done := 0
	for _, s := range ctrl.Slots() {
		if s.Completed {
			done++
		}
	}
	msg, send := notifier.NudgeText(ctx.Config.Nudge.Message, ctrl.State(), done, ctrl.Stats().Streak)
	if !send {
		if c.DryRun {
			fmt.Println("Nothing to nudge about today.")
		}
		return nil
	}

	if c.DryRun {
		fmt.Println("[DryRun] " + msg)
		return nil
	}

	if err := notifier.New().Notify(context.Background(), msg); err != nil {
		if errors.Is(err, notifier.ErrTrayNotRunning) {
			logger.Debug("Tray app not running, skipping nudge")
			return nil
		}
		return fmt.Errorf("failed to send nudge: %w", err)
	}
	return nil
}
