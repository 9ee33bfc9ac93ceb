// Package day holds the commands that read and edit today's three slots.
package day

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/heat"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/streak"
	"github.com/julianstephens/topthree/internal/today"
	"github.com/julianstephens/topthree/internal/tui/components/heatbar"
)

// Slot is a 1-based slot number as typed by the user.
type Slot int

func (s Slot) index() (int, error) {
	if s < 1 || int(s) > constants.SlotCount {
		return 0, fmt.Errorf("%w: slot must be between 1 and %d", cerrors.ErrSlotIndex, constants.SlotCount)
	}
	return int(s) - 1, nil
}

func withController(ctx *cli.Context, fn func(*today.Controller) error) error {
	ctrl, err := ctx.Controller(context.Background())
	if err != nil {
		return err
	}
	defer ctrl.Close()
	return fn(ctrl)
}

func printSlots(ctrl *today.Controller) {
	now := ctrl.Now()
	fmt.Printf("%s  (%s)\n\n", now.Format("Monday, January 2"), ctrl.State())
	for i, slot := range ctrl.Slots() {
		check := " "
		if slot.Completed {
			check = "x"
		}
		text := slot.Text
		if strings.TrimSpace(text) == "" {
			text = "(empty)"
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, check, text)
	}
	if sub := ctrl.Submission(); sub != nil {
		fmt.Printf("\nSubmitted %s\n", humanize.Time(sub.SubmittedAt))
	}
}

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	return withController(ctx, func(ctrl *today.Controller) error {
		printSlots(ctrl)
		return nil
	})
}

type SetCmd struct {
	Slot Slot     `arg:"" help:"Slot number (1-3)."`
	Text []string `arg:"" optional:"" help:"Task text. Omit to clear the slot."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	index, err := c.Slot.index()
	if err != nil {
		return err
	}
	return withController(ctx, func(ctrl *today.Controller) error {
		if err := ctrl.SetSlotText(index, strings.Join(c.Text, " ")); err != nil {
			return err
		}
		printSlots(ctrl)
		return nil
	})
}

type ToggleCmd struct {
	Slot Slot `arg:"" help:"Slot number (1-3)."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	index, err := c.Slot.index()
	if err != nil {
		return err
	}
	return withController(ctx, func(ctrl *today.Controller) error {
		if err := ctrl.ToggleSlot(index); err != nil {
			var ve *cerrors.ValidationError
			if errors.As(err, &ve) {
				return fmt.Errorf("slot %d: %s", ve.Slot+1, ve.Message)
			}
			return err
		}
		printSlots(ctrl)
		return nil
	})
}

type SubmitCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *SubmitCmd) Run(ctx *cli.Context) error {
	return withController(ctx, func(ctrl *today.Controller) error {
		if ctrl.State() == models.DaySubmitted {
			fmt.Println("Today is already submitted.")
			return nil
		}

		if !c.Yes {
			done := 0
			for _, s := range ctrl.Slots() {
				if s.Completed {
					done++
				}
			}
			confirmed := false
			err := huh.NewConfirm().
				Title("Submit today?").
				Description(fmt.Sprintf("%d/%d done. A submitted day cannot be reopened.", done, constants.SlotCount)).
				Affirmative("Submit").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Submit cancelled.")
				return nil
			}
		}

		outcome, err := ctrl.Submit(context.Background())
		if err != nil {
			return err
		}
		if outcome == today.AlreadySubmitted {
			fmt.Println("Today was already submitted on another device.")
			return nil
		}
		fmt.Println("✓ Day submitted")
		return nil
	})
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	return withController(ctx, func(ctrl *today.Controller) error {
		stats := ctrl.Stats()
		fmt.Printf("Streak:       %s day(s)\n", humanize.Comma(int64(stats.Streak)))
		fmt.Printf("Completions:  %s\n", humanize.Comma(int64(stats.TotalCompletions)))
		fmt.Printf("Heat:         %s %d/%d\n", heatbar.Flames(stats.HeatLevel), stats.HeatLevel, heat.MaxLevel)
		if stats.Streak > 0 {
			started := streak.StreakStart(ctrl.Now(), stats.Streak)
			fmt.Printf("Momentum:     %dh (streak started %s)\n", stats.MomentumHours, humanize.Time(started))
		} else {
			fmt.Println("Momentum:     no active streak")
		}
		if !ctrl.Authenticated() {
			fmt.Println("\nLocal stats (not synced)")
		}
		return nil
	})
}

type HeatCmd struct {
	Days int `help:"Number of days to show." default:"14"`
}

func (c *HeatCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	return withController(ctx, func(ctrl *today.Controller) error {
		days := ctrl.Timeline(c.Days)
		fmt.Println(heatbar.Render(days))
		fmt.Println()
		for _, d := range days {
			mark := heatbar.MissCell
			switch {
			case d.Full():
				mark = heatbar.FullCell
			case d.Completed > 0:
				mark = heatbar.PartialCell
			}
			fmt.Printf("  %s  %s  %d/%d  heat %d\n", d.Date, mark, d.Completed, constants.SlotCount, d.Level)
		}
		return nil
	})
}
