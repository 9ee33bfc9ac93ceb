package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl, err := ctx.Controller(runCtx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	p := tea.NewProgram(tui.NewModel(runCtx, ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
