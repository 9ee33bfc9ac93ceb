package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/validation"
)

type ValidateCmd struct{}

// Run checks the history as stored, before the dropping and repair that
// normal reads apply.
func (c *ValidateCmd) Run(ctx *cli.Context) error {
	raw, err := rawHistory(ctx)
	if err != nil {
		return err
	}

	result := validation.ValidateHistory(raw)
	fmt.Printf("Checked %d day(s).\n", len(raw))
	fmt.Print(result.FormatReport())
	if !result.HasConflicts() {
		fmt.Println()
	}
	if result.Blocking() {
		return fmt.Errorf("%d conflict(s) found; affected days are ignored when loading", len(result.Conflicts))
	}
	return nil
}

func rawHistory(ctx *cli.Context) (models.History, error) {
	value, err := ctx.Store.Get(constants.KeyHistory)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.History{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	var h models.History
	if err := json.Unmarshal([]byte(value), &h); err != nil {
		return nil, fmt.Errorf("%w: history is not valid JSON: %v", cerrors.ErrStorageCorruption, err)
	}
	if h == nil {
		h = models.History{}
	}
	return h, nil
}
