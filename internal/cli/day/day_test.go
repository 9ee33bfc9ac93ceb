package day

import (
	"errors"
	"testing"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/config"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/storage"
)

func newContext() *cli.Context {
	return &cli.Context{
		Store:   storage.NewMemoryStore(),
		Config:  config.Default(),
		Offline: true,
	}
}

func TestSlotIndex(t *testing.T) {
	for _, s := range []Slot{0, 4, -1} {
		if _, err := s.index(); !errors.Is(err, cerrors.ErrSlotIndex) {
			t.Errorf("Slot(%d).index() error = %v, want ErrSlotIndex", s, err)
		}
	}
	if i, err := Slot(3).index(); err != nil || i != 2 {
		t.Errorf("Slot(3).index() = %d, %v", i, err)
	}
}

func TestSetToggleSubmit(t *testing.T) {
	ctx := newContext()

	if err := (&SetCmd{Slot: 1, Text: []string{"write", "report"}}).Run(ctx); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := ctx.Records().LoadTodayTexts()[0]; got != "write report" {
		t.Errorf("slot 1 text = %q", got)
	}

	if err := (&ToggleCmd{Slot: 2}).Run(ctx); err == nil {
		t.Error("toggling an empty slot should fail")
	}
	if err := (&ToggleCmd{Slot: 1}).Run(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := (&SubmitCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Second submit is a no-op
	if err := (&SubmitCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if err := (&TodayCmd{}).Run(ctx); err != nil {
		t.Errorf("today: %v", err)
	}
	if err := (&StatsCmd{}).Run(ctx); err != nil {
		t.Errorf("stats: %v", err)
	}
}

func TestSetClearsSlot(t *testing.T) {
	ctx := newContext()
	if err := (&SetCmd{Slot: 2, Text: []string{"x"}}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&SetCmd{Slot: 2}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Records().LoadTodayTexts()[1]; got != "" {
		t.Errorf("slot 2 text = %q, want empty", got)
	}
}

func TestHeatCmd(t *testing.T) {
	ctx := newContext()
	if err := (&HeatCmd{Days: 0}).Run(ctx); err == nil {
		t.Error("expected error for zero days")
	}
	if err := (&HeatCmd{Days: 7}).Run(ctx); err != nil {
		t.Errorf("heat: %v", err)
	}
}
