package system

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/config"
	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/keyring"
	"github.com/julianstephens/topthree/internal/storage"
)

func memoryContext(t *testing.T) *cli.Context {
	t.Helper()
	return &cli.Context{Store: storage.NewMemoryStore(), Config: config.Default(), Offline: true}
}

func TestValidateCmd(t *testing.T) {
	tests := []struct {
		name    string
		history string
		wantErr bool
	}{
		{name: "no history stored"},
		{name: "clean history", history: `{"2024-01-15":{"date":"2024-01-15"}}`},
		{name: "date mismatch", history: `{"2024-01-15":{"date":"2024-01-14"}}`, wantErr: true},
		{name: "invalid key", history: `{"yesterday":{"date":"yesterday"}}`, wantErr: true},
		{name: "undecodable", history: `[1,2`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := memoryContext(t)
			if tt.history != "" {
				if err := ctx.Store.Set(constants.KeyHistory, tt.history); err != nil {
					t.Fatal(err)
				}
			}
			err := (&ValidateCmd{}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCmd.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRawHistoryCorruption(t *testing.T) {
	ctx := memoryContext(t)
	if err := ctx.Store.Set(constants.KeyHistory, "nope"); err != nil {
		t.Fatal(err)
	}
	if _, err := rawHistory(ctx); !errors.Is(err, cerrors.ErrStorageCorruption) {
		t.Errorf("rawHistory() error = %v, want ErrStorageCorruption", err)
	}
}

func TestNudgeCmd_DryRun(t *testing.T) {
	ctx := memoryContext(t)
	ctx.Offline = false
	ctx.Config.Remote.URL = "http://127.0.0.1:1"

	if err := (&NudgeCmd{DryRun: true}).Run(ctx); err != nil {
		t.Errorf("NudgeCmd.Run() error = %v", err)
	}
	if ctx.Offline {
		t.Error("nudge must not change the caller's context")
	}
}

func TestLoginLogout(t *testing.T) {
	gokeyring.MockInit()
	ctx := memoryContext(t)
	if err := ctx.Records().SaveSyncMark("2024-01-14"); err != nil {
		t.Fatal(err)
	}

	if err := (&LoginCmd{Token: "  tok-123 "}).Run(ctx); err != nil {
		t.Fatalf("LoginCmd.Run() error = %v", err)
	}
	if mark := ctx.Records().LoadSyncMark(); mark != "" {
		t.Errorf("login should reset the sync mark, got %q", mark)
	}
	token, err := keyring.GetAPIToken()
	if err != nil {
		t.Fatalf("GetAPIToken() error = %v", err)
	}
	if token != "tok-123" {
		t.Errorf("stored token = %q, want tok-123", token)
	}

	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Fatalf("LogoutCmd.Run() error = %v", err)
	}
	if _, err := keyring.GetAPIToken(); !errors.Is(err, keyring.ErrNotFound) {
		t.Errorf("token still present after logout: %v", err)
	}
	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Errorf("second logout should be a no-op, got %v", err)
	}
}

func TestServerStore(t *testing.T) {
	ctx := memoryContext(t)

	store, err := serverStore(ctx, "")
	if err != nil {
		t.Fatalf("serverStore(\"\") error = %v", err)
	}
	if store != ctx.Store {
		t.Error("empty location should reuse the client store")
	}

	store, err = serverStore(ctx, storage.MemoryLocation)
	if err != nil {
		t.Fatalf("serverStore(memory) error = %v", err)
	}
	if store == ctx.Store {
		t.Error("explicit location should open a separate store")
	}
}
