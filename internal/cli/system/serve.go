package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/julianstephens/topthree/internal/api"
	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/storage"
)

type ServeCmd struct {
	Host    string `help:"Address to listen on. Defaults to server.host."`
	Port    int    `help:"Port to listen on. Defaults to server.port."`
	Storage string `help:"Server storage location. Defaults to server.storage, then --db."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config.Server
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.Storage != "" {
		cfg.Storage = c.Storage
	}
	if len(cfg.Tokens) == 0 {
		return errors.New("no API tokens configured: add server.tokens to config.yaml")
	}

	store, err := serverStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	log := logger.With("component", "api")
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      api.NewServer(store, cfg.Tokens, log),
		ReadTimeout:  constants.ServerReadTimeout,
		WriteTimeout: constants.ServerWriteTimeout,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Sync server listening", "addr", srv.Addr, "storage", store.GetConfigPath(), "users", len(cfg.Tokens))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

// serverStore opens the server's storage, creating it on first use. An empty
// location reuses the client store.
func serverStore(ctx *cli.Context, location string) (storage.Provider, error) {
	if location == "" {
		return ctx.Store, ctx.Store.Init()
	}
	store, err := cli.OpenStore(location)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize server storage: %w", err)
	}
	return store, nil
}
