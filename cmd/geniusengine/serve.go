package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/leofalp/geniusengine/internal/api"
	"github.com/leofalp/geniusengine/providers/observability"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
type ServeCmd struct {
	Addr            string        `help:"Address to listen on" default:":3000" env:"GENIUSENGINE_ADDR"`
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests on shutdown" default:"15s"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(cli *CLI) error {
	observer := cli.newObserver()

	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	dispatcher := newDispatcher(cfg, observer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, provider := range dispatcher.Registry().Providers() {
		observer.Info(ctx, "provider",
			observability.String(observability.AttrLLMProvider, provider.ID().String()),
			observability.String(observability.AttrLLMModel, provider.Config().Model),
			observability.Bool("configured", provider.Config().HasCredential()),
		)
	}

	server := &http.Server{
		Addr:              c.Addr,
		Handler:           api.New(dispatcher, api.WithObserver(observer)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(observer.Logger().Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	observer.Info(ctx, "geniusengine listening", observability.String("addr", c.Addr))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	observer.Info(context.Background(), "received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	observer.Info(context.Background(), "geniusengine stopped")
	return nil
}
