package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/contacts/internal/http/handlers/contact"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the contact book over a JSON REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully and writes the contact book back to storage.
func (a *app) serve(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		a.log.Error("failed to initialise storage", slog.String("error", err.Error()))
		return err
	}
	defer a.closeStore(store)

	router := http.NewServeMux()
	contact.Register(router, store)

	server := &http.Server{
		Addr:         a.cfg.HTTPServer.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server started", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.log.Error("server encountered an error", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return err
	}

	a.log.Info("server stopped gracefully")
	return nil
}
