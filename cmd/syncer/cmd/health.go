package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/faroucksc/sms-sync/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Serve the liveness endpoint",
	Long: `Starts the HTTP liveness server for the container scheduler.
GET /health reports process liveness; all other paths return 404.`,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.Health.Address,
		Handler: health.NewRouter(log, cfg.Logger.LogFile),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("health server listening", "address", cfg.Health.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("health server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server shutdown: %w", err)
	}
	log.Info("health server stopped")
	return nil
}
