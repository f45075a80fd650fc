package health

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// NewRouter builds the liveness mux. Paths other than /health fall
// through to chi's not-found handler.
func NewRouter(log *slog.Logger, logFile string) *chi.Mux {
	mux := chi.NewMux()
	api := humachi.New(mux, huma.DefaultConfig("SMS Sync Health", "1.0.0"))

	NewHandler(log, logFile).SetupRoutes(api)

	return mux
}
