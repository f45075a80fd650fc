// Package health serves the process liveness endpoint consumed by the
// container scheduler. It has no view into sync state beyond checking
// that the log artifact exists.
package health

import (
	"context"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const serviceName = "sms-sync"

type Handler struct {
	log     *slog.Logger
	logFile string
	now     func() time.Time
}

func NewHandler(log *slog.Logger, logFile string) *Handler {
	return &Handler{
		log:     log.With("component", "health"),
		logFile: logFile,
		now:     time.Now,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.livenessOp(), h.liveness)
}

func (h *Handler) liveness(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("liveness request received")

	// A missing log file just means no run has happened yet; the process
	// itself is alive either way.
	if _, err := os.Stat(h.logFile); err != nil {
		h.log.Debug("log artifact not present", "path", h.logFile)
	}

	return &Output{
		Body: Response{
			Status:    "healthy",
			Timestamp: h.now().UTC().Format(time.RFC3339),
			Service:   serviceName,
		},
	}, nil
}
