package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) livenessOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness endpoint",
		Description: "Reports process liveness for the container scheduler",
		Tags:        []string{"health"},
	}
}
