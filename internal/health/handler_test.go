package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestHandler_liveness(t *testing.T) {
	present := filepath.Join(t.TempDir(), "sync.log")
	require.NoError(t, os.WriteFile(present, []byte("started\n"), 0o644))

	tests := []struct {
		name    string
		logFile string
	}{
		{
			name:    "healthy with existing log file",
			logFile: present,
		},
		{
			name:    "healthy without log file",
			logFile: filepath.Join(t.TempDir(), "missing.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(slog.Default(), tt.logFile)
			handler.now = func() time.Time {
				return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
			}

			output, err := handler.liveness(context.Background(), &Input{})

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.Equal(t, "healthy", output.Body.Status)
			assert.Equal(t, "sms-sync", output.Body.Service)
			assert.Equal(t, "2024-03-01T10:00:00Z", output.Body.Timestamp)
		})
	}
}

func TestRouterUnknownPathReturnsNotFound(t *testing.T) {
	router := NewRouter(slog.Default(), "sync.log")

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterServesLiveness(t *testing.T) {
	router := NewRouter(slog.Default(), "sync.log")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
	assert.Contains(t, rec.Body.String(), "healthy")
}
