package d1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/faroucksc/sms-sync/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.Cloudflare{
		BaseURL:    srv.URL,
		AccountID:  "acc",
		DatabaseID: "db",
		APIToken:   "token",
		TableName:  "sms_logs",
	}, 5*time.Second, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, slog.Default())

	return client, srv
}

func successBody(results string) string {
	return `{"success": true, "result": [{"success": true, "results": ` + results + `}]}`
}

func TestCount(t *testing.T) {
	var gotSQL string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SQL string `json:"sql"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotSQL = req.SQL

		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Write([]byte(successBody(`[{"count": 42}]`)))
	})

	count, err := client.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.Equal(t, "SELECT COUNT(*) as count FROM sms_logs", gotSQL)
}

func TestFetchBatch(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(successBody(`[
			{"id": 1, "source": "gw1", "msisdn": "2348001", "response": "OK",
			 "sent_date": "1/15/2023 2:30:45 PM", "sms_id": 77, "created_at": null},
			{"id": 2, "source": null, "msisdn": null, "response": null,
			 "sent_date": null, "sms_id": null, "created_at": "2023-01-15 14:30:45"}
		]`)))
	})

	records, err := client.FetchBatch(context.Background(), 2, 10)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	require.NotNil(t, records[0].SMSID)
	assert.Equal(t, int64(77), *records[0].SMSID)
	assert.Nil(t, records[0].CreatedAt)
	assert.Nil(t, records[1].Source)
	require.NotNil(t, records[1].CreatedAt)
}

func TestRetryRecoversWithinBudget(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(successBody(`[{"count": 7}]`)))
	})

	count, err := client.Count(context.Background())

	require.NoError(t, err, "MAX_RETRIES-1 transient failures then success must succeed")
	assert.Equal(t, int64(7), count)
	assert.Equal(t, 3, attempts)
}

func TestRetryBudgetExhausted(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Count(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 3, attempts, "exactly MAX_RETRIES attempts, then escalate")
}

func TestAPIErrorIsNotRetried(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Write([]byte(`{"success": false, "errors": [{"code": 7500, "message": "malformed query"}], "result": []}`))
	})

	_, err := client.Count(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "malformed query")
	assert.Equal(t, 1, attempts, "API-level errors fail immediately")
}

func TestAuthFailureIsNotRetried(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "errors": [{"code": 10000, "message": "Authentication error"}]}`))
	})

	err := client.TestConnection(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "Authentication error")
	assert.Equal(t, 1, attempts)
}

func TestRetryHonorsContext(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Count(ctx)
	require.Error(t, err)
}
