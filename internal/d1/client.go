// Package d1 is the client for the Cloudflare D1 query API, the remote
// source of truth for replicated SMS records.
package d1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"github.com/faroucksc/sms-sync/internal/config"
	"github.com/faroucksc/sms-sync/internal/model"
)

// ErrAPI marks a logical error reported by the D1 API (malformed query,
// auth failure, non-success response body). These do not resolve by
// retrying and fail the call immediately.
var ErrAPI = errors.New("d1 api error")

// ErrTransient marks a failure worth retrying: a network-level error or
// one of the retryable HTTP status codes.
var ErrTransient = errors.New("transient d1 failure")

type queryRequest struct {
	SQL string `json:"sql"`
}

type queryResponse struct {
	Success bool          `json:"success"`
	Errors  []apiError    `json:"errors"`
	Result  []queryResult `json:"result"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type queryResult struct {
	Success bool            `json:"success"`
	Results json.RawMessage `json:"results"`
}

// Client issues single-statement queries against one D1 database over
// HTTPS with bearer authentication. Every call runs under the retry
// policy handed in at construction.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
	queryURL   string
	apiToken   string
	tableName  string
	retry      RetryPolicy
}

func NewClient(cfg config.Cloudflare, timeout time.Duration, retry RetryPolicy, log *slog.Logger) *Client {
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &Client{
		httpClient: httpClient,
		log:        log.With("component", "d1_client"),
		queryURL: fmt.Sprintf("%s/client/v4/accounts/%s/d1/database/%s/query",
			cfg.BaseURL, cfg.AccountID, cfg.DatabaseID),
		apiToken:  cfg.APIToken,
		tableName: cfg.TableName,
		retry:     retry,
	}
}

// Count returns the total number of rows in the source table.
func (c *Client) Count(ctx context.Context) (int64, error) {
	res, err := c.execute(ctx, fmt.Sprintf("SELECT COUNT(*) as count FROM %s", c.tableName))
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}

	var rows []struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(res.Results, &rows); err != nil {
		return 0, fmt.Errorf("decode count result: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("count records: %w: empty result set", ErrAPI)
	}
	return rows[0].Count, nil
}

// FetchBatch returns at most limit rows starting at offset, in the
// source table's insertion order. A short or empty result means no rows
// exist beyond offset.
func (c *Client) FetchBatch(ctx context.Context, limit, offset int64) ([]model.Record, error) {
	sql := fmt.Sprintf(
		"SELECT id, source, msisdn, response, sent_date, sms_id, created_at FROM %s LIMIT %d OFFSET %d",
		c.tableName, limit, offset)

	res, err := c.execute(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("fetch batch at offset %d: %w", offset, err)
	}

	var records []model.Record
	if err := json.Unmarshal(res.Results, &records); err != nil {
		return nil, fmt.Errorf("decode batch at offset %d: %w", offset, err)
	}
	return records, nil
}

// TestConnection verifies the API is reachable with a no-op query.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.execute(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("d1 connection test: %w", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, sql string) (*queryResult, error) {
	var result *queryResult
	err := c.retry.Do(ctx, c.log, func(ctx context.Context) error {
		res, err := c.query(ctx, sql)
		result = res
		return err
	})
	return result, err
}

func (c *Client) query(ctx context.Context, sql string) (*queryResult, error) {
	body, err := json.Marshal(queryRequest{SQL: sql})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	c.log.Debug("sending query", "url", c.queryURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failures, including client timeouts, are retryable.
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if retryableStatus(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransient, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, firstErrorMessage(respBody))
	}

	var qr queryResponse
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAPI, err)
	}
	if !qr.Success {
		return nil, fmt.Errorf("%w: %s", ErrAPI, firstMessage(qr.Errors))
	}
	if len(qr.Result) == 0 {
		return nil, fmt.Errorf("%w: response carries no result", ErrAPI)
	}
	return &qr.Result[0], nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func firstErrorMessage(body []byte) string {
	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return "unknown API error"
	}
	return firstMessage(qr.Errors)
}

func firstMessage(errs []apiError) string {
	if len(errs) == 0 {
		return "unknown API error"
	}
	return errs[0].Message
}
