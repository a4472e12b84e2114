// Package workerclient issues the coordinator -> worker execute RPC
// (spec §6, §4.2). The actual compute kernels are out of scope; the worker
// is an opaque executor satisfying this single contract.
package workerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/distcluster/coordinator/internal/cluster/job"
)

// Client issues POST /api/execute against a node's address.
type Client struct {
	http *http.Client
}

func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// ErrExecutionFailed wraps any non-2xx status, network error, or malformed
// payload into a single human-readable error, matching spec §4.2 step 5.
type ErrExecutionFailed struct {
	Reason string
}

func (e *ErrExecutionFailed) Error() string { return e.Reason }

// Execute sends the full job record to the node and returns the raw result
// payload on success. Any non-2xx response, transport error, context
// deadline, or malformed body is reported as *ErrExecutionFailed.
func (c *Client) Execute(ctx context.Context, address string, j *job.Job) (json.RawMessage, error) {
	body, err := json.Marshal(j)
	if err != nil {
		return nil, &ErrExecutionFailed{Reason: fmt.Sprintf("marshal job: %v", err)}
	}

	url := fmt.Sprintf("http://%s/api/execute", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ErrExecutionFailed{Reason: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ErrExecutionFailed{Reason: fmt.Sprintf("node %s unreachable: %v", address, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ErrExecutionFailed{Reason: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ErrExecutionFailed{Reason: fmt.Sprintf("node returned status %d", resp.StatusCode)}
	}

	var result json.RawMessage
	if err := json.Unmarshal(respBody, &result); err != nil || !json.Valid(respBody) {
		return nil, &ErrExecutionFailed{Reason: fmt.Sprintf("malformed result payload: %v", err)}
	}
	return result, nil
}
