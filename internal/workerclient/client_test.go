package workerclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/distcluster/coordinator/internal/cluster/job"
)

func addressOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestClient_Execute_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"completed"}`))
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	result, err := c.Execute(context.Background(), addressOf(srv), &job.Job{ID: "job_1", Type: job.TypeCollatz})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"completed"}`, string(result))
}

func TestClient_Execute_NonTwoXXIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	_, err := c.Execute(context.Background(), addressOf(srv), &job.Job{ID: "job_1"})
	require.Error(t, err)
	var execErr *ErrExecutionFailed
	require.ErrorAs(t, err, &execErr)
}

func TestClient_Execute_UnreachableNodeIsFailure(t *testing.T) {
	c := New(200 * time.Millisecond)
	_, err := c.Execute(context.Background(), "127.0.0.1:1", &job.Job{ID: "job_1"})
	require.Error(t, err)
}

func TestClient_Execute_MalformedBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	_, err := c.Execute(context.Background(), addressOf(srv), &job.Job{ID: "job_1"})
	require.Error(t, err)
}
