// Command mockworker is the degenerate standalone worker node referenced in
// spec.md's component budget: it registers with a coordinator, heartbeats on
// a fixed interval, and answers POST /api/execute for the "thread" and
// "collatz" job types. It carries no GPU code path of its own — GPU_ENABLED
// only changes the numbers it reports, matching a node that advertises GPU
// acceleration without actually owning a device.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distcluster/coordinator/internal/config"
	"github.com/distcluster/coordinator/internal/logger"
)

type execRequest struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

type execResponse struct {
	JobID         string          `json:"job_id"`
	Status        string          `json:"status"`
	Result        json.RawMessage `json:"result,omitempty"`
	ExecutionTime float64         `json:"execution_time"`
	NodeID        string          `json:"node_id"`
	Error         string          `json:"error,omitempty"`
}

type threadParams struct {
	ThreadCount int `json:"thread_count"`
	MaxDepth    int `json:"max_depth"`
}

type collatzParams struct {
	StartNumber int `json:"start_number"`
	NumberCount int `json:"number_count"`
}

// worker holds the mutable state one node reports in its heartbeat: active
// job count and a load score derived from it (ported from node.py's
// calculate_load_score).
type worker struct {
	id            string
	address       string
	gpuEnabled    bool
	workerThreads int
	active        int64
	completed     int64

	mu sync.Mutex
}

func (w *worker) loadScore() float64 {
	w.mu.Lock()
	active := atomic.LoadInt64(&w.active)
	w.mu.Unlock()
	jobScore := float64(active) / float64(max(w.workerThreads, 1))
	gpuBonus := 0.0
	if w.gpuEnabled {
		gpuBonus = -0.2
	}
	return jobScore + gpuBonus
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func main() {
	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	coordinatorURL := config.GetEnv("COORDINATOR_URL", "http://localhost:3000", log)
	port := config.GetEnv("PORT", "9090", log)
	nodeID := config.GetEnv("NODE_ID", "mockworker-"+randomSuffix(), log)
	nodeType := config.GetEnv("NODE_TYPE", "worker", log)
	gpuEnabled := config.GetEnvAsBool("GPU_ENABLED", false, log)
	workerThreads := config.GetEnvAsInt("WORKER_THREADS", 4, log)
	heartbeatInterval := config.GetEnvAsDuration("HEARTBEAT_INTERVAL", 15*time.Second, log)

	w := &worker{
		id:            nodeID,
		address:       "localhost:" + port,
		gpuEnabled:    gpuEnabled,
		workerThreads: workerThreads,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: 10 * time.Second}

	if err := registerWithCoordinator(ctx, httpClient, coordinatorURL, w, nodeType); err != nil {
		log.Error("initial registration failed, will keep heartbeating regardless", "error", err)
	} else {
		log.Info("registered with coordinator", "node_id", w.id, "coordinator", coordinatorURL)
	}

	go heartbeatLoop(ctx, httpClient, coordinatorURL, w, heartbeatInterval, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/api/execute", func(c *gin.Context) {
		handleExecute(c, w, log)
	})

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("mock worker listening", "addr", srv.Addr, "gpu_enabled", gpuEnabled)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("worker server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("mock worker shut down cleanly")
}

func randomSuffix() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}

func registerWithCoordinator(ctx context.Context, client *http.Client, coordinatorURL string, w *worker, nodeType string) error {
	body, err := json.Marshal(map[string]any{
		"node_id":        w.id,
		"address":        w.address,
		"capabilities":   capabilities(w),
		"gpu_enabled":    w.gpuEnabled,
		"worker_threads": w.workerThreads,
		"node_type":      nodeType,
	})
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, coordinatorURL+"/api/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send registration: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registration rejected: status %d", resp.StatusCode)
	}
	return nil
}

func capabilities(w *worker) []string {
	caps := []string{"thread_simulation", "collatz_calculation"}
	if w.gpuEnabled {
		caps = append(caps, "gpu_acceleration", "parallel_processing")
	}
	return caps
}

// heartbeatLoop mirrors node.py's send_heartbeat: a fire-and-forget POST on a
// fixed interval, logged but never fatal on failure.
func heartbeatLoop(ctx context.Context, client *http.Client, coordinatorURL string, w *worker, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			body, err := json.Marshal(map[string]any{
				"node_id":    w.id,
				"load_score": w.loadScore(),
			})
			if err != nil {
				continue
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, coordinatorURL+"/api/heartbeat", bytes.NewReader(body))
			if err != nil {
				continue
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(req)
			if err != nil {
				log.Warn("heartbeat failed", "error", err)
				continue
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				log.Warn("heartbeat rejected", "status", resp.StatusCode)
			}
		}
	}
}

func handleExecute(c *gin.Context, w *worker, log *logger.Logger) {
	var req execRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, execResponse{Status: "failed", Error: err.Error()})
		return
	}

	atomic.AddInt64(&w.active, 1)
	defer atomic.AddInt64(&w.active, -1)

	start := time.Now()
	result, err := executeJob(req.Type, req.Parameters, w.gpuEnabled, w.workerThreads)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		log.Warn("job execution failed", "job_id", req.ID, "type", req.Type, "error", err)
		c.JSON(http.StatusInternalServerError, execResponse{
			JobID: req.ID, Status: "failed", Error: err.Error(), NodeID: w.id,
		})
		return
	}

	atomic.AddInt64(&w.completed, 1)
	log.Info("job executed", "job_id", req.ID, "type", req.Type, "execution_time", elapsed)
	c.JSON(http.StatusOK, execResponse{
		JobID: req.ID, Status: "completed", Result: result, ExecutionTime: elapsed, NodeID: w.id,
	})
}

// executeJob ports node.py's execute_thread_job/execute_collatz_job: a
// Collatz-sequence walk used both as the literal "collatz" job type and as
// the per-thread workload of the "thread" simulation job type. GPU mode only
// changes the reported "acceleration" label, never the arithmetic.
func executeJob(jobType string, raw json.RawMessage, gpuEnabled bool, workerThreads int) (json.RawMessage, error) {
	switch jobType {
	case "thread":
		return executeThreadJob(raw, gpuEnabled, workerThreads)
	case "collatz":
		return executeCollatzJob(raw, gpuEnabled)
	default:
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}
}

func executeThreadJob(raw json.RawMessage, gpuEnabled bool, workerThreads int) (json.RawMessage, error) {
	p := threadParams{ThreadCount: 100, MaxDepth: 5}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid thread parameters: %w", err)
		}
	}
	if p.ThreadCount <= 0 {
		p.ThreadCount = 100
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 5
	}

	type threadResult struct {
		ThreadID   int `json:"thread_id"`
		FinalValue int `json:"final_value"`
		Depth      int `json:"depth"`
	}

	maxDepthReached := 0
	sample := make([]threadResult, 0, 10)
	for id := 0; id < p.ThreadCount; id++ {
		value, depth := collatzWalk(id, p.MaxDepth, 1000000)
		if depth > maxDepthReached {
			maxDepthReached = depth
		}
		if len(sample) < 10 {
			sample = append(sample, threadResult{ThreadID: id, FinalValue: value, Depth: depth})
		}
	}

	acceleration := "cpu"
	if gpuEnabled {
		acceleration = "gpu"
	}
	return json.Marshal(map[string]any{
		"type":              "thread_simulation",
		"threads_processed": p.ThreadCount,
		"max_depth_reached": maxDepthReached,
		"acceleration":      acceleration,
		"worker_threads":    workerThreads,
		"results":           sample,
	})
}

func executeCollatzJob(raw json.RawMessage, gpuEnabled bool) (json.RawMessage, error) {
	p := collatzParams{StartNumber: 1, NumberCount: 1000}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid collatz parameters: %w", err)
		}
	}
	if p.NumberCount <= 0 {
		p.NumberCount = 1000
	}

	type collatzResult struct {
		Number int `json:"number"`
		Steps  int `json:"steps"`
	}

	mostSteps := collatzResult{}
	var totalSteps int64
	sample := make([]collatzResult, 0, 10)
	for n := p.StartNumber; n < p.StartNumber+p.NumberCount; n++ {
		_, steps := collatzWalk(n, 10000, 100000000)
		totalSteps += int64(steps)
		if steps > mostSteps.Steps {
			mostSteps = collatzResult{Number: n, Steps: steps}
		}
		if len(sample) < 10 {
			sample = append(sample, collatzResult{Number: n, Steps: steps})
		}
	}

	average := 0.0
	if p.NumberCount > 0 {
		average = float64(totalSteps) / float64(p.NumberCount)
	}

	acceleration := "cpu"
	if gpuEnabled {
		acceleration = "gpu"
	}
	return json.Marshal(map[string]any{
		"type":              "collatz_calculation",
		"numbers_processed": p.NumberCount,
		"records":           map[string]any{"most_steps": mostSteps},
		"acceleration":      acceleration,
		"average_steps":     average,
		"results_sample":    sample,
	})
}

// collatzWalk runs the 3n+1 sequence from start until it reaches 1, hits
// maxSteps, or the value exceeds ceiling (node.py guards the same way to
// keep a single job bounded in time).
func collatzWalk(start, maxSteps, ceiling int) (value, steps int) {
	value = start
	for steps < maxSteps && value > 1 {
		if value%2 == 0 {
			value /= 2
		} else {
			value = value*3 + 1
		}
		steps++
		if value > ceiling {
			break
		}
	}
	return value, steps
}
