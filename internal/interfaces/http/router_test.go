package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/middleware"
	mocks "github.com/turtacn/Antecedent-Intelligence/internal/testutil"
)

func newMetrics(t *testing.T) *prom.AnalysisMetrics {
	t.Helper()
	c, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: "antecedent"}, nil)
	require.NoError(t, err)
	return prom.NewAnalysisMetrics(c)
}

func newTestRouter(t *testing.T, mem *analysis.MemoryTracker, metrics *prom.AnalysisMetrics, checkers ...handlers.HealthChecker) *gin.Engine {
	t.Helper()
	return NewRouter(RouterConfig{
		Mode:          gin.TestMode,
		HealthHandler: handlers.NewHealthHandler("test", checkers...),
		StatusHandler: handlers.NewStatusHandler(mem),
		Metrics:       metrics,
		Logger:        logging.NewNopLogger(),
		Logging:       middleware.DefaultLoggingConfig(),
	})
}

func do(r nethttp.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, path, nil))
	return w
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, analysis.NewMemoryTracker(), newMetrics(t))

	w := do(r, "/healthz")
	require.Equal(t, nethttp.StatusOK, w.Code)

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestHealthz_UnhealthyDependency(t *testing.T) {
	down := handlers.CheckFunc{Component: "redis", Fn: func(context.Context) error { return fmt.Errorf("connection refused") }}
	r := newTestRouter(t, analysis.NewMemoryTracker(), newMetrics(t), down)

	w := do(r, "/healthz")
	require.Equal(t, nethttp.StatusServiceUnavailable, w.Code)

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Components["redis"].Status)
	assert.Equal(t, "connection refused", body.Components["redis"].Error)
}

func TestStatus(t *testing.T) {
	mem := analysis.NewMemoryTracker()
	r := newTestRouter(t, mem, newMetrics(t))

	w := do(r, "/status")
	assert.Equal(t, nethttp.StatusNotFound, w.Code, "no run tracked yet")

	ctx := context.Background()
	mem.Track(ctx, "run-1", analysis.ChunkState{Index: 1, Status: analysis.StatusRunning})
	mem.Track(ctx, "run-1", analysis.ChunkState{Index: 0, Status: analysis.StatusSucceeded, Rows: 3})

	w = do(r, "/status")
	require.Equal(t, nethttp.StatusOK, w.Code)
	var body handlers.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	require.Len(t, body.Chunks, 2)
	assert.Equal(t, 0, body.Chunks[0].Index)
	assert.Equal(t, 1, body.Summary["succeeded"])
	assert.Equal(t, 1, body.Summary["running"])

	w = do(r, "/status?run_id=other")
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_005")
}

func TestMetricsEndpointAndRequestCounter(t *testing.T) {
	metrics := newMetrics(t)
	metrics.SetChunkStatus(0, "running")
	r := newTestRouter(t, analysis.NewMemoryTracker(), metrics)

	do(r, "/healthz")
	do(r, "/nope")

	w := do(r, "/metrics")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `antecedent_chunk_status{chunk="0",status="running"} 1`))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRequestLogging_Levels(t *testing.T) {
	log := mocks.NewMockLogger()
	r := NewRouter(RouterConfig{
		Mode:          gin.TestMode,
		StatusHandler: handlers.NewStatusHandler(analysis.NewMemoryTracker()),
		Logger:        log,
		Logging:       middleware.DefaultLoggingConfig(),
	})

	do(r, "/status")
	assert.True(t, log.HasMessage("warn", "HTTP request completed with client error"))
}

func TestRecovery(t *testing.T) {
	log := mocks.NewMockLogger()
	r := NewRouter(RouterConfig{Mode: gin.TestMode, Logger: log})
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, "/boom")
	assert.Equal(t, nethttp.StatusInternalServerError, w.Code)
	assert.True(t, log.HasMessage("error", "panic in HTTP handler"))
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	r := newTestRouter(t, analysis.NewMemoryTracker(), newMetrics(t))
	srv := NewServer(config.ServerConfig{ShutdownTimeout: time.Second}, r, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := nethttp.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

//Personal.AI order the ending
