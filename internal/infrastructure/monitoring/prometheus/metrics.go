package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ChunkStatuses lists every value of the status label. Exactly one of them
// is 1 per chunk at any time.
var ChunkStatuses = []string{"pending", "running", "succeeded", "failed", "abandoned"}

// ChunkDurationBuckets spans seconds to the default six hour chunk timeout.
var ChunkDurationBuckets = []float64{1, 5, 10, 30, 60, 300, 900, 1800, 3600, 7200, 21600}

// AnalysisMetrics holds the batch run metrics.
type AnalysisMetrics struct {
	collector MetricsCollector

	ChunkStatus         *prometheus.GaugeVec
	ChunkDuration       *prometheus.HistogramVec
	RowsTotal           *prometheus.CounterVec
	DocumentErrorsTotal *prometheus.CounterVec
	RunsTotal           *prometheus.CounterVec
	ArtifactsTotal      *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
}

// NewAnalysisMetrics registers the analysis metrics on collector.
func NewAnalysisMetrics(collector MetricsCollector) *AnalysisMetrics {
	return &AnalysisMetrics{
		collector:           collector,
		ChunkStatus:         collector.RegisterGauge("chunk_status", "Current status of each chunk (1 = in this status)", "chunk", "status"),
		ChunkDuration:       collector.RegisterHistogram("chunk_duration_seconds", "Wall time of finished chunks", ChunkDurationBuckets, "status"),
		RowsTotal:           collector.RegisterCounter("result_rows_total", "Result rows produced by succeeded chunks"),
		DocumentErrorsTotal: collector.RegisterCounter("document_errors_total", "Target documents skipped with an error", "code"),
		RunsTotal:           collector.RegisterCounter("runs_total", "Finished analysis runs", "outcome"),
		ArtifactsTotal:      collector.RegisterCounter("redaction_artifacts_total", "Redaction artifacts written", "mode"),
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Status server requests", "method", "path", "status_code"),
	}
}

// Collector returns the collector the metrics are registered on.
func (m *AnalysisMetrics) Collector() MetricsCollector { return m.collector }

// SetChunkStatus moves chunk to status.
func (m *AnalysisMetrics) SetChunkStatus(chunk int, status string) {
	label := strconv.Itoa(chunk)
	for _, s := range ChunkStatuses {
		v := 0.0
		if s == status {
			v = 1
		}
		m.ChunkStatus.WithLabelValues(label, s).Set(v)
	}
}

// ObserveChunk records a finished chunk.
func (m *AnalysisMetrics) ObserveChunk(status string, d time.Duration, rows int) {
	m.ChunkDuration.WithLabelValues(status).Observe(d.Seconds())
	if rows > 0 {
		m.RowsTotal.WithLabelValues().Add(float64(rows))
	}
}

// DocumentError counts a skipped target document.
func (m *AnalysisMetrics) DocumentError(code string) {
	m.DocumentErrorsTotal.WithLabelValues(code).Inc()
}

// RunFinished counts a finished run by outcome.
func (m *AnalysisMetrics) RunFinished(outcome string) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// ArtifactWritten counts a redaction artifact.
func (m *AnalysisMetrics) ArtifactWritten(mode string) {
	m.ArtifactsTotal.WithLabelValues(mode).Inc()
}

// RecordHTTPRequest counts a status server request.
func (m *AnalysisMetrics) RecordHTTPRequest(method, path string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
}

//Personal.AI order the ending
