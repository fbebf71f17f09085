// Package sink implements an in-memory metrics-ingestion service compatible
// with the endpoint the load driver targets. It exists for local end-to-end
// runs and tests; there is no persistence behind it.
package sink

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/gorilla/mux"

	"pulsemeter/internal/sample"
)

// Server accepts telemetry samples and reports analytics over them.
type Server struct {
	analytics *Analytics

	histMu sync.Mutex
	ingest *hdrhistogram.Histogram
}

// NewServer creates a sink with the given analytics window and z-score threshold.
func NewServer(windowSize int, threshold float64) *Server {
	return &Server{
		analytics: NewAnalytics(windowSize, threshold),
		// Track ingest handling from 1µs up to 60s with 3 significant figures.
		ingest: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Handler returns the sink's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodPost)
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

// Analytics exposes the underlying engine, mainly for tests.
func (s *Server) Analytics() *Analytics {
	return s.analytics
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var m sample.Sample
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if m.Timestamp == 0 {
		m.Timestamp = time.Now().Unix()
	}

	s.analytics.Observe(m)
	s.recordIngest(time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"metric": m,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	stats := s.analytics.Snapshot()
	p50, p99 := s.ingestPercentiles()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"rolling_average": stats.RollingAverage,
		"mean":            stats.Mean,
		"std_dev":         stats.StdDev,
		"anomaly_count":   stats.AnomalyCount,
		"total_processed": stats.TotalProcessed,
		"anomaly_rate":    stats.AnomalyRate,
		"window_size":     stats.WindowSize,
		"ingest_p50_ms":   p50,
		"ingest_p99_ms":   p99,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (s *Server) recordIngest(d time.Duration) {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	us := d.Microseconds()
	if us < s.ingest.LowestTrackableValue() {
		us = s.ingest.LowestTrackableValue()
	}
	if us > s.ingest.HighestTrackableValue() {
		us = s.ingest.HighestTrackableValue()
	}
	_ = s.ingest.RecordValue(us)
}

func (s *Server) ingestPercentiles() (p50Ms, p99Ms float64) {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	if s.ingest.TotalCount() == 0 {
		return 0, 0
	}
	return float64(s.ingest.ValueAtQuantile(50)) / 1000,
		float64(s.ingest.ValueAtQuantile(99)) / 1000
}
