package sink_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pulsemeter/internal/sample"
	"pulsemeter/internal/sink"
)

func postSample(t *testing.T, url string, s sample.Sample) *http.Response {
	t.Helper()
	body, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url+"/metrics", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func fetchAnalyze(t *testing.T, url string) map[string]interface{} {
	t.Helper()
	resp, err := http.Get(url + "/analyze")
	if err != nil {
		t.Fatalf("get analyze: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status %d", resp.StatusCode)
	}
	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode analyze: %v", err)
	}
	return payload
}

func TestIngestAck(t *testing.T) {
	srv := httptest.NewServer(sink.NewServer(50, 2.0).Handler())
	defer srv.Close()

	resp := postSample(t, srv.URL, sample.Sample{Timestamp: 1700000000, CPU: 50, RPS: 100, DeviceID: "device_1"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var ack struct {
		Status string        `json:"status"`
		Metric sample.Sample `json:"metric"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Status != "ok" || ack.Metric.DeviceID != "device_1" {
		t.Fatalf("unexpected ack %+v", ack)
	}
}

func TestIngestRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(sink.NewServer(50, 2.0).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/metrics", "application/json", bytes.NewReader([]byte("{broken")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestIngestDefaultsTimestamp(t *testing.T) {
	s := sink.NewServer(50, 2.0)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp := postSample(t, srv.URL, sample.Sample{CPU: 10, RPS: 100, DeviceID: "device_2"})
	defer resp.Body.Close()

	var ack struct {
		Metric sample.Sample `json:"metric"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Metric.Timestamp == 0 {
		t.Fatal("timestamp should default to the current time")
	}
}

func TestAnalyzeReportsWindowStats(t *testing.T) {
	srv := httptest.NewServer(sink.NewServer(50, 2.0).Handler())
	defer srv.Close()

	for i := 0; i < 20; i++ {
		resp := postSample(t, srv.URL, sample.Sample{Timestamp: 1700000000, CPU: 50, RPS: 100, DeviceID: fmt.Sprintf("device_%d", i)})
		resp.Body.Close()
	}

	payload := fetchAnalyze(t, srv.URL)
	if got := payload["total_processed"].(float64); got != 20 {
		t.Fatalf("total_processed %v, want 20", got)
	}
	if got := payload["rolling_average"].(float64); got != 100 {
		t.Fatalf("rolling_average %v, want 100", got)
	}
	if got := payload["mean"].(float64); got != 100 {
		t.Fatalf("mean %v, want 100", got)
	}
	if got := payload["window_size"].(float64); got != 50 {
		t.Fatalf("window_size %v, want 50", got)
	}
	if got := payload["ingest_p50_ms"].(float64); got <= 0 {
		t.Fatalf("ingest_p50_ms %v, want > 0", got)
	}
}

// TestAnomalyDetection fills the window with noisy-but-normal values, then
// sends an extreme spike and expects the z-score detector to flag it.
func TestAnomalyDetection(t *testing.T) {
	engine := sink.NewServer(50, 2.0)
	srv := httptest.NewServer(engine.Handler())
	defer srv.Close()

	// Alternate 95/105 so the window stddev is nonzero.
	for i := 0; i < 30; i++ {
		rps := 95.0
		if i%2 == 0 {
			rps = 105.0
		}
		resp := postSample(t, srv.URL, sample.Sample{Timestamp: 1700000000, CPU: 50, RPS: rps, DeviceID: "device_1"})
		resp.Body.Close()
	}

	before := engine.Analytics().Snapshot()
	resp := postSample(t, srv.URL, sample.Sample{Timestamp: 1700000000, CPU: 50, RPS: 400, DeviceID: "device_1"})
	resp.Body.Close()

	after := engine.Analytics().Snapshot()
	if after.AnomalyCount != before.AnomalyCount+1 {
		t.Fatalf("anomaly count %d, want %d", after.AnomalyCount, before.AnomalyCount+1)
	}
	if after.AnomalyRate <= 0 {
		t.Fatalf("anomaly rate %f, want > 0", after.AnomalyRate)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(sink.NewServer(50, 2.0).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestMetricsRouteRejectsGet(t *testing.T) {
	srv := httptest.NewServer(sink.NewServer(50, 2.0).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", resp.StatusCode)
	}
}
