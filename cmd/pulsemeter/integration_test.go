package main

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulsemeter/internal/httpclient"
	"pulsemeter/internal/metrics"
	"pulsemeter/internal/runner"
	"pulsemeter/internal/sample"
)

func newTestRunner(targetURL string, collector *metrics.Collector, workers int, rate float64, duration time.Duration) *runner.Runner {
	gen := sample.NewGenerator(sample.Options{
		Rand: rand.New(rand.NewSource(1)),
	})
	client := httpclient.NewClient(5 * time.Second)
	return runner.New(runner.Options{
		Workers:   workers,
		TargetRPS: rate,
		Duration:  duration,
		Sender:    httpclient.NewExecutor(client, targetURL),
		Generator: gen,
		Collector: collector,
	})
}

// TestEndToEndHealthyTarget drives the full stack against a healthy mock:
// every request succeeds and the measured throughput and latency land near
// the configured shape.
func TestEndToEndHealthyTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-sensitive end-to-end run")
	}

	const handlerDelay = 10 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(handlerDelay)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	collector := metrics.NewCollector()
	r := newTestRunner(srv.URL, collector, 5, 100, 2*time.Second)
	res := r.Run(context.Background())

	total, successes, failures := collector.Counts()
	if failures != 0 {
		t.Fatalf("unexpected failures: %d", failures)
	}
	if successes != total {
		t.Fatalf("successes %d != total %d", successes, total)
	}

	// 100 rps for 2s is the open-loop ceiling; the 10ms handler delay eats
	// into each worker's cadence, so allow a generous band.
	if total < 80 || total > 220 {
		t.Fatalf("total %d outside pacing tolerance", total)
	}

	s := collector.Summary(res.Duration)
	if s.Latency.MeanMs < 9 || s.Latency.MeanMs > 100 {
		t.Fatalf("mean latency %.2fms not near handler delay", s.Latency.MeanMs)
	}
	if s.SuccessRate != 100 {
		t.Fatalf("success rate %.2f, want 100", s.SuccessRate)
	}
}

// TestEndToEndFailingTarget verifies a target that always answers 500 yields
// zero successes, all requests counted as failures, and empty latency stats
// instead of a crash.
func TestEndToEndFailingTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	collector := metrics.NewCollector()
	r := newTestRunner(srv.URL, collector, 5, 200, 500*time.Millisecond)
	res := r.Run(context.Background())

	total, successes, failures := collector.Counts()
	if successes != 0 {
		t.Fatalf("expected zero successes, got %d", successes)
	}
	if failures != total || total == 0 {
		t.Fatalf("failure accounting off: total=%d failures=%d", total, failures)
	}

	s := collector.Summary(res.Duration)
	if s.Latency.Count != 0 {
		t.Fatalf("latency stats should be empty: %+v", s.Latency)
	}
	if s.SuccessRate != 0 {
		t.Fatalf("success rate %.2f, want 0", s.SuccessRate)
	}
	if s.Errors["*httpclient.StatusError"] != failures {
		t.Fatalf("error breakdown %v", s.Errors)
	}
}
