package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pulsemeter/internal/sample"
)

const maxErrorBodyBytes = 1024

// StatusError represents a request that completed with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Outcome is the result of sending one sample. Failed sends carry the
// classified error; Latency is meaningful only on success.
type Outcome struct {
	Success bool
	Latency time.Duration
	Err     error
}

// Executor sends telemetry samples to the ingestion endpoint. It never
// returns an error to the caller: transport and protocol failures are
// absorbed into a failed Outcome.
type Executor struct {
	client     *http.Client
	metricsURL string
}

// NewExecutor creates an Executor targeting <baseURL>/metrics.
func NewExecutor(client *http.Client, baseURL string) *Executor {
	return &Executor{
		client:     client,
		metricsURL: strings.TrimRight(baseURL, "/") + "/metrics",
	}
}

// Send serializes the sample and issues one synchronous POST. Success means
// the server answered with status 200 exactly.
func (e *Executor) Send(ctx context.Context, s sample.Sample) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(s)
	if err != nil {
		return Outcome{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.metricsURL, bytes.NewReader(body))
	if err != nil {
		return Outcome{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return Outcome{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		_, _ = io.Copy(io.Discard, resp.Body)
		return Outcome{Err: &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return Outcome{Success: true, Latency: latency}
}
