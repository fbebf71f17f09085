package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrUnavailable marks a failed best-effort analytics read. Callers report
// the absence of analytics and continue; the read never fails a run.
var ErrUnavailable = errors.New("analytics unavailable")

const maxResponseBytes = 1 << 20

// Report holds the target's self-reported analytics. Fields missing from the
// response default to zero.
type Report struct {
	RollingAverage float64 `json:"rolling_average"`
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"std_dev"`
	AnomalyCount   int64   `json:"anomaly_count"`
	TotalProcessed int64   `json:"total_processed"`
	AnomalyRate    float64 `json:"anomaly_rate"`
}

// Fetch reads <baseURL>/analyze and extracts the analytics fields.
func Fetch(ctx context.Context, client *http.Client, baseURL string) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	url := strings.TrimRight(baseURL, "/") + "/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON response", ErrUnavailable)
	}

	return &Report{
		RollingAverage: gjson.GetBytes(body, "rolling_average").Float(),
		Mean:           gjson.GetBytes(body, "mean").Float(),
		StdDev:         gjson.GetBytes(body, "std_dev").Float(),
		AnomalyCount:   gjson.GetBytes(body, "anomaly_count").Int(),
		TotalProcessed: gjson.GetBytes(body, "total_processed").Int(),
		AnomalyRate:    gjson.GetBytes(body, "anomaly_rate").Float(),
	}, nil
}
