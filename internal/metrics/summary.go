package metrics

import (
	"math"
	"sort"
	"time"
)

// LatencyStats describes the latency distribution of successful requests.
// All values are in milliseconds.
type LatencyStats struct {
	Count    int     `json:"count"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
	StdDevMs float64 `json:"std_dev_ms"` // sample stddev; zero when Count < 2
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// Summary is the aggregated result of a run.
type Summary struct {
	Total          int64            `json:"total"`
	Successes      int64            `json:"successes"`
	Failures       int64            `json:"failures"`
	Duration       time.Duration    `json:"-"`
	DurationSec    float64          `json:"duration_sec"`
	RequestsPerSec float64          `json:"requests_per_sec"`
	SuccessRate    float64          `json:"success_rate"` // percent; zero when Total == 0
	Latency        LatencyStats     `json:"latency"`
	Errors         map[string]int64 `json:"errors,omitempty"`
}

// Summary computes aggregated statistics over everything recorded so far.
// Meant to be called after all workers have been merged.
//
// Percentiles use sorted-index lookup without interpolation: the median is the
// element at index n/2 of the ascending sort, P95 at floor(n*0.95), P99 at
// floor(n*0.99).
func (c *Collector) Summary(elapsed time.Duration) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	total, successes, failures := c.Counts()

	s := Summary{
		Total:       total,
		Successes:   successes,
		Failures:    failures,
		Duration:    elapsed,
		DurationSec: elapsed.Seconds(),
	}

	if elapsed > 0 {
		s.RequestsPerSec = float64(total) / elapsed.Seconds()
	}
	if total > 0 {
		s.SuccessRate = float64(successes) / float64(total) * 100
	}

	s.Latency = computeLatencyStats(c.latencies)

	if len(c.errorsByType) > 0 {
		s.Errors = make(map[string]int64, len(c.errorsByType))
		for typ, n := range c.errorsByType {
			s.Errors[typ] = n
		}
	}

	return s
}

func computeLatencyStats(latencies []float64) LatencyStats {
	n := len(latencies)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, latencies)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	stats := LatencyStats{
		Count:    n,
		MeanMs:   mean,
		MedianMs: sorted[n/2],
		P95Ms:    sorted[percentileIndex(n, 0.95)],
		P99Ms:    sorted[percentileIndex(n, 0.99)],
		MinMs:    sorted[0],
		MaxMs:    sorted[n-1],
	}

	if n >= 2 {
		variance := 0.0
		for _, v := range sorted {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(n - 1)
		stats.StdDevMs = math.Sqrt(variance)
	}

	return stats
}

func percentileIndex(n int, q float64) int {
	idx := int(float64(n) * q)
	if idx >= n {
		idx = n - 1
	}
	return idx
}
