package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"pulsemeter/internal/analytics"
	"pulsemeter/internal/metrics"
)

// Report bundles everything a finished run has to show.
type Report struct {
	RunID     string            `json:"run_id"`
	Summary   metrics.Summary   `json:"summary"`
	Analytics *analytics.Report `json:"analytics,omitempty"`
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r Report) {
	s := r.Summary

	fmt.Fprintf(w, "\n--- Load Test Results (run %s) ---\n", r.RunID)
	fmt.Fprintf(w, "Total Requests:    %d\n", s.Total)
	fmt.Fprintf(w, "Successful:        %d\n", s.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", s.Failures)
	fmt.Fprintf(w, "Duration:          %.2fs\n", s.DurationSec)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", s.RequestsPerSec)
	fmt.Fprintf(w, "Success Rate:      %.2f%%\n", s.SuccessRate)

	if s.Latency.Count > 0 {
		fmt.Fprintln(w, "\nLatency:")
		fmt.Fprintf(w, "  Mean:            %.2fms\n", s.Latency.MeanMs)
		fmt.Fprintf(w, "  Median:          %.2fms\n", s.Latency.MedianMs)
		fmt.Fprintf(w, "  P95:             %.2fms\n", s.Latency.P95Ms)
		fmt.Fprintf(w, "  P99:             %.2fms\n", s.Latency.P99Ms)
		if s.Latency.Count >= 2 {
			fmt.Fprintf(w, "  StdDev:          %.2fms\n", s.Latency.StdDevMs)
		}
		fmt.Fprintf(w, "  Min:             %.2fms\n", s.Latency.MinMs)
		fmt.Fprintf(w, "  Max:             %.2fms\n", s.Latency.MaxMs)
	} else {
		fmt.Fprintln(w, "\nLatency:           no successful requests")
	}

	if len(s.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		types := make([]string, 0, len(s.Errors))
		for typ := range s.Errors {
			types = append(types, typ)
		}
		sort.Strings(types)
		for _, typ := range types {
			fmt.Fprintf(w, "  %s: %d\n", typ, s.Errors[typ])
		}
	}

	if r.Analytics != nil {
		a := r.Analytics
		fmt.Fprintln(w, "\nTarget Analytics:")
		fmt.Fprintf(w, "  Rolling Average: %.2f\n", a.RollingAverage)
		fmt.Fprintf(w, "  Mean:            %.2f\n", a.Mean)
		fmt.Fprintf(w, "  StdDev:          %.2f\n", a.StdDev)
		fmt.Fprintf(w, "  Anomalies:       %d\n", a.AnomalyCount)
		fmt.Fprintf(w, "  Processed:       %d\n", a.TotalProcessed)
		fmt.Fprintf(w, "  Anomaly Rate:    %.2f%%\n", a.AnomalyRate)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
