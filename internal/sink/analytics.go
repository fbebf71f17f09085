package sink

import (
	"math"
	"sync"

	"pulsemeter/internal/sample"
)

const minWindowForStats = 10

// Analytics keeps a sliding window of ingested samples and derives rolling
// statistics plus z-score anomaly detection over the request-rate values.
type Analytics struct {
	mu             sync.RWMutex
	window         []sample.Sample
	windowSize     int
	rollingAvg     float64
	mean           float64
	stdDev         float64
	anomalyCount   int64
	totalProcessed int64
	threshold      float64
}

// Stats is a consistent snapshot of the analytics state.
type Stats struct {
	RollingAverage float64
	Mean           float64
	StdDev         float64
	AnomalyCount   int64
	TotalProcessed int64
	AnomalyRate    float64 // percent
	WindowSize     int
}

// NewAnalytics creates an engine with the given window size and z-score
// anomaly threshold.
func NewAnalytics(windowSize int, threshold float64) *Analytics {
	if windowSize <= 0 {
		windowSize = 50
	}
	if threshold <= 0 {
		threshold = 2.0
	}
	return &Analytics{
		window:     make([]sample.Sample, 0, windowSize),
		windowSize: windowSize,
		threshold:  threshold,
	}
}

// Observe folds one sample into the window and updates the derived stats.
func (a *Analytics) Observe(s sample.Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.window) >= a.windowSize {
		a.window = a.window[1:]
	}
	a.window = append(a.window, s)
	a.totalProcessed++

	sum := 0.0
	for _, m := range a.window {
		sum += m.RPS
	}
	a.rollingAvg = sum / float64(len(a.window))

	// Mean and stddev only stabilize with a partially filled window.
	if len(a.window) >= minWindowForStats {
		mean := sum / float64(len(a.window))
		a.mean = mean

		variance := 0.0
		for _, m := range a.window {
			variance += (m.RPS - mean) * (m.RPS - mean)
		}
		variance /= float64(len(a.window))
		if variance > 0 {
			a.stdDev = math.Sqrt(variance)
		} else {
			a.stdDev = 0
		}

		if a.stdDev > 0 {
			z := (s.RPS - a.mean) / a.stdDev
			if z > a.threshold || z < -a.threshold {
				a.anomalyCount++
			}
		}
	}
}

// Snapshot returns the current derived statistics.
func (a *Analytics) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rate := 0.0
	if a.totalProcessed > 0 {
		rate = float64(a.anomalyCount) / float64(a.totalProcessed) * 100
	}

	return Stats{
		RollingAverage: a.rollingAvg,
		Mean:           a.mean,
		StdDev:         a.stdDev,
		AnomalyCount:   a.anomalyCount,
		TotalProcessed: a.totalProcessed,
		AnomalyRate:    rate,
		WindowSize:     a.windowSize,
	}
}
