package runner

import (
	"context"
	"time"

	"pulsemeter/internal/httpclient"
	"pulsemeter/internal/metrics"
	"pulsemeter/internal/sample"
)

// Sender abstracts executing a single request. Implementations absorb
// transport and protocol failures into the returned Outcome.
type Sender interface {
	Send(ctx context.Context, s sample.Sample) httpclient.Outcome
}

// Generator produces the next sample to send.
type Generator interface {
	Next() sample.Sample
}

// FailureLogger logs failed requests.
type FailureLogger interface {
	LogFailure(err error)
}

// Options configure the Runner.
type Options struct {
	Workers       int                // number of worker goroutines
	TargetRPS     float64            // aggregate pacing target (0 means no pacing)
	Duration      time.Duration      // run length (required)
	Sender        Sender             // request executor (required)
	Generator     Generator          // sample source (required)
	Collector     *metrics.Collector // shared aggregate state (required)
	FailureLogger FailureLogger      // optional per-failure logging
}

func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.TargetRPS < 0 {
		o.TargetRPS = 0
	}
	if o.Collector == nil {
		o.Collector = metrics.NewCollector()
	}
}

// pacingInterval is the fixed per-worker sleep that makes Workers workers
// collectively approximate TargetRPS. Open-loop: there is no feedback from
// observed latency, so achieved throughput is bounded above by the
// pacing-implied rate once requests block for non-trivial time.
func (o Options) pacingInterval() time.Duration {
	if o.TargetRPS <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) * float64(o.Workers) / o.TargetRPS)
}
