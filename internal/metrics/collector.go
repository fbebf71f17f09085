package metrics

import (
	"sync"
	"sync/atomic"
)

// Collector accumulates request outcomes for a single run.
//
// Workers increment the counters directly during the run; latency buffers and
// error breakdowns stay worker-local and are merged only after each worker has
// returned, so the hot loop never contends on the latency collection. Each run
// owns its own Collector instance.
type Collector struct {
	total     int64
	successes int64
	failures  int64

	mu           sync.Mutex
	latencies    []float64 // milliseconds, successful requests only
	errorsByType map[string]int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		errorsByType: make(map[string]int64),
	}
}

// RecordSuccess counts one successful request.
func (c *Collector) RecordSuccess() {
	atomic.AddInt64(&c.total, 1)
	atomic.AddInt64(&c.successes, 1)
}

// RecordFailure counts one failed request.
func (c *Collector) RecordFailure() {
	atomic.AddInt64(&c.total, 1)
	atomic.AddInt64(&c.failures, 1)
}

// Merge folds a worker's local latency buffer and error breakdown into the
// collector. Called once per worker after its loop has exited.
func (c *Collector) Merge(latenciesMs []float64, errors map[string]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies = append(c.latencies, latenciesMs...)
	for typ, n := range errors {
		c.errorsByType[typ] += n
	}
}

// Counts returns the current counter values. Safe to call during the run.
func (c *Collector) Counts() (total, successes, failures int64) {
	return atomic.LoadInt64(&c.total),
		atomic.LoadInt64(&c.successes),
		atomic.LoadInt64(&c.failures)
}
