package runner

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result captures execution summary.
type Result struct {
	Total    int64
	Errors   int64
	Duration time.Duration
}

// Runner drives a fixed pool of rate-controlled workers against a shared
// wall-clock deadline and merges their results after a join-all barrier.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run executes the load until the deadline and returns once every worker has
// finished and been merged. Cancelling ctx ends the run early.
func (r *Runner) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	deadline := start.Add(r.opt.Duration)
	interval := r.opt.pacingInterval()

	results := make([]workerResult, r.opt.Workers)

	var wg sync.WaitGroup
	wg.Add(r.opt.Workers)
	for i := 0; i < r.opt.Workers; i++ {
		go func(id int) {
			defer wg.Done()
			results[id] = r.work(ctx, id, deadline, interval)
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		r.opt.Collector.Merge(res.latencies, res.errors)
	}

	total, _, failures := r.opt.Collector.Counts()
	return Result{
		Total:    total,
		Errors:   failures,
		Duration: time.Since(start),
	}
}

// workerResult holds the state a worker accumulates privately during the run.
type workerResult struct {
	id        int
	latencies []float64
	errors    map[string]int64
}

// work loops generate -> send -> record -> sleep until the deadline passes.
// Termination is time-based only; the last iteration may overshoot the
// deadline by one request plus one pacing interval.
func (r *Runner) work(ctx context.Context, id int, deadline time.Time, interval time.Duration) workerResult {
	res := workerResult{id: id, errors: make(map[string]int64)}

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}

		s := r.opt.Generator.Next()
		out := r.opt.Sender.Send(ctx, s)

		if out.Success {
			r.opt.Collector.RecordSuccess()
			res.latencies = append(res.latencies, float64(out.Latency)/float64(time.Millisecond))
		} else {
			r.opt.Collector.RecordFailure()
			res.errors[errorType(out.Err)]++
			if r.opt.FailureLogger != nil {
				r.opt.FailureLogger.LogFailure(out.Err)
			}
		}

		if interval > 0 && !sleep(ctx, interval) {
			break
		}
	}

	return res
}

// sleep waits for d, returning false if ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func errorType(err error) string {
	if err == nil {
		return "unknown"
	}
	typ := fmt.Sprintf("%T", err)
	if len(typ) > 30 {
		typ = typ[len(typ)-30:]
	}
	return typ
}
