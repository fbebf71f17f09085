// Package runner provides the load execution engine for pulsemeter.
//
// The runner drives a fixed pool of workers against a shared wall-clock
// deadline. Each worker repeats generate -> send -> record -> sleep, where
// the sleep is a fixed pacing interval of Workers/TargetRPS seconds. The
// pacing is open-loop: there is no feedback from observed latency, so the
// configured rate is a ceiling rather than a guarantee once the target slows
// down.
//
// # Basic Usage
//
//	opts := runner.Options{
//		Workers:   10,
//		TargetRPS: 100,
//		Duration:  time.Minute,
//		Sender:    executor,
//		Generator: gen,
//		Collector: collector,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// Run blocks until every worker has finished and its locally buffered
// latencies have been merged into the collector; partial results are never
// observable.
package runner
