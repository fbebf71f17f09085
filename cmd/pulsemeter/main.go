package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"pulsemeter/internal/analytics"
	"pulsemeter/internal/config"
	"pulsemeter/internal/httpclient"
	"pulsemeter/internal/metrics"
	"pulsemeter/internal/output"
	"pulsemeter/internal/runner"
	"pulsemeter/internal/sample"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[pulsemeter] request failed: %v\n", err)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gen := sample.NewGenerator(sample.Options{
		Mode:        sample.Mode(cfg.AnomalyMode),
		AnomalyProb: cfg.AnomalyProb,
		DevicePool:  cfg.DevicePool,
		Rand:        rand.New(rand.NewSource(seed)),
	})

	client := httpclient.NewClient(cfg.Timeout)
	executor := httpclient.NewExecutor(client, cfg.TargetURL)
	collector := metrics.NewCollector()

	opts := runner.Options{
		Workers:   cfg.Workers,
		TargetRPS: cfg.Rate,
		Duration:  cfg.Duration,
		Sender:    executor,
		Generator: gen,
		Collector: collector,
	}
	if cfg.LogErrors {
		opts.FailureLogger = &stderrFailureLogger{}
	}

	r := runner.New(opts)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	result := r.Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	report := output.Report{
		RunID:   ulid.Make().String(),
		Summary: collector.Summary(result.Duration),
	}

	if !cfg.SkipAnalyze {
		an, err := analytics.Fetch(ctx, client, cfg.TargetURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[pulsemeter] %v\n", err)
		} else {
			report.Analytics = an
		}
	}

	if cfg.JSONOutput {
		return output.PrintJSONReport(os.Stdout, report)
	}
	output.PrintReport(os.Stdout, report)
	return nil
}
