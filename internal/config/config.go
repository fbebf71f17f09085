package config

import (
	"fmt"
	"strings"
	"time"

	"pulsemeter/internal/sample"
)

// Config is the immutable run configuration: read by the driver and workers,
// never mutated once the run starts.
type Config struct {
	TargetURL   string        `mapstructure:"target"`
	Rate        float64       `mapstructure:"rate"`
	Duration    time.Duration `mapstructure:"duration"`
	Workers     int           `mapstructure:"workers"`
	Timeout     time.Duration `mapstructure:"timeout"`
	AnomalyMode string        `mapstructure:"anomaly_mode"`
	AnomalyProb float64       `mapstructure:"anomaly_prob"`
	DevicePool  int           `mapstructure:"device_pool"`
	Seed        int64         `mapstructure:"seed"`
	JSONOutput  bool          `mapstructure:"json_output"`
	LogErrors   bool          `mapstructure:"log_errors"`
	SkipAnalyze bool          `mapstructure:"skip_analyze"`
	ConfigFile  string        `mapstructure:"-"`
}

// ValidationError aggregates every configuration issue found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate rejects configurations that must not start a run. These are the
// only fatal errors in the process: everything after worker spawn degrades
// instead of failing.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}
	if c.Rate <= 0 {
		issues = append(issues, "rate must be > 0")
	}
	if c.Duration <= 0 {
		issues = append(issues, "duration must be > 0")
	}
	if c.Workers < 1 {
		issues = append(issues, "workers must be >= 1")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.AnomalyProb < 0 || c.AnomalyProb > 1 {
		issues = append(issues, "anomaly-prob must be within [0,1]")
	}
	if c.DevicePool < 0 {
		issues = append(issues, "device-pool must be >= 0")
	}

	switch sample.Mode(c.AnomalyMode) {
	case "", sample.ModeProbability, sample.ModeWeighted:
	default:
		issues = append(issues, fmt.Sprintf("anomaly mode %q is not supported", c.AnomalyMode))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}
