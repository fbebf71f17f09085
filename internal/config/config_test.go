package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		TargetURL:   "http://localhost:8080",
		Rate:        100,
		Duration:    30 * time.Second,
		Workers:     10,
		Timeout:     5 * time.Second,
		AnomalyMode: "probability",
		AnomalyProb: 0.05,
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

// TestValidateRejections covers every fatal pre-run configuration error; these
// are the only conditions allowed to abort the process.
func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing target", func(c *Config) { c.TargetURL = " " }, "target is required"},
		{"zero rate", func(c *Config) { c.Rate = 0 }, "rate must be > 0"},
		{"negative rate", func(c *Config) { c.Rate = -5 }, "rate must be > 0"},
		{"zero duration", func(c *Config) { c.Duration = 0 }, "duration must be > 0"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers must be >= 1"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must be >= 0"},
		{"probability above one", func(c *Config) { c.AnomalyProb = 1.5 }, "anomaly-prob"},
		{"negative device pool", func(c *Config) { c.DevicePool = -1 }, "device-pool"},
		{"unknown anomaly mode", func(c *Config) { c.AnomalyMode = "chaotic" }, "not supported"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var vErr ValidationError
	if !asValidationError(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(vErr.Issues()) < 3 {
		t.Fatalf("expected multiple issues, got %v", vErr.Issues())
	}
}

func asValidationError(err error, target *ValidationError) bool {
	v, ok := err.(ValidationError)
	if ok {
		*target = v
	}
	return ok
}
