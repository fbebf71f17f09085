package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pulsemeter/internal/sample"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pulsemeter",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target and load shape
	flags.String("target", "", "Base URL of the metrics-ingestion service")
	flags.Float64P("rate", "r", 100, "Aggregate requests per second to approximate")
	flags.DurationP("duration", "d", 30*time.Second, "How long to run (e.g. 30s, 5m)")
	flags.IntP("workers", "w", 10, "Number of concurrent workers")
	flags.Duration("timeout", 5*time.Second, "Per-request timeout")

	// Sample generation
	flags.String("anomaly-mode", string(sample.ModeProbability), "Anomaly policy: probability or weighted")
	flags.Float64("anomaly-prob", 0.05, "Anomaly probability (probability mode only)")
	flags.Int("device-pool", 0, "Distinct device identifiers (0 picks the mode default)")
	flags.Int64("seed", 0, "Random seed (0 seeds from the clock)")

	// Output
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.Bool("skip-analyze", false, "Skip the post-run analytics read")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

// applyFlagOverrides overlays explicitly-set CLI flags on top of the config
// file values.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetFloat64("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
	}
	if fs.Changed("workers") {
		val, err := fs.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("anomaly-mode") {
		val, err := fs.GetString("anomaly-mode")
		if err != nil {
			return err
		}
		cfg.AnomalyMode = val
	}
	if fs.Changed("anomaly-prob") {
		val, err := fs.GetFloat64("anomaly-prob")
		if err != nil {
			return err
		}
		cfg.AnomalyProb = val
	}
	if fs.Changed("device-pool") {
		val, err := fs.GetInt("device-pool")
		if err != nil {
			return err
		}
		cfg.DevicePool = val
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("skip-analyze") {
		val, err := fs.GetBool("skip-analyze")
		if err != nil {
			return err
		}
		cfg.SkipAnalyze = val
	}
	return nil
}

func displayHelp(cmd *cobra.Command) {
	fmt.Fprintln(cmd.OutOrStdout(), "pulsemeter - synthetic telemetry load driver")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "Usage:")
	fmt.Fprintln(cmd.OutOrStdout(), "  pulsemeter --target http://localhost:8080 [flags]")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "Flags:")
	fmt.Fprint(cmd.OutOrStdout(), cmd.Flags().FlagUsages())
}
