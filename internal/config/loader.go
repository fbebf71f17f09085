package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pulsemeter/internal/sample"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Rate:        100,
		Duration:    30 * time.Second,
		Workers:     10,
		Timeout:     5 * time.Second,
		AnomalyMode: string(sample.ModeProbability),
		AnomalyProb: 0.05,
		ConfigFile:  configPath,
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.AnomalyMode = strings.ToLower(strings.TrimSpace(cfg.AnomalyMode))

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
	}

	if raw, ok := lookupSetting(settings, "workers"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("workers: %w", err)
		}
		cfg.Workers = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "anomalymode", "anomaly_mode", "anomaly-mode"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("anomalyMode: %w", err)
		}
		if val != "" {
			cfg.AnomalyMode = val
		}
	}

	if raw, ok := lookupSetting(settings, "anomalyprob", "anomaly_prob", "anomaly-prob"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("anomalyProb: %w", err)
		}
		cfg.AnomalyProb = val
	}

	if raw, ok := lookupSetting(settings, "devicepool", "device_pool", "device-pool"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("devicePool: %w", err)
		}
		cfg.DevicePool = val
	}

	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = int64(val)
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "skipanalyze", "skip_analyze", "skip-analyze"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("skipAnalyze: %w", err)
		}
		cfg.SkipAnalyze = val
	}

	return nil
}
