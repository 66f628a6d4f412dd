// Package config provides configuration loading and validation for outlier.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
	"github.com/Sumatoshi-tech/outlier/pkg/generator"
)

// configName is the config file name without extension.
const configName = ".outlier"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for outlier settings.
const envPrefix = "OUTLIER"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Sentinel validation errors.
var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidColumn    = errors.New("input column must be non-negative")
)

// Config holds all configuration for outlier.
type Config struct {
	Detector  DetectorConfig  `mapstructure:"detector"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DetectorConfig holds detection settings.
type DetectorConfig struct {
	Mode       string  `mapstructure:"mode"`
	WindowSize int     `mapstructure:"window_size"`
	Threshold  float64 `mapstructure:"threshold"`
}

// Options converts the section to detector options.
func (d DetectorConfig) Options() anomaly.Options {
	return anomaly.Options{
		Mode:       anomaly.Mode(strings.ToLower(d.Mode)),
		WindowSize: d.WindowSize,
		Threshold:  d.Threshold,
	}
}

// GeneratorConfig holds synthetic stream settings for the demo.
type GeneratorConfig struct {
	generator.Config `mapstructure:",squash"`

	Seed uint64 `mapstructure:"seed"`
}

// InputConfig holds stream file reading settings.
type InputConfig struct {
	MaxSize string `mapstructure:"max_size"`
	Column  int    `mapstructure:"column"`
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
	Theme  string `mapstructure:"theme"`
	Band   bool   `mapstructure:"band"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// JSON reports whether logs should be JSON formatted.
func (l LoggingConfig) JSON() bool {
	return strings.EqualFold(l.Format, "json")
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	// OTLPEndpoint is the collector address; empty disables export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	Environment  string `mapstructure:"environment"`
	// MetricsPath receives a Prometheus text snapshot after each run.
	MetricsPath string `mapstructure:"metrics_path"`
}

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			Mode:       DefaultDetectorMode,
			WindowSize: DefaultDetectorWindowSize,
			Threshold:  DefaultDetectorThreshold,
		},
		Generator: GeneratorConfig{
			Config: generator.Config{
				Points:      DefaultGeneratorPoints,
				AnomalyRate: DefaultGeneratorAnomalyRate,
				Frequency:   DefaultGeneratorFrequency,
				Noise:       DefaultGeneratorNoise,
				SpikeMin:    DefaultGeneratorSpikeMin,
				SpikeMax:    DefaultGeneratorSpikeMax,
			},
			Seed: DefaultGeneratorSeed,
		},
		Input: InputConfig{
			MaxSize: DefaultInputMaxSize,
			Column:  DefaultInputColumn,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
			Path:   DefaultOutputPath,
			Theme:  DefaultOutputTheme,
			Band:   DefaultOutputBand,
		},
		Logging: LoggingConfig{
			Level:  DefaultLoggingLevel,
			Format: DefaultLoggingFormat,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: DefaultTelemetryOTLPEndpoint,
			OTLPInsecure: DefaultTelemetryOTLPInsecure,
			MetricsPath:  DefaultTelemetryMetricsPath,
		},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("detector.mode", DefaultDetectorMode)
	viperCfg.SetDefault("detector.window_size", DefaultDetectorWindowSize)
	viperCfg.SetDefault("detector.threshold", DefaultDetectorThreshold)

	viperCfg.SetDefault("generator.n_points", DefaultGeneratorPoints)
	viperCfg.SetDefault("generator.anomaly_rate", DefaultGeneratorAnomalyRate)
	viperCfg.SetDefault("generator.frequency", DefaultGeneratorFrequency)
	viperCfg.SetDefault("generator.noise", DefaultGeneratorNoise)
	viperCfg.SetDefault("generator.spike_min", DefaultGeneratorSpikeMin)
	viperCfg.SetDefault("generator.spike_max", DefaultGeneratorSpikeMax)
	viperCfg.SetDefault("generator.seed", DefaultGeneratorSeed)

	viperCfg.SetDefault("input.max_size", DefaultInputMaxSize)
	viperCfg.SetDefault("input.column", DefaultInputColumn)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.path", DefaultOutputPath)
	viperCfg.SetDefault("output.theme", DefaultOutputTheme)
	viperCfg.SetDefault("output.band", DefaultOutputBand)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.format", DefaultLoggingFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryOTLPInsecure)
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.metrics_path", DefaultTelemetryMetricsPath)
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	err := c.Detector.Options().Validate()
	if err != nil {
		return fmt.Errorf("detector: %w", err)
	}

	err = c.Generator.Validate()
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}

	if c.Input.Column < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, c.Input.Column)
	}

	_, err = c.Logging.SlogLevel()
	if err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}
