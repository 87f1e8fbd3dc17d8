// Package config loads locator settings from defaults, an optional
// .locator.yaml, LOCATOR_ environment variables and bound command flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/specvital/locator/pkg/parser"
)

const (
	// EnvPrefix is prepended to every environment variable, e.g. LOCATOR_LOG_LEVEL.
	EnvPrefix = "LOCATOR"
	// FileName is the config file name searched for without extension.
	FileName = ".locator"

	OutputTable = "table"
	OutputJSON  = "json"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config holds the complete application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
	Go     GoConfig     `mapstructure:"go"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScanConfig holds workspace scanner configuration.
type ScanConfig struct {
	Workers     int           `mapstructure:"workers"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Exclude     []string      `mapstructure:"exclude"`
	Patterns    []string      `mapstructure:"patterns"`
	MaxFileSize int64         `mapstructure:"max_file_size"`
}

// OutputConfig holds result rendering configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// GoConfig holds go toolchain configuration.
type GoConfig struct {
	Binary string `mapstructure:"binary"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", LogFormatText)

	v.SetDefault("scan.workers", parser.DefaultWorkers)
	v.SetDefault("scan.timeout", parser.DefaultTimeout)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("scan.patterns", []string{})
	v.SetDefault("scan.max_file_size", parser.DefaultMaxFileSize)

	v.SetDefault("output.format", OutputTable)

	v.SetDefault("go.binary", "go")
}

// Load reads configuration into v. An empty cfgFile searches the working
// directory for .locator.yaml; a missing file is not an error in that case.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return New(v)
}

// New decodes and validates the configuration held by v.
func New(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}

	switch c.Log.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("log.format must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.Log.Format)
	}

	switch c.Output.Format {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", OutputTable, OutputJSON, c.Output.Format)
	}

	if c.Scan.Workers < 0 || c.Scan.Workers > parser.MaxWorkers {
		return fmt.Errorf("scan.workers must be between 0 and %d", parser.MaxWorkers)
	}

	if c.Scan.Timeout < 0 {
		return errors.New("scan.timeout must not be negative")
	}

	if c.Scan.MaxFileSize < 0 {
		return errors.New("scan.max_file_size must not be negative")
	}

	if strings.TrimSpace(c.Go.Binary) == "" {
		return errors.New("go.binary is required")
	}

	return nil
}

// ScanOptions converts the scan section into scanner options.
func (c *Config) ScanOptions() []parser.ScanOption {
	return []parser.ScanOption{
		parser.WithWorkers(c.Scan.Workers),
		parser.WithTimeout(c.Scan.Timeout),
		parser.WithExcludePatterns(c.Scan.Exclude),
		parser.WithPatterns(c.Scan.Patterns),
		parser.WithMaxFileSize(c.Scan.MaxFileSize),
	}
}

// NewLogger builds a slog logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
