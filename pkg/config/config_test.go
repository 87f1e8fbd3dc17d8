package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/locator/pkg/parser"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, LogFormatText, cfg.Log.Format)
	assert.Equal(t, parser.DefaultWorkers, cfg.Scan.Workers)
	assert.Equal(t, parser.DefaultTimeout, cfg.Scan.Timeout)
	assert.Equal(t, int64(parser.DefaultMaxFileSize), cfg.Scan.MaxFileSize)
	assert.Empty(t, cfg.Scan.Exclude)
	assert.Equal(t, OutputTable, cfg.Output.Format)
	assert.Equal(t, "go", cfg.Go.Binary)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte(`log:
  level: debug
  format: json
scan:
  workers: 4
  timeout: 30s
  exclude:
    - generated
    - third_party/**
output:
  format: json
go:
  binary: /usr/local/go/bin/go
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".locator.yaml"), content, 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 30*time.Second, cfg.Scan.Timeout)
	assert.Equal(t, []string{"generated", "third_party/**"}, cfg.Scan.Exclude)
	assert.Equal(t, OutputJSON, cfg.Output.Format)
	assert.Equal(t, "/usr/local/go/bin/go", cfg.Go.Binary)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Run("should read the given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0o644))

		cfg, err := Load(viper.New(), path)
		require.NoError(t, err)
		assert.Equal(t, OutputJSON, cfg.Output.Format)
	})

	t.Run("should fail when the given path is missing", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOCATOR_LOG_LEVEL", "error")
	t.Setenv("LOCATOR_SCAN_WORKERS", "2")
	t.Setenv("LOCATOR_GO_BINARY", "go1.24")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, "go1.24", cfg.Go.Binary)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Log:    LogConfig{Level: "info", Format: LogFormatText},
			Scan:   ScanConfig{Workers: 1, Timeout: time.Second, MaxFileSize: 1},
			Output: OutputConfig{Format: OutputTable},
			Go:     GoConfig{Binary: "go"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "bad output format", mutate: func(c *Config) { c.Output.Format = "yaml" }, wantErr: "output.format"},
		{name: "negative workers", mutate: func(c *Config) { c.Scan.Workers = -1 }, wantErr: "scan.workers"},
		{name: "too many workers", mutate: func(c *Config) { c.Scan.Workers = parser.MaxWorkers + 1 }, wantErr: "scan.workers"},
		{name: "negative timeout", mutate: func(c *Config) { c.Scan.Timeout = -time.Second }, wantErr: "scan.timeout"},
		{name: "negative max file size", mutate: func(c *Config) { c.Scan.MaxFileSize = -1 }, wantErr: "scan.max_file_size"},
		{name: "empty go binary", mutate: func(c *Config) { c.Go.Binary = " " }, wantErr: "go.binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := LogConfig{Level: "info", Format: LogFormatJSON}.NewLogger(&buf)
		require.NoError(t, err)

		logger.Info("scanned", "files", 3)
		logger.Debug("hidden")

		assert.Contains(t, buf.String(), `"msg":"scanned"`)
		assert.Contains(t, buf.String(), `"files":3`)
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := LogConfig{Level: "debug", Format: LogFormatText}.NewLogger(&buf)
		require.NoError(t, err)

		logger.Debug("visible")

		assert.Contains(t, buf.String(), "msg=visible")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := LogConfig{Level: "chatty"}.NewLogger(&bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestConfig_ScanOptions(t *testing.T) {
	cfg := Config{Scan: ScanConfig{
		Workers:     3,
		Timeout:     time.Minute,
		Exclude:     []string{"gen"},
		Patterns:    []string{"pkg/**"},
		MaxFileSize: 42,
	}}

	opts := &parser.ScanOptions{}
	for _, opt := range cfg.ScanOptions() {
		opt(opts)
	}

	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, time.Minute, opts.Timeout)
	assert.Equal(t, []string{"gen"}, opts.ExcludePatterns)
	assert.Equal(t, []string{"pkg/**"}, opts.Patterns)
	assert.Equal(t, int64(42), opts.MaxFileSize)
}
