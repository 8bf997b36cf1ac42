package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, "eu-central-1", cfg.S3Region)
	assert.Equal(t, 5432, cfg.PostgresPort)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
server: http://ingest.internal:9000
poll_interval: 250ms
log_level: debug
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "http://ingest.internal:9000", cfg.Server)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout, "unset keys keep defaults")
	assert.Equal(t, "eu-central-1", cfg.S3Region)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(writeFile(t, dir, "bad.yaml", "server: [unterminated"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, dir, "dur.yaml", "poll_interval: soon"))
	assert.ErrorContains(t, err, "poll_interval")
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "server: http://from-file\nlog_level: info\n")
	envFile := writeFile(t, dir, ".env", "DATAIMPORT_LOG_LEVEL=debug\nDATAIMPORT_S3_REGION=us-east-1\n")
	t.Setenv("DATAIMPORT_SERVER", "http://from-env")
	// godotenv.Load sets variables for the process; unset them afterwards.
	t.Setenv("DATAIMPORT_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("DATAIMPORT_LOG_LEVEL"))
	t.Setenv("DATAIMPORT_S3_REGION", "")
	require.NoError(t, os.Unsetenv("DATAIMPORT_S3_REGION"))

	cfg, err := Load(path, []string{envFile, filepath.Join(dir, ".env.local")})

	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.Server)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func TestLoadEnvCountsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATAIMPORT_WEB_ADDR", "")
	require.NoError(t, os.Unsetenv("DATAIMPORT_WEB_ADDR"))
	f := writeFile(t, dir, ".env", "DATAIMPORT_WEB_ADDR=:9999\n")

	n, err := LoadEnv([]string{f, filepath.Join(dir, "missing")})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, ":9999", os.Getenv("DATAIMPORT_WEB_ADDR"))
}

func TestMergeWithFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("server", "", "")
	fs.String("log-level", "", "")
	fs.Duration("poll-interval", 0, "")
	require.NoError(t, fs.Parse([]string{"--server", "http://flag", "--poll-interval", "2s"}))

	cfg := DefaultConfig()
	cfg.MergeWithFlags(fs)

	assert.Equal(t, "http://flag", cfg.Server)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "warn", cfg.LogLevel, "unchanged flags do not override")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty server":   func(c *Config) { c.Server = "" },
		"zero interval":  func(c *Config) { c.PollInterval = 0 },
		"bad level":      func(c *Config) { c.LogLevel = "loud" },
		"bad port":       func(c *Config) { c.PostgresPort = 70000 },
		"negative limit": func(c *Config) { c.RequestTimeout = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLogrusLevel(t *testing.T) {
	assert.Equal(t, logrus.PanicLevel, LogrusLevel("silent"))
	assert.Equal(t, logrus.DebugLevel, LogrusLevel("debug"))
	assert.Equal(t, logrus.ErrorLevel, LogrusLevel("whatever"))
}

func TestNewLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dataimport.log")

	logger, closer, err := NewLogger("info", path)
	require.NoError(t, err)
	logger.Info("hello")
	logger.Debug("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.NotContains(t, string(data), "hidden")
}
