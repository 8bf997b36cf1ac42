// Package config loads settings from a YAML file, .env files, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"time"

	"dataimport/internal/model"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DATAIMPORT_"

// Config holds every runtime setting.
type Config struct {
	// Server is the backend base URL
	Server string `yaml:"server" env:"SERVER"`

	// PollInterval is the delay between import progress requests
	PollInterval time.Duration `yaml:"-" env:"POLL_INTERVAL"`

	// RequestTimeout bounds every backend request
	RequestTimeout time.Duration `yaml:"-" env:"REQUEST_TIMEOUT"`

	// StateFile keeps UI state (expanded folders) between runs
	StateFile string `yaml:"state_file" env:"STATE_FILE"`

	// LogLevel is one of silent, error, warn, info, debug
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// LogFile receives logs; empty means stderr
	LogFile string `yaml:"log_file" env:"LOG_FILE"`

	// WebAddr is the listen address of the web front-end
	WebAddr string `yaml:"web_addr" env:"WEB_ADDR"`

	S3Region     string `yaml:"s3_region" env:"S3_REGION"`
	PostgresPort int    `yaml:"postgres_port" env:"POSTGRES_PORT"`
}

// Dir returns the per-user directory for config and state files.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "dataimport")
}

// DefaultPath is where Load looks for the YAML file.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Server:         "http://localhost:8080",
		PollInterval:   time.Second,
		RequestTimeout: 30 * time.Second,
		StateFile:      filepath.Join(Dir(), "state.json"),
		LogLevel:       "warn",
		WebAddr:        "localhost:8081",
		S3Region:       model.DefaultS3Region,
		PostgresPort:   model.DefaultPostgresPort,
	}
}

// LoadConfig reads the YAML file at path over the defaults.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	// Durations are read as strings so "1s" and "500ms" work.
	type yamlConfig struct {
		Config         `yaml:",inline"`
		PollInterval   string `yaml:"poll_interval"`
		RequestTimeout string `yaml:"request_timeout"`
	}
	yc := yamlConfig{Config: *cfg}
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	*cfg = yc.Config

	if yc.PollInterval != "" {
		d, err := time.ParseDuration(yc.PollInterval)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid poll_interval %q", yc.PollInterval)
		}
		cfg.PollInterval = d
	}
	if yc.RequestTimeout != "" {
		d, err := time.ParseDuration(yc.RequestTimeout)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid request_timeout %q", yc.RequestTimeout)
		}
		cfg.RequestTimeout = d
	}
	return cfg, nil
}

// LoadEnv loads whichever of envFiles exist and returns how many did.
// Variables already set in the environment win.
func LoadEnv(envFiles []string) (int, error) {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load builds the configuration from the YAML file at path, the given .env
// files and DATAIMPORT_* environment variables.
func Load(path string, envFiles []string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, errors.Wrap(err, "load .env")
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	return cfg, nil
}

// MergeWithFlags copies every flag the user set explicitly. Flags that are
// not defined in fs are ignored.
func (c *Config) MergeWithFlags(fs *pflag.FlagSet) {
	str := func(name string, dst *string) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	dur := func(name string, dst *time.Duration) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if d, err := fs.GetDuration(name); err == nil {
				*dst = d
			}
		}
	}
	str("server", &c.Server)
	str("state-file", &c.StateFile)
	str("log-level", &c.LogLevel)
	str("log-file", &c.LogFile)
	str("addr", &c.WebAddr)
	str("region", &c.S3Region)
	dur("poll-interval", &c.PollInterval)
	dur("timeout", &c.RequestTimeout)
}

var validLevels = map[string]bool{
	"silent": true,
	"error":  true,
	"warn":   true,
	"info":   true,
	"debug":  true,
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("server cannot be empty")
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("poll_interval must be > 0, got %v", c.PollInterval)
	}
	if c.RequestTimeout < 0 {
		return errors.Errorf("request_timeout must be >= 0, got %v", c.RequestTimeout)
	}
	if !validLevels[c.LogLevel] {
		return errors.Errorf("invalid log_level %q, must be one of: silent, error, warn, info, debug", c.LogLevel)
	}
	if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
		return errors.Errorf("postgres_port out of range: %d", c.PostgresPort)
	}
	return nil
}
