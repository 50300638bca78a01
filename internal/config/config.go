package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glabrego/threadfold/internal/thread"
)

const (
	defaultDBPath      = "threadfold.db"
	defaultSettleDelay = time.Second
	defaultHTTPTimeout = 15 * time.Second
	defaultUserAgent   = "threadfold/dev"
)

// Config holds runtime settings for the CLI app.
type Config struct {
	DBPath              string
	SettleDelay         time.Duration
	HTTPTimeout         time.Duration
	UserAgent           string
	ChallengeSignatures []string
	Offline             bool
	LogOutput           string
}

// fileConfig is the YAML shape. Durations are Go duration strings.
type fileConfig struct {
	DBPath              string   `yaml:"db_path"`
	SettleDelay         string   `yaml:"settle_delay"`
	HTTPTimeout         string   `yaml:"http_timeout"`
	UserAgent           string   `yaml:"user_agent"`
	ChallengeSignatures []string `yaml:"challenge_signatures"`
	Offline             *bool    `yaml:"offline"`
	LogOutput           string   `yaml:"log_output"`
}

func Default() Config {
	return Config{
		DBPath:              defaultDBPath,
		SettleDelay:         defaultSettleDelay,
		HTTPTimeout:         defaultHTTPTimeout,
		UserAgent:           defaultUserAgent,
		ChallengeSignatures: append([]string(nil), thread.DefaultChallengeSignatures...),
	}
}

func LoadFromEnv() (Config, error) {
	return Load("")
}

// Load layers the YAML file at path (or THREADFOLD_CONFIG when path is
// empty) and then the environment over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("THREADFOLD_CONFIG")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.SettleDelay != "" {
		d, err := time.ParseDuration(fc.SettleDelay)
		if err != nil {
			return fmt.Errorf("settle_delay: %w", err)
		}
		c.SettleDelay = d
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("http_timeout: %w", err)
		}
		c.HTTPTimeout = d
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if len(fc.ChallengeSignatures) > 0 {
		c.ChallengeSignatures = fc.ChallengeSignatures
	}
	if fc.Offline != nil {
		c.Offline = *fc.Offline
	}
	if fc.LogOutput != "" {
		c.LogOutput = fc.LogOutput
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("THREADFOLD_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("THREADFOLD_SETTLE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("THREADFOLD_SETTLE_DELAY: %w", err)
		}
		c.SettleDelay = d
	}
	if v := os.Getenv("THREADFOLD_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("THREADFOLD_HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}
	if v := os.Getenv("THREADFOLD_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv("THREADFOLD_OFFLINE")); v != "" {
		offline, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("THREADFOLD_OFFLINE must be a boolean: %s", v)
		}
		c.Offline = offline
	}
	if v := os.Getenv("THREADFOLD_LOG_OUTPUT"); v != "" {
		c.LogOutput = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.SettleDelay <= 0 {
		return fmt.Errorf("SettleDelay must be positive: %s", c.SettleDelay)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTPTimeout must be positive: %s", c.HTTPTimeout)
	}
	if len(c.ChallengeSignatures) == 0 {
		return errors.New("at least one challenge signature is required")
	}
	for _, sig := range c.ChallengeSignatures {
		if strings.TrimSpace(sig) == "" {
			return errors.New("challenge signatures must not be blank")
		}
	}
	return nil
}
