// Package config loads chartctl settings from YAML, the environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/logger"
)

// Environment variables read by ApplyEnv.
const (
	EnvSelectedLength = "CHARTLAB_SELECTED_LENGTH"
	EnvTopN           = "CHARTLAB_TOP_N"
	EnvCategories     = "CHARTLAB_CATEGORIES"
	EnvExchange       = "CHARTLAB_EXCHANGE"
	EnvLogLevel       = "CHARTLAB_LOG_LEVEL"
	EnvLogFormat      = "CHARTLAB_LOG_FORMAT"
	EnvLogFile        = "CHARTLAB_LOG_FILE"
	EnvIndent         = "CHARTLAB_INDENT"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// EngineConfig holds request defaults; CLI flags override them.
type EngineConfig struct {
	SelectedLength int      `yaml:"selected_length"`
	TopN           int      `yaml:"top_n"`
	Categories     []string `yaml:"categories"`
	Exchange       bool     `yaml:"exchange"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type OutputConfig struct {
	Indent bool `yaml:"indent"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			SelectedLength: 30,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     logger.FormatText,
			MaxAgeDays: 7,
		},
		Output: OutputConfig{
			Indent: true,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment variables. envFile, when set, is loaded into the
// process environment first; a missing default .env is not an error.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvSelectedLength); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvSelectedLength, err)
		}
		c.Engine.SelectedLength = n
	}
	if v := getenv(EnvTopN); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvTopN, err)
		}
		c.Engine.TopN = n
	}
	if v := getenv(EnvCategories); v != "" {
		c.Engine.Categories = splitList(v)
	}
	if v := getenv(EnvExchange); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvExchange, err)
		}
		c.Engine.Exchange = b
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := getenv(EnvIndent); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvIndent, err)
		}
		c.Output.Indent = b
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Engine.SelectedLength <= 0 {
		return fmt.Errorf("%w: selected_length must be positive, got %d", ErrInvalidConfig, c.Engine.SelectedLength)
	}
	if c.Engine.TopN < 0 {
		return fmt.Errorf("%w: top_n must not be negative, got %d", ErrInvalidConfig, c.Engine.TopN)
	}
	if _, err := c.CategorySet(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("%w: max_age_days must not be negative, got %d", ErrInvalidConfig, c.Logging.MaxAgeDays)
	}
	switch strings.ToLower(c.Logging.Format) {
	case logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// CategorySet parses the configured categories.
func (c *Config) CategorySet() (domain.CategorySet, error) {
	set := make(domain.CategorySet, 0, len(c.Engine.Categories))
	for _, s := range c.Engine.Categories {
		cat, err := domain.ParseCategory(s)
		if err != nil {
			return nil, err
		}
		set = append(set, cat)
	}
	return set, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
