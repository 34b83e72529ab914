package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/i18n"
)

// EnvPrefix prefixes every environment variable (FHIRVIEW_LOG_LEVEL, ...).
const EnvPrefix = "FHIRVIEW"

type Config struct {
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	Lang          string `mapstructure:"LANG"`
	DuplicateKeys string `mapstructure:"DUPLICATE_KEYS"`
	MaxDepth      int    `mapstructure:"MAX_DEPTH"`
	MaxBytes      int64  `mapstructure:"MAX_BYTES"`
	Strict        bool   `mapstructure:"STRICT"`
	Codes         bool   `mapstructure:"CODES"`
	SchemaFile    string `mapstructure:"SCHEMA_FILE"`
	Color         string `mapstructure:"COLOR"`
}

var keys = []string{
	"LOG_LEVEL", "LOG_FORMAT", "LANG", "DUPLICATE_KEYS", "MAX_DEPTH",
	"MAX_BYTES", "STRICT", "CODES", "SCHEMA_FILE", "COLOR",
}

// Load reads the configuration from FHIRVIEW_* environment variables and,
// when file is not empty, from that config file (any format viper reads).
// Environment variables win over the file.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LANG", "en")
	v.SetDefault("DUPLICATE_KEYS", "error")
	v.SetDefault("MAX_DEPTH", 256)
	v.SetDefault("MAX_BYTES", 64<<20)
	v.SetDefault("STRICT", false)
	v.SetDefault("CODES", false)
	v.SetDefault("SCHEMA_FILE", "")
	v.SetDefault("COLOR", "auto")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if _, ok := fhirview.ParseSeverity(c.DuplicateKeys); !ok {
		return fmt.Errorf("DUPLICATE_KEYS must be ignore, warn or error, got %q", c.DuplicateKeys)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("COLOR must be auto, always or never, got %q", c.Color)
	}
	if c.MaxDepth < 0 || c.MaxBytes < 0 {
		return fmt.Errorf("MAX_DEPTH and MAX_BYTES must not be negative")
	}
	return nil
}

// ParseOpt converts the input limits into parser options. warn receives
// duplicate-key warnings under DUPLICATE_KEYS=warn.
func (c *Config) ParseOpt(warn func(fhirview.Issue)) fhirview.ParseOpt {
	sev, _ := fhirview.ParseSeverity(c.DuplicateKeys)
	return fhirview.ParseOpt{
		Strictness: fhirview.Strictness{OnDuplicateKey: sev},
		MaxDepth:   c.MaxDepth,
		MaxBytes:   c.MaxBytes,
		Warnings:   warn,
	}
}

// Unknown returns the unknown-key policy.
func (c *Config) Unknown() fhirview.UnknownPolicy {
	if c.Strict {
		return fhirview.UnknownStrict
	}
	return fhirview.UnknownPassthrough
}

// Logger builds the process logger: human readable console output or JSON
// lines, with timestamps.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	if c.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: c.Color == "never"}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

// Apply installs process-wide settings (message language).
func (c *Config) Apply() {
	i18n.SetLanguage(c.Lang)
}
