// Package config loads the receipt service configuration from a YAML file
// with RECEIPTS_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	Listen          string        `yaml:"listen"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Log             Log           `yaml:"log"`
	Orgs            Orgs          `yaml:"orgs"`
	Receipt         Receipt       `yaml:"receipt"`
	Events          Events        `yaml:"events"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Orgs configures the organisation name table. File takes precedence over
// URL.
type Orgs struct {
	URL     string        `yaml:"url"`
	File    string        `yaml:"file"`
	Refresh time.Duration `yaml:"refresh"`
}

type Receipt struct {
	Letterhead     string `yaml:"letterhead"`
	Barcode        string `yaml:"barcode"`
	BarcodeBaseURL string `yaml:"barcode_base_url"`
	FormFields     bool   `yaml:"form_fields"`
	GoFonts        bool   `yaml:"go_fonts"`
	Compress       bool   `yaml:"compress"`
	Creator        string `yaml:"creator"`
}

// Events configures the event sinks. An empty DSN disables the database
// sink.
type Events struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Log    bool   `yaml:"log"`
}

// Default returns the configuration used for unset values.
func Default() Config {
	return Config{
		Listen:          ":8080",
		ShutdownTimeout: 10 * time.Second,
		Log:             Log{Level: "info"},
		Orgs: Orgs{
			URL:     "https://altinncdn.no/orgs/altinn-orgs.json",
			Refresh: time.Hour,
		},
		Receipt: Receipt{Compress: true, Creator: "receipts"},
		Events:  Events{Driver: "sqlite3", Log: true},
	}
}

// Load reads the file at path, which may be empty, and applies the
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := Parse(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML into cfg, keeping the values of keys that are absent.
// Unknown keys are rejected.
func Parse(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var err error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = fmt.Errorf("config: %s: %w", key, perr)
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				err = fmt.Errorf("config: %s: %w", key, perr)
				return
			}
			*dst = d
		}
	}

	str("RECEIPTS_LISTEN", &c.Listen)
	duration("RECEIPTS_SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	str("RECEIPTS_LOG_LEVEL", &c.Log.Level)
	boolean("RECEIPTS_LOG_DEVELOPMENT", &c.Log.Development)
	str("RECEIPTS_ORGS_URL", &c.Orgs.URL)
	str("RECEIPTS_ORGS_FILE", &c.Orgs.File)
	duration("RECEIPTS_ORGS_REFRESH", &c.Orgs.Refresh)
	str("RECEIPTS_LETTERHEAD", &c.Receipt.Letterhead)
	str("RECEIPTS_BARCODE", &c.Receipt.Barcode)
	str("RECEIPTS_BARCODE_BASE_URL", &c.Receipt.BarcodeBaseURL)
	boolean("RECEIPTS_FORM_FIELDS", &c.Receipt.FormFields)
	boolean("RECEIPTS_GO_FONTS", &c.Receipt.GoFonts)
	boolean("RECEIPTS_COMPRESS", &c.Receipt.Compress)
	str("RECEIPTS_EVENTS_DRIVER", &c.Events.Driver)
	str("RECEIPTS_EVENTS_DSN", &c.Events.DSN)
	boolean("RECEIPTS_EVENTS_LOG", &c.Events.Log)
	return err
}

// Validate checks values the service cannot start with.
func (c Config) Validate() error {
	switch {
	case c.Listen == "":
		return errors.New("config: listen address is required")
	case c.Orgs.Refresh <= 0:
		return fmt.Errorf("config: orgs refresh interval must be positive, got %s", c.Orgs.Refresh)
	}
	switch c.Receipt.Barcode {
	case "", "qr", "pdf417":
	default:
		return fmt.Errorf("config: unknown barcode kind %q", c.Receipt.Barcode)
	}
	switch c.Events.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("config: unsupported events driver %q", c.Events.Driver)
	}
	return nil
}
