// Package config loads the honeypot configuration from a TOML file with
// environment overrides for the SMTP relay credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration. Zero values fall back to
// Default(), so a partial file is fine.
type Config struct {
	Bind     string `toml:"bind"`
	Port     int    `toml:"port"`
	LogFile  string `toml:"log_file"`
	Timeout  int    `toml:"timeout"` // seconds of idle before disconnect
	MaxConns int    `toml:"max_conns"`
	Uploads  string `toml:"uploads"`

	Printer  PrinterConfig  `toml:"printer"`
	Taxonomy TaxonomyConfig `toml:"taxonomy"`
	Alert    AlertConfig    `toml:"alert"`
}

// PrinterConfig tunes the emulated device.
type PrinterConfig struct {
	ReadyMsg       string `toml:"ready_msg"`
	RotateIdentity bool   `toml:"rotate_identity"`
}

// TaxonomyConfig optionally points at a YAML override of the built-in
// action/trait tables.
type TaxonomyConfig struct {
	File string `toml:"file"`
}

// AlertConfig configures the honeytoken email channel. Credentials come from
// SMTP_* environment variables when unset here.
type AlertConfig struct {
	Enabled  bool   `toml:"enabled"`
	Server   string `toml:"server"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Bind:     "localhost",
		Port:     9100,
		LogFile:  "./miniprint.log",
		Timeout:  120,
		MaxConns: 512,
		Uploads:  "./uploads",
		Printer:  PrinterConfig{ReadyMsg: "Ready"},
	}
}

// Load reads path and merges it over the defaults. A missing file is an
// error; call Default directly when no file is configured.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		c.Alert.Server = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Alert.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.Alert.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		c.Alert.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		c.Alert.From = v
	}
	if v := os.Getenv("SMTP_TO"); v != "" {
		c.Alert.To = v
	}
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxConns <= 0 {
		return errors.New("max_conns must be positive")
	}
	if c.Alert.Enabled && (c.Alert.Server == "" || c.Alert.To == "") {
		return errors.New("alert enabled but smtp server/recipient missing")
	}
	return nil
}
