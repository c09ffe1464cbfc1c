// Package config loads the spectre.yaml project configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Rostezkiy/spectre/store"
)

const (
	// DefaultFileName is looked up in the working directory when no path
	// is given explicitly.
	DefaultFileName = "spectre.yaml"

	// ConfigPathEnv overrides the configuration file location.
	ConfigPathEnv = "SPECTRE_CONFIG_PATH"

	// DBPathEnv overrides the database path from the file.
	DBPathEnv = "SPECTRE_DB_PATH"

	DefaultDatabasePath = "./data/spectre.db"
	DefaultListenAddr   = ":8080"
)

// Config is the top-level spectre configuration.
type Config struct {
	Project      string           `yaml:"project"`
	BaseURL      string           `yaml:"base_url"`
	DatabasePath string           `yaml:"database_path"`
	Server       ServerConfig     `yaml:"server"`
	Browser      BrowserConfig    `yaml:"browser"`
	Retention    RetentionConfig  `yaml:"retention"`
	Resources    []store.Resource `yaml:"resources"`
}

// ServerConfig controls the REST API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// BrowserConfig controls the capture browser.
type BrowserConfig struct {
	Remote         string   `yaml:"remote"`
	Headless       *bool    `yaml:"headless"`
	IgnoredDomains []string `yaml:"ignored_domains"`
}

// RetentionConfig controls capture cleanup.
type RetentionConfig struct {
	Days int `yaml:"days"`
}

// Locate resolves the configuration file path: an explicit path wins,
// then the SPECTRE_CONFIG_PATH environment variable, then spectre.yaml
// in the working directory. The returned path may not exist; Load
// treats a missing file as an empty configuration.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(ConfigPathEnv); env != "" {
		return env
	}
	return DefaultFileName
}

// Load reads and parses a configuration file. A missing file yields the
// defaults, so spectre runs without any configuration at all. A present
// but unparseable file is an error; silently ignoring it would run with
// the wrong database.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Project == "" {
		c.Project = "default"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultListenAddr
	}
	if c.Browser.Headless == nil {
		headless := true
		c.Browser.Headless = &headless
	}
	for i := range c.Resources {
		c.Resources[i] = store.NewResource(
			c.Resources[i].Name,
			c.Resources[i].URLPattern,
			c.Resources[i].Method,
			c.Resources[i].PrimaryKey,
		)
	}
}

func (c *Config) applyEnv() {
	if db := os.Getenv(DBPathEnv); db != "" {
		c.DatabasePath = db
	}
}

// Headless reports the effective headless setting.
func (c *Config) Headless() bool {
	return c.Browser.Headless == nil || *c.Browser.Headless
}
