package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".srs-exporter.yml"

// Environment variables that override the configuration file
const (
	EnvUsername = "SRS_USERNAME"
	EnvPassword = "SRS_PASSWORD"
)

// Password sources
const (
	PasswordSourceConfig  = "config"
	PasswordSourceEnv     = "env"
	PasswordSourceKeyring = "keyring"
)

// Config represents the exporter configuration
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Query      QueryConfig      `yaml:"query"`
	Template   TemplateConfig   `yaml:"template"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
}

// ConnectionConfig represents tracker connection settings
type ConnectionConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	Collection     string        `yaml:"collection"`
	Project        string        `yaml:"project"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password,omitempty"`
	PasswordSource string        `yaml:"password_source,omitempty"` // config, env or keyring
	APIVersion     string        `yaml:"api_version,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	Insecure       bool          `yaml:"insecure,omitempty"` // skip TLS verification
}

// QueryConfig represents query shape settings
type QueryConfig struct {
	WorkItemType string `yaml:"work_item_type"`
	Limit        int    `yaml:"limit"`
}

// TemplateConfig represents the document template used by export
type TemplateConfig struct {
	Path      string `yaml:"path"`
	Output    string `yaml:"output,omitempty"` // defaults to Path
	Tag       string `yaml:"tag"`
	StripTags bool   `yaml:"strip_tags,omitempty"`
}

// MetricsConfig represents metrics export settings
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Endpoint:       "https://tfs.example.com/tfs",
			Collection:     "DefaultCollection",
			PasswordSource: PasswordSourceKeyring,
			APIVersion:     "5.0",
			Timeout:        30 * time.Second,
		},
		Query: QueryConfig{
			WorkItemType: "Epic",
			Limit:        10,
		},
		Template: TemplateConfig{
			Path: "SRS.docx",
			Tag:  "<<EpicTitle>>",
		},
	}
}

// Load loads configuration from the file found in the current or parent directories
func Load() (*Config, error) {
	configPath := findConfigFile()
	if configPath == "" {
		return nil, fmt.Errorf("configuration file %s not found in current or parent directories", ConfigFileName)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from path. Unset values fall back to DefaultConfig.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may carry a password
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in current and parent directories
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Exists checks if configuration file exists
func Exists() bool {
	return findConfigFile() != ""
}

// FindConfigPath returns the path to the configuration file
func FindConfigPath() string {
	return findConfigFile()
}

// ApplyEnv overrides credentials from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvUsername); v != "" {
		c.Connection.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" && c.Connection.PasswordSource == PasswordSourceEnv {
		c.Connection.Password = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	conn := c.Connection
	if conn.Endpoint == "" {
		return fmt.Errorf("connection.endpoint is required")
	}
	u, err := url.Parse(conn.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("connection.endpoint must be an absolute http(s) URL, got '%s'", conn.Endpoint)
	}
	if strings.Trim(conn.Collection, "/") == "" {
		return fmt.Errorf("connection.collection is required")
	}
	if strings.TrimSpace(conn.Project) == "" {
		return fmt.Errorf("connection.project is required")
	}
	if conn.Username == "" {
		return fmt.Errorf("connection.username is required")
	}

	switch conn.PasswordSource {
	case "", PasswordSourceConfig:
		if conn.Password == "" {
			return fmt.Errorf("connection.password is required when password_source is '%s'", PasswordSourceConfig)
		}
	case PasswordSourceEnv, PasswordSourceKeyring:
	default:
		return fmt.Errorf("invalid connection.password_source '%s': must be config, env or keyring", conn.PasswordSource)
	}

	if conn.Timeout < 0 {
		return fmt.Errorf("connection.timeout must not be negative")
	}

	if c.Query.Limit < 0 {
		return fmt.Errorf("query.limit must be positive, got %d", c.Query.Limit)
	}

	return nil
}

// ValidateTemplate checks the template section used by export
func (c *Config) ValidateTemplate() error {
	if c.Template.Path == "" {
		return fmt.Errorf("template.path is required")
	}
	if c.Template.Tag == "" {
		return fmt.Errorf("template.tag is required")
	}
	return nil
}

// OutputPath returns where the filled template is written
func (c *Config) OutputPath() string {
	if c.Template.Output != "" {
		return c.Template.Output
	}
	return c.Template.Path
}

// Redacted returns a copy safe for printing
func (c Config) Redacted() Config {
	if c.Connection.Password != "" {
		c.Connection.Password = "***"
	}
	return c
}
