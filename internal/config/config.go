// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bdrennan/mailkit/internal/imaging"
)

// Config holds the complete application configuration.
type Config struct {
	Send    SendConfig    `yaml:"send"`
	Gmail   GmailConfig   `yaml:"gmail"`
	SES     SESConfig     `yaml:"ses"`
	Graph   GraphConfig   `yaml:"graph"`
	Logging LoggingConfig `yaml:"logging"`
}

// SendConfig holds defaults applied when composing and sending.
type SendConfig struct {
	Provider     string `yaml:"provider"`
	From         string `yaml:"from"`
	MaxImageEdge int    `yaml:"max_image_edge"`
}

// GmailConfig holds Gmail API OAuth configuration.
type GmailConfig struct {
	CredentialsFile string   `yaml:"credentials_file"`
	TokenFile       string   `yaml:"token_file"`
	Scopes          []string `yaml:"scopes"`
}

// SESConfig holds AWS SES configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// GraphConfig holds Microsoft Graph API configuration.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Sender       string `yaml:"sender"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer, then
// overrides with environment variables. Returns an error if the specified
// file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// GmailConfigured returns true if the Gmail client-secrets path is set.
func (c *Config) GmailConfigured() bool {
	return c.Gmail.CredentialsFile != ""
}

// SESConfigured returns true if the SES region is set.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != ""
}

// GraphConfigured returns true if all four Graph API credentials are set.
func (c *Config) GraphConfigured() bool {
	return c.Graph.TenantID != "" &&
		c.Graph.ClientID != "" &&
		c.Graph.ClientSecret != "" &&
		c.Graph.Sender != ""
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Send.Provider = "stdout"
	c.Send.MaxImageEdge = imaging.DefaultMaxEdge
	c.Gmail.CredentialsFile = "credentials.json"
	c.Gmail.TokenFile = "token.json"
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("MAILKIT_PROVIDER"); v != "" {
		c.Send.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("MAILKIT_FROM"); v != "" {
		c.Send.From = v
	}
	if v := os.Getenv("MAILKIT_MAX_IMAGE_EDGE"); v != "" {
		if edge, err := strconv.Atoi(v); err == nil {
			c.Send.MaxImageEdge = edge
		}
	}

	if v := os.Getenv("GMAIL_CREDENTIALS"); v != "" {
		c.Gmail.CredentialsFile = v
	}
	if v := os.Getenv("GMAIL_TOKEN"); v != "" {
		c.Gmail.TokenFile = v
	}
	if v := os.Getenv("GMAIL_SCOPES"); v != "" {
		c.Gmail.Scopes = strings.Fields(v)
	}

	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}

	if v := os.Getenv("GRAPH_TENANT_ID"); v != "" {
		c.Graph.TenantID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_ID"); v != "" {
		c.Graph.ClientID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_SECRET"); v != "" {
		c.Graph.ClientSecret = v
	}
	if v := os.Getenv("GRAPH_SENDER"); v != "" {
		c.Graph.Sender = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
