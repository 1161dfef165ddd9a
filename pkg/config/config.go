/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/ssargent/pxdb/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvTablesDir = "PXDB_TABLES_DIR"
	EnvMirrorDir = "PXDB_MIRROR_DIR"
	EnvPort      = "PXDB_PORT"
	EnvAPIKey    = "PXDB_API_KEY"
	EnvLogLevel  = "PXDB_LOG_LEVEL"
)

// Config represents the pxdb configuration
type Config struct {
	TablesDir string         `yaml:"tables_dir"`
	MirrorDir string         `yaml:"mirror_dir"`
	Port      int            `yaml:"port"`
	Bind      string         `yaml:"bind"`
	APIKey    string         `yaml:"api_key"`
	Logging   logging.Config `yaml:"logging"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		TablesDir: "./tables",
		MirrorDir: "./mirror",
		Port:      8080,
		Bind:      "127.0.0.1",
		APIKey:    "auto",
		Logging: logging.Config{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Bind + ":" + strconv.Itoa(c.Port)
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Newf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "invalid config path")
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "failed to generate secure key")
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a new configuration with a generated API key
func BootstrapConfig(configPath string, tablesDir string) (*Config, error) {
	config := DefaultConfig()
	if tablesDir != "" {
		config.TablesDir = tablesDir
	}

	apiKey, err := GenerateSecureKey(32)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate API key")
	}
	config.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, errors.Wrap(err, "failed to save bootstrap config")
	}

	return config, nil
}

// ApplyEnv overrides settings from the environment. Variables in envFile are
// used when the process environment does not set them; a missing envFile is
// ignored.
func (c *Config) ApplyEnv(envFile string) error {
	vars := map[string]string{}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "failed to read %s", envFile)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, k := range []string{EnvTablesDir, EnvMirrorDir, EnvPort, EnvAPIKey, EnvLogLevel} {
		if v, ok := os.LookupEnv(k); ok {
			vars[k] = v
		}
	}

	if v := vars[EnvTablesDir]; v != "" {
		c.TablesDir = v
	}
	if v := vars[EnvMirrorDir]; v != "" {
		c.MirrorDir = v
	}
	if v := vars[EnvAPIKey]; v != "" {
		c.APIKey = v
	}
	if v := vars[EnvLogLevel]; v != "" {
		c.Logging.Level = v
	}
	if v := vars[EnvPort]; v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return errors.Newf("invalid %s %q", EnvPort, v)
		}
		c.Port = port
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./pxdb.yaml"
	}

	// ~/.config/pxdb/config.yaml
	return filepath.Join(homeDir, ".config", "pxdb", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
