// Package config loads topthree's YAML configuration and environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/utils"
)

// Config defines client and server configuration.
type Config struct {
	Storage  string       `yaml:"storage"`
	Timezone string       `yaml:"timezone"`
	Debug    bool         `yaml:"debug"`
	Remote   RemoteConfig `yaml:"remote"`
	Server   ServerConfig `yaml:"server"`
	Nudge    NudgeConfig  `yaml:"nudge"`
}

type RemoteConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Storage string `yaml:"storage"`
	// Tokens maps bearer token to user ID.
	Tokens map[string]string `yaml:"tokens"`
}

type NudgeConfig struct {
	Message string `yaml:"message"`
}

// Default returns the configuration used when no file or environment is present.
func Default() Config {
	return Config{
		Storage:  constants.DefaultStoragePath,
		Timezone: constants.DefaultTimezone,
		Remote: RemoteConfig{
			Timeout: constants.DefaultRemoteTimeout,
		},
		Server: ServerConfig{
			Host: constants.DefaultServerHost,
			Port: constants.DefaultServerPort,
		},
		Nudge: NudgeConfig{
			Message: constants.DefaultNudgeMessage,
		},
	}
}

// Path resolves the config file location: explicit, then environment, then default.
func Path(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(constants.EnvConfigPath)
	}
	if path == "" {
		path = constants.DefaultConfigFile
	}
	return utils.ExpandPath(path)
}

// Load reads configuration from an optional YAML file and environment variables.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := Path(path)
	if err != nil {
		return Config{}, err
	}
	if err := loadFromFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(constants.EnvStorage); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv(constants.EnvTimezone); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv(constants.EnvAPIURL); v != "" {
		cfg.Remote.URL = v
	}
	if v := os.Getenv(constants.EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvServerPort, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvDebug, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c Config) Validate() error {
	var problems []string

	if !utils.ValidateTimezone(c.Timezone) {
		problems = append(problems, fmt.Sprintf("unknown timezone %q", c.Timezone))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server port %d is outside valid range (1-65535)", c.Server.Port))
	}
	if c.Remote.URL != "" {
		u, err := url.Parse(c.Remote.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("remote url %q must be an http(s) URL", c.Remote.URL))
		}
	}
	if c.Remote.Timeout < 0 {
		problems = append(problems, "remote timeout cannot be negative")
	}
	for token, user := range c.Server.Tokens {
		if strings.TrimSpace(token) == "" || strings.TrimSpace(user) == "" {
			problems = append(problems, "server tokens must map a non-empty token to a non-empty user")
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// RemoteEnabled reports whether a sync server is configured.
func (c Config) RemoteEnabled() bool {
	return c.Remote.URL != ""
}
