// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the oxysky configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Root is the base directory for oxysky state. Other paths may refer
	// to it as ${OXYSKY_ROOT}.
	Root string `yaml:"root"`

	Service     ServiceConfig     `yaml:"service"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Session     SessionConfig     `yaml:"session"`
	Log         LogConfig         `yaml:"log"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Service *ServiceConfig `yaml:"service,omitempty"`
	Session *SessionConfig `yaml:"session,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// ServiceConfig describes the remote session service.
type ServiceConfig struct {
	// URL is the service base URL.
	// Default: https://bsky.social
	URL string `yaml:"url"`

	// Timeout bounds each request, as a Go duration string.
	// Default: 30s
	Timeout string `yaml:"timeout"`

	// Endpoints overrides individual operation URLs. Empty entries are
	// derived from URL.
	Endpoints EndpointsConfig `yaml:"endpoints"`
}

// EndpointsConfig holds absolute URLs for the session operations.
type EndpointsConfig struct {
	CreateSession  string `yaml:"create_session"`
	RefreshSession string `yaml:"refresh_session"`
	GetSession     string `yaml:"get_session"`
	DeleteSession  string `yaml:"delete_session"`
}

// CredentialsConfig locates the login credential file.
type CredentialsConfig struct {
	// File is a JSON document with identifier and password.
	// Default: .secret (relative to the working directory)
	File string `yaml:"file"`
}

// SessionConfig locates the saved session.
type SessionConfig struct {
	// File is where the CLI keeps the current session.
	// Default: ${OXYSKY_ROOT}/session.json
	File string `yaml:"file"`

	// IdentityFile is an age identity. When set, the session file is
	// encrypted to it. Generate one with "oxysky keygen".
	IdentityFile string `yaml:"identity_file"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info (warn in production)
	Level string `yaml:"level"`

	// Format is auto, text or json. auto picks text on a terminal.
	// Default: auto
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given, with
// variables already expanded.
func Default() *Config {
	cfg := defaults()
	cfg.ExpandVariables()
	return cfg
}

// defaults is the unexpanded base that a loaded file is merged onto, so
// that a file changing root also moves the default session file.
func defaults() *Config {
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, _ := os.UserHomeDir()
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	root := filepath.Join(configDirectory, "oxysky")

	return &Config{
		Environment: Development,
		Root:        root,
		Service: ServiceConfig{
			URL:     "https://bsky.social",
			Timeout: "30s",
		},
		Credentials: CredentialsConfig{
			File: ".secret",
		},
		Session: SessionConfig{
			File: "${OXYSKY_ROOT}/session.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by OXYSKY_CONFIG. It fails
// when the variable is unset rather than guessing a location.
func Load() (*Config, error) {
	configPath := os.Getenv("OXYSKY_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("OXYSKY_CONFIG environment variable not set; " +
			"set it to the path of your oxysky.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of the defaults, applies the
// matching environment section, and expands path variables.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.ExpandVariables()

	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{Log: &LogConfig{Level: "warn"}}
		}
	}

	if overrides == nil {
		return
	}

	if service := overrides.Service; service != nil {
		if service.URL != "" {
			c.Service.URL = service.URL
		}
		if service.Timeout != "" {
			c.Service.Timeout = service.Timeout
		}
		overrideString(&c.Service.Endpoints.CreateSession, service.Endpoints.CreateSession)
		overrideString(&c.Service.Endpoints.RefreshSession, service.Endpoints.RefreshSession)
		overrideString(&c.Service.Endpoints.GetSession, service.Endpoints.GetSession)
		overrideString(&c.Service.Endpoints.DeleteSession, service.Endpoints.DeleteSession)
	}

	if session := overrides.Session; session != nil {
		overrideString(&c.Session.File, session.File)
		overrideString(&c.Session.IdentityFile, session.IdentityFile)
	}

	if log := overrides.Log; log != nil {
		overrideString(&c.Log.Level, log.Level)
		overrideString(&c.Log.Format, log.Format)
	}
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// ExpandVariables expands ${VAR} and ${VAR:-default} in path fields.
// LoadFile calls it; callers that change paths afterwards (for example
// from flags) may call it again.
func (c *Config) ExpandVariables() {
	vars := map[string]string{
		"OXYSKY_ROOT": c.Root,
		"HOME":        os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["OXYSKY_ROOT"] = c.Root

	c.Credentials.File = expandVars(c.Credentials.File, vars)
	c.Session.File = expandVars(c.Session.File, vars)
	c.Session.IdentityFile = expandVars(c.Session.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]

		// Provided vars first, then the process environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// RequestTimeout parses Service.Timeout. Call Validate first; an invalid
// value yields 0, meaning no timeout.
func (c *Config) RequestTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Service.Timeout)
	if err != nil {
		return 0
	}
	return timeout
}

// LogLevel converts Log.Level to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Service.URL == "" {
		errs = append(errs, fmt.Errorf("service.url is required"))
	} else if parsed, err := url.Parse(c.Service.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("service.url must be an absolute URL, got %q", c.Service.URL))
	}

	if timeout, err := time.ParseDuration(c.Service.Timeout); err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("service.timeout must be a positive duration, got %q", c.Service.Timeout))
	}

	for name, endpoint := range map[string]string{
		"create_session":  c.Service.Endpoints.CreateSession,
		"refresh_session": c.Service.Endpoints.RefreshSession,
		"get_session":     c.Service.Endpoints.GetSession,
		"delete_session":  c.Service.Endpoints.DeleteSession,
	} {
		if endpoint == "" {
			continue
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			errs = append(errs, fmt.Errorf("service.endpoints.%s: %w", name, err))
		}
	}

	if c.Session.File == "" {
		errs = append(errs, fmt.Errorf("session.file is required"))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	return errors.Join(errs...)
}
