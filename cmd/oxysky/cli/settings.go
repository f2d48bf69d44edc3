// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/oxysky/atproto"
	"github.com/bureau-foundation/oxysky/lib/config"
	"github.com/bureau-foundation/oxysky/lib/version"
)

// Settings holds the global flags shared by every command.
type Settings struct {
	ConfigPath string
}

// AddFlags registers --config on the given flag set.
func (s *Settings) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.ConfigPath, "config", "", "path to oxysky.yaml (default: $OXYSKY_CONFIG, else built-in defaults)")
}

// Config loads and validates the configuration. Precedence: --config,
// then OXYSKY_CONFIG, then config.Default.
func (s *Settings) Config() (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case s.ConfigPath != "":
		cfg, err = config.LoadFile(s.ConfigPath)
	case os.Getenv("OXYSKY_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, Validation("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid config: %w", err)
	}
	return cfg, nil
}

// NewClient creates an atproto client from the service section of cfg.
//
// serviceURL, when non-empty and different from the configured service,
// is the service a saved session came from: tokens are only valid there,
// so the client targets it and the configured endpoint overrides are not
// applied.
func NewClient(cfg *config.Config, serviceURL string, logger *slog.Logger) (*atproto.Client, error) {
	clientConfig := atproto.ClientConfig{
		ServiceURL: cfg.Service.URL,
		Endpoints: atproto.Endpoints{
			CreateSession:  cfg.Service.Endpoints.CreateSession,
			RefreshSession: cfg.Service.Endpoints.RefreshSession,
			GetSession:     cfg.Service.Endpoints.GetSession,
			DeleteSession:  cfg.Service.Endpoints.DeleteSession,
		},
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:     logger,
		UserAgent:  version.UserAgent(),
	}

	if serviceURL != "" && serviceURL != cfg.Service.URL {
		logger.Debug("using service recorded with the saved session",
			"saved_service", serviceURL,
			"configured_service", cfg.Service.URL,
		)
		clientConfig.ServiceURL = serviceURL
		clientConfig.Endpoints = atproto.Endpoints{}
	}

	client, err := atproto.NewClient(clientConfig)
	if err != nil {
		return nil, Validation("creating client: %w", err)
	}
	return client, nil
}
