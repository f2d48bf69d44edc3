// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/oxysky/lib/config"
)

// NewCommandLogger creates the structured logger for command operations.
// Format "auto" picks slog.TextHandler when w is a terminal and
// slog.JSONHandler otherwise (CI, scripts, redirected stderr); "text" and
// "json" force one or the other. The level comes from log.level.
//
// Callers scope the logger with command context via With():
//
//	logger := cli.NewCommandLogger(os.Stderr, cfg).With("command", "session/refresh")
func NewCommandLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	options := &slog.HandlerOptions{Level: cfg.LogLevel()}

	var useText bool
	switch cfg.Log.Format {
	case "text":
		useText = true
	case "json":
	default:
		useText = IsTerminal(w)
	}

	if useText {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
