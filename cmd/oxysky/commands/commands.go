// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the oxysky command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/oxysky/atproto"
	"github.com/bureau-foundation/oxysky/cmd/oxysky/cli"
	"github.com/bureau-foundation/oxysky/lib/config"
	"github.com/bureau-foundation/oxysky/lib/version"
)

// environment is shared by every command in one tree: the global flags
// and the output streams.
type environment struct {
	settings cli.Settings
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time
}

// Root builds the oxysky command tree writing to the process streams.
func Root() *cli.Command {
	return newRoot(os.Stdout, os.Stderr)
}

func newRoot(stdout, stderr io.Writer) *cli.Command {
	env := &environment{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}

	return &cli.Command{
		Name: "oxysky",
		Description: `oxysky: AT Protocol session client.

Log in to an AT Protocol service and manage the resulting session:
inspect it, refresh its tokens, or revoke it. The session is kept in
a local file, optionally sealed to an age identity.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("oxysky", pflag.ContinueOnError)
			env.settings.AddFlags(flagSet)
			return flagSet
		},
		HelpOutput: stderr,
		Subcommands: []*cli.Command{
			loginCommand(env),
			sessionCommand(env),
			keygenCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					if len(args) > 0 {
						return cli.Validation("unexpected argument: %s", args[0])
					}
					fmt.Fprintf(env.stdout, "oxysky %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// setup loads the configuration and builds a logger scoped to command.
func (e *environment) setup(command string) (*config.Config, *slog.Logger, error) {
	cfg, err := e.settings.Config()
	if err != nil {
		return nil, nil, err
	}
	logger := cli.NewCommandLogger(e.stderr, cfg).With("command", command)
	return cfg, logger, nil
}

// rejected reports a service error outcome and returns the exit error
// for it. With --json the payload goes to stdout as JSON; otherwise it
// is printed for a human on stderr.
func (e *environment) rejected(output cli.JSONOutput, payload atproto.ErrorPayload) error {
	if output.OutputJSON {
		if err := cli.WriteJSON(e.stdout, failureJSON(payload)); err != nil {
			return err
		}
	} else {
		cli.NewPrinter(e.stderr).Failure(payload)
	}
	return &cli.ExitError{Code: cli.ExitRejected}
}

type failureResult struct {
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
	Status       int    `json:"status"`
	Unrecognized bool   `json:"unrecognized,omitempty"`
}

func failureJSON(payload atproto.ErrorPayload) failureResult {
	return failureResult{
		Error:        payload.Code,
		Message:      payload.Message,
		Status:       payload.StatusCode,
		Unrecognized: payload.IsUnrecognized(),
	}
}

// requestError categorizes an error returned alongside no outcome.
// A response that could not be decoded is Internal; anything else on
// the wire is Transient; the rest is bad input.
func requestError(operation string, err error) error {
	var transportError *atproto.TransportError
	if errors.As(err, &transportError) {
		if transportError.Op == "decode" {
			return cli.Internal("%s: %w", operation, err)
		}
		return cli.Transient("%s: %w", operation, err)
	}
	return cli.Validation("%s: %w", operation, err)
}
