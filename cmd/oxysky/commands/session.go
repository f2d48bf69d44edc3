// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/oxysky/atproto"
	"github.com/bureau-foundation/oxysky/cmd/oxysky/cli"
	"github.com/bureau-foundation/oxysky/lib/config"
)

func sessionCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "session",
		Summary: "Inspect, refresh or revoke the saved session",
		Description: `Operate on the session saved by "oxysky login".

Requests go to the service that issued the session, even if the
configured service has changed since.`,
		Subcommands: []*cli.Command{
			sessionShowCommand(env),
			sessionGetCommand(env),
			sessionRefreshCommand(env),
			sessionDeleteCommand(env),
		},
	}
}

// sessionContext is what every session subcommand starts from.
type sessionContext struct {
	cfg    *config.Config
	store  *cli.SessionStore
	stored *cli.StoredSession
	logger *slog.Logger
}

func (e *environment) loadSession(command string) (*sessionContext, error) {
	cfg, logger, err := e.setup(command)
	if err != nil {
		return nil, err
	}
	store := cli.NewSessionStore(cfg)
	stored, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &sessionContext{cfg: cfg, store: store, stored: stored, logger: logger}, nil
}

// client targets the service that issued the saved session.
func (s *sessionContext) client() (*atproto.Client, error) {
	return cli.NewClient(s.cfg, s.stored.ServiceURL, s.logger)
}

func jsonFlags(name string, output *cli.JSONOutput) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
		output.AddFlags(flagSet)
		return flagSet
	}
}

func noArguments(args []string) error {
	if len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}
	return nil
}

func sessionShowCommand(env *environment) *cli.Command {
	var output cli.JSONOutput

	return &cli.Command{
		Name:    "show",
		Summary: "Print the saved session without contacting the service",
		Description: `Print the saved session: identity, service, and how long each token
remains valid. Tokens are only included with --json.`,
		Flags: jsonFlags("show", &output),
		Run: func(_ context.Context, args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			session, err := env.loadSession("session/show")
			if err != nil {
				return err
			}

			if done, err := output.EmitJSON(env.stdout, session.stored); done {
				return err
			}

			printer := cli.NewPrinter(env.stdout)
			printer.Field("service", session.stored.ServiceURL)
			printer.Field("saved", session.stored.SavedAt.Local().Format(time.RFC3339))
			printer.Field("file", session.store.String())
			printer.Session(session.stored.Session, env.now())
			return nil
		},
	}
}

func sessionGetCommand(env *environment) *cli.Command {
	var output cli.JSONOutput

	return &cli.Command{
		Name:    "get",
		Summary: "Fetch current session details from the service",
		Description: `Ask the service for the current state of the session using the
saved access token. The saved file is not modified.`,
		Flags: jsonFlags("get", &output),
		Run: func(ctx context.Context, args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			session, err := env.loadSession("session/get")
			if err != nil {
				return err
			}
			client, err := session.client()
			if err != nil {
				return err
			}

			outcome, err := session.stored.Session.Get(ctx, client)
			if err != nil {
				return requestError("get session", err)
			}
			current, ok := outcome.Value()
			if !ok {
				payload, _ := outcome.Failure()
				if payload.Code == atproto.ErrCodeExpiredToken {
					session.logger.Warn(`access token expired; run "oxysky session refresh"`)
				}
				return env.rejected(output, payload)
			}

			if done, err := output.EmitJSON(env.stdout, current); done {
				return err
			}
			cli.NewPrinter(env.stdout).Session(current, env.now())
			return nil
		},
	}
}

func sessionRefreshCommand(env *environment) *cli.Command {
	var output cli.JSONOutput

	return &cli.Command{
		Name:    "refresh",
		Summary: "Exchange the refresh token for new tokens",
		Description: `Refresh the saved session and write the new tokens back to the
session file. The old refresh token is consumed by the service, so a
failed save leaves no usable session.

Email fields in the saved session are kept as they were; run
"oxysky session get" for current values.`,
		Flags: jsonFlags("refresh", &output),
		Run: func(ctx context.Context, args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			session, err := env.loadSession("session/refresh")
			if err != nil {
				return err
			}
			client, err := session.client()
			if err != nil {
				return err
			}

			outcome, err := session.stored.Session.Refresh(ctx, client)
			if err != nil {
				return requestError("refresh session", err)
			}
			refreshed, ok := outcome.Value()
			if !ok {
				payload, _ := outcome.Failure()
				return env.rejected(output, payload)
			}

			session.stored.Session = refreshed
			if err := session.store.Save(session.stored); err != nil {
				return err
			}
			session.logger.Info("session refreshed",
				"path", session.store.Path,
				"did", refreshed.DID,
				"token_fingerprint", atproto.TokenFingerprint(refreshed.AccessJwt),
			)

			if done, err := output.EmitJSON(env.stdout, session.stored); done {
				return err
			}
			printer := cli.NewPrinter(env.stdout)
			printer.Successf("session refreshed")
			printer.Session(refreshed, env.now())
			return nil
		},
	}
}

type deleteResult struct {
	Deleted bool   `json:"deleted"`
	Status  int    `json:"status"`
	File    string `json:"file"`
}

func sessionDeleteCommand(env *environment) *cli.Command {
	var output cli.JSONOutput

	return &cli.Command{
		Name:    "delete",
		Summary: "Revoke the session and remove the session file",
		Description: `Ask the service to revoke the saved session, then remove the session
file. The file is kept if the service rejects the request.`,
		Flags: jsonFlags("delete", &output),
		Run: func(ctx context.Context, args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			session, err := env.loadSession("session/delete")
			if err != nil {
				return err
			}
			client, err := session.client()
			if err != nil {
				return err
			}

			outcome, err := session.stored.Session.Delete(ctx, client)
			if err != nil {
				return requestError("delete session", err)
			}
			status, ok := outcome.Value()
			if !ok {
				payload, _ := outcome.Failure()
				return env.rejected(output, payload)
			}

			if err := session.store.Remove(); err != nil {
				return err
			}
			session.logger.Info("session deleted", "path", session.store.Path)

			if done, err := output.EmitJSON(env.stdout, deleteResult{
				Deleted: true,
				Status:  status,
				File:    session.store.Path,
			}); done {
				return err
			}
			cli.NewPrinter(env.stdout).Successf("session deleted")
			return nil
		},
	}
}
