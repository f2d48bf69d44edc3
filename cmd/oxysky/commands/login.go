// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/oxysky/atproto"
	"github.com/bureau-foundation/oxysky/cmd/oxysky/cli"
	"github.com/bureau-foundation/oxysky/lib/config"
	"github.com/bureau-foundation/oxysky/lib/credential"
)

type loginParams struct {
	cli.JSONOutput
	CredentialFile string
	AuthFactor     string
	Prompt         string
}

func loginCommand(env *environment) *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Create a session and save it locally",
		Description: `Log in with an identifier and password, verify the new session, and
save it to the session file.

Credentials come from a JSON file (credentials.file in the config,
".secret" by default) with "identifier" and "password" fields, or from
an interactive prompt with --prompt. Accounts with email two-factor
authentication need the emailed code via --auth-factor or the file's
"authFactorToken" field.

The session file is written with mode 0600. When session.identity_file
is configured the file is sealed to that age identity.`,
		Usage: "oxysky login [flags]",
		Examples: []cli.Example{
			{
				Description: "Log in with the default credential file",
				Command:     "oxysky login",
			},
			{
				Description: "Prompt for the password",
				Command:     "oxysky login --prompt alice.bsky.social",
			},
			{
				Description: "Complete a login that requires an emailed code",
				Command:     "oxysky login --auth-factor 3X7K-9QPM",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flagSet.StringVar(&params.CredentialFile, "credential-file", "", "credential file (default: credentials.file from the config)")
			flagSet.StringVar(&params.AuthFactor, "auth-factor", "", "emailed two-factor code")
			flagSet.StringVar(&params.Prompt, "prompt", "", "prompt for the password of this identifier instead of reading a file")
			params.JSONOutput.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runLogin(ctx, env, &params)
		},
	}
}

func runLogin(ctx context.Context, env *environment, params *loginParams) error {
	cfg, logger, err := env.setup("login")
	if err != nil {
		return err
	}

	credentials, err := loginCredentials(env, cfg, params)
	if err != nil {
		return err
	}
	defer credentials.Close()

	authFactor := credentials.AuthFactorToken
	if params.AuthFactor != "" {
		authFactor = params.AuthFactor
	}

	client, err := cli.NewClient(cfg, "", logger)
	if err != nil {
		return err
	}

	outcome, err := client.CreateSession(ctx, atproto.CreateSessionRequest{
		Identifier:      credentials.Identifier,
		Password:        credentials.Password,
		AuthFactorToken: authFactor,
	})
	if err != nil {
		return requestError("create session", err)
	}
	session, ok := outcome.Value()
	if !ok {
		payload, _ := outcome.Failure()
		if payload.Code == atproto.ErrCodeAuthFactorTokenRequired {
			logger.Warn("account requires a two-factor code; rerun with --auth-factor")
		}
		return env.rejected(params.JSONOutput, payload)
	}

	// The tokens must work before they are worth saving.
	verified, err := session.Get(ctx, client)
	if err != nil {
		return requestError("verify session", err)
	}
	current, ok := verified.Value()
	if !ok {
		payload, _ := verified.Failure()
		return env.rejected(params.JSONOutput, payload)
	}

	store := cli.NewSessionStore(cfg)
	if err := store.Save(&cli.StoredSession{ServiceURL: cfg.Service.URL, Session: session}); err != nil {
		return err
	}
	logger.Info("session saved",
		"path", store.Path,
		"sealed", store.Sealed(),
		"did", session.DID,
	)

	if done, err := params.EmitJSON(env.stdout, current); done {
		return err
	}

	printer := cli.NewPrinter(env.stdout)
	printer.Successf("logged in as %s", session.Handle)
	printer.Session(session, env.now())
	printer.Field("session file", store.String())
	return nil
}

func loginCredentials(env *environment, cfg *config.Config, params *loginParams) (*credential.Credentials, error) {
	if params.Prompt != "" {
		if params.CredentialFile != "" {
			return nil, cli.Validation("--prompt and --credential-file are mutually exclusive")
		}
		password, err := cli.ReadPassword(env.stderr, "Password for "+params.Prompt)
		if err != nil {
			return nil, err
		}
		return &credential.Credentials{Identifier: params.Prompt, Password: password}, nil
	}

	path := params.CredentialFile
	if path == "" {
		path = cfg.Credentials.File
	}
	credentials, err := credential.Load(path)
	if err != nil {
		return nil, cli.Validation("%w", err).
			WithHint(`Create the file with "identifier" and "password" fields, or use --prompt.`)
	}
	return credentials, nil
}
