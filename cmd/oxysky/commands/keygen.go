// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/oxysky/cmd/oxysky/cli"
	"github.com/bureau-foundation/oxysky/lib/sealed"
)

type keygenParams struct {
	cli.JSONOutput
	Output string
}

type keygenResult struct {
	IdentityFile string `json:"identity_file"`
	PublicKey    string `json:"public_key"`
}

func keygenCommand(env *environment) *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age identity for sealing the session file",
		Description: `Generate an age X25519 identity and write it to a new file with mode
0600. An existing file is never overwritten.

Point session.identity_file at the new file to have the session file
encrypted at rest. The file uses the age-keygen format, so the age
command line tools can decrypt the session file as well.`,
		Usage: "oxysky keygen --output FILE [flags]",
		Examples: []cli.Example{
			{
				Description: "Create an identity next to the session file",
				Command:     "oxysky keygen --output ~/.config/oxysky/identity.age",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flagSet.StringVarP(&params.Output, "output", "o", "", "identity file to create (default: session.identity_file from the config)")
			params.JSONOutput.AddFlags(flagSet)
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			cfg, logger, err := env.setup("keygen")
			if err != nil {
				return err
			}

			path := params.Output
			if path == "" {
				path = cfg.Session.IdentityFile
			}
			if path == "" {
				return cli.Validation("--output is required when session.identity_file is not configured")
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer keypair.Close()

			if err := sealed.WriteIdentityFile(path, keypair); err != nil {
				return cli.Validation("%w", err)
			}
			logger.Info("identity written", "path", path, "public_key", keypair.PublicKey)

			if done, err := params.EmitJSON(env.stdout, keygenResult{
				IdentityFile: path,
				PublicKey:    keypair.PublicKey,
			}); done {
				return err
			}

			printer := cli.NewPrinter(env.stdout)
			printer.Successf("identity written to %s", path)
			printer.Field("public key", keypair.PublicKey)
			if cfg.Session.IdentityFile != path {
				printer.Field("next", "set session.identity_file: "+path)
			}
			return nil
		},
	}
}
