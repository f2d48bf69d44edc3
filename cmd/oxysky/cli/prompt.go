// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/oxysky/lib/secret"
)

// ReadPassword prompts on prompt and reads a password from the terminal
// on stdin with echo disabled.
func ReadPassword(prompt io.Writer, label string) (*secret.Buffer, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, Validation("no terminal available for interactive password prompt").
			WithHint("Use --credential-file instead of --prompt.")
	}

	fmt.Fprintf(prompt, "%s: ", label)
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, Internal("reading password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return nil, Validation("empty password")
	}

	buffer, err := secret.NewFromBytes(passwordBytes)
	if err != nil {
		secret.Zero(passwordBytes)
		return nil, Internal("protecting password: %w", err)
	}
	return buffer, nil
}
