// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential reads login credentials from a local file.
//
// The file is JSON with optional comments and trailing commas:
//
//	{
//	  // handle, DID or email
//	  "identifier": "alice.bsky.social",
//	  "password": "app-password-here",
//	  "authFactorToken": "",  // optional
//	}
//
// The password is moved into a [secret.Buffer] as soon as it is decoded.
package credential

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/oxysky/lib/secret"
)

// Credentials holds a login identifier and password. The caller must call
// Close when done.
type Credentials struct {
	Identifier      string
	Password        *secret.Buffer
	AuthFactorToken string
}

// Close releases the password memory. Idempotent.
func (c *Credentials) Close() error {
	if c.Password != nil {
		return c.Password.Close()
	}
	return nil
}

type credentialFile struct {
	Identifier      string `json:"identifier"`
	Password        string `json:"password"`
	AuthFactorToken string `json:"authFactorToken"`
}

// Parse decodes a JSONC credential document. data is zeroed before Parse
// returns.
func Parse(data []byte) (*Credentials, error) {
	defer secret.Zero(data)

	stripped := jsonc.ToJSON(data)
	defer secret.Zero(stripped)

	var file credentialFile
	if err := json.Unmarshal(stripped, &file); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if file.Identifier == "" {
		return nil, fmt.Errorf("credentials: identifier is required")
	}
	if file.Password == "" {
		return nil, fmt.Errorf("credentials: password is required")
	}

	// file.Password remains on the heap until collected; json offers no
	// way to decode into caller-owned memory.
	password, err := secret.NewFromString(file.Password)
	if err != nil {
		return nil, fmt.Errorf("protecting password: %w", err)
	}

	return &Credentials{
		Identifier:      file.Identifier,
		Password:        password,
		AuthFactorToken: file.AuthFactorToken,
	}, nil
}

// Load reads and parses the credential file at path.
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	credentials, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return credentials, nil
}
