// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts the saved session at rest with age.
//
// A sealed file is an ASCII-armored age message ("-----BEGIN AGE
// ENCRYPTED FILE-----"), so a session file can be inspected with cat and
// decrypted by the stock age tool as well as by oxysky. Identity files
// use the age-keygen layout: comment lines followed by one
// AGE-SECRET-KEY-1 line.
//
// Private keys and decrypted plaintext are returned as [secret.Buffer]
// values; callers Close them when done.
//
// Key exports:
//
//   - [GenerateKeypair] / [WriteIdentityFile] -- create an identity
//   - [ReadIdentityFile] / [RecipientOf] -- load one back
//   - [Seal] / [Open] -- encrypt and decrypt
//   - [IsSealed] -- distinguish sealed files from plain JSON
package sealed
