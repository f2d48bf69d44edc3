// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/bureau-foundation/oxysky/lib/secret"
)

// privateKeyPrefix starts every age x25519 identity line.
const privateKeyPrefix = "AGE-SECRET-KEY-1"

// Keypair holds an age x25519 keypair. The private key lives in a
// secret.Buffer; the public key is safe to print.
//
// The caller must call Close when the keypair is no longer needed.
type Keypair struct {
	// PrivateKey is the identity in AGE-SECRET-KEY-1... form. Never log it.
	PrivateKey *secret.Buffer

	// PublicKey is the recipient in age1... form.
	PublicKey string
}

// Close releases the private key memory. Idempotent.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair generates a new age x25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}

	// identity.String() leaves a heap copy that the GC reclaims; the
	// buffer is the durable one.
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}

	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// WriteIdentityFile writes keypair to path in age-keygen format with mode
// 0600. It refuses to overwrite an existing file.
func WriteIdentityFile(path string, keypair *Keypair) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating identity file: %w", err)
	}

	_, writeErr := fmt.Fprintf(file, "# created: %s\n# public key: %s\n%s\n",
		time.Now().UTC().Format(time.RFC3339), keypair.PublicKey, keypair.PrivateKey.String())
	closeErr := file.Close()
	if writeErr != nil {
		return fmt.Errorf("writing identity file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("writing identity file: %w", closeErr)
	}
	return nil
}

// ReadIdentityFile reads the first AGE-SECRET-KEY-1 line from an
// age-keygen style file. Comment and blank lines are skipped.
func ReadIdentityFile(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}
	defer secret.Zero(data)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if !bytes.HasPrefix(line, []byte(privateKeyPrefix)) {
			return nil, fmt.Errorf("identity file %s: unexpected line (want %s...)", path, privateKeyPrefix)
		}
		key := bytes.Clone(line)
		privateKey, err := secret.NewFromBytes(key)
		if err != nil {
			return nil, fmt.Errorf("protecting private key: %w", err)
		}
		if err := parsePrivateKey(privateKey); err != nil {
			privateKey.Close()
			return nil, fmt.Errorf("identity file %s: %w", path, err)
		}
		return privateKey, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning identity file: %w", err)
	}
	return nil, fmt.Errorf("identity file %s contains no %s line", path, privateKeyPrefix)
}

// RecipientOf returns the public key for privateKey.
func RecipientOf(privateKey *secret.Buffer) (string, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return "", fmt.Errorf("parsing private key: %w", err)
	}
	return identity.Recipient().String(), nil
}

// Seal encrypts plaintext to one or more age public keys and returns the
// armored ciphertext.
func Seal(plaintext []byte, recipientKeys []string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	armorWriter := armor.NewWriter(&ciphertext)
	writer, err := age.Encrypt(armorWriter, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Open decrypts armored ciphertext with privateKey, which is borrowed and
// not closed. The caller must Close the returned buffer.
func Open(ciphertext []byte, privateKey *secret.Buffer) (*secret.Buffer, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(ciphertext)), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, fmt.Errorf("decrypting: file was not sealed to this identity")
		}
		return nil, fmt.Errorf("decrypting: %w", err)
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("decrypted plaintext is empty")
	}

	buffer, err := secret.NewFromBytes(plaintext)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("protecting decrypted plaintext: %w", err)
	}
	return buffer, nil
}

// IsSealed reports whether data begins with an age armor header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(armor.Header))
}

// parsePrivateKey validates an age private key held in a secret.Buffer.
func parsePrivateKey(privateKey *secret.Buffer) error {
	if _, err := age.ParseX25519Identity(privateKey.String()); err != nil {
		return fmt.Errorf("invalid age private key: %w", err)
	}
	return nil
}
