// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/oxysky/atproto"
	"github.com/bureau-foundation/oxysky/lib/config"
	"github.com/bureau-foundation/oxysky/lib/sealed"
	"github.com/bureau-foundation/oxysky/lib/secret"
)

// StoredSession is the content of the session file.
type StoredSession struct {
	// ServiceURL is the service that issued the session. Later requests
	// go there regardless of the current configuration.
	ServiceURL string `json:"service_url"`

	// SavedAt is when the file was last written.
	SavedAt time.Time `json:"saved_at"`

	Session atproto.Session `json:"session"`
}

// SessionStore reads and writes the session file. When IdentityFile is
// set, files are written sealed to that age identity; sealed files are
// recognized on read regardless.
type SessionStore struct {
	Path         string
	IdentityFile string
}

// NewSessionStore returns the store described by cfg. The
// OXYSKY_SESSION_FILE environment variable overrides session.file.
func NewSessionStore(cfg *config.Config) *SessionStore {
	path := cfg.Session.File
	if envPath := os.Getenv("OXYSKY_SESSION_FILE"); envPath != "" {
		path = envPath
	}
	return &SessionStore{
		Path:         path,
		IdentityFile: cfg.Session.IdentityFile,
	}
}

// Save writes stored to the session file with mode 0600, creating the
// parent directory with mode 0700 if needed. SavedAt is set to now.
func (s *SessionStore) Save(stored *StoredSession) error {
	stored.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return Internal("marshaling session: %w", err)
	}
	data = append(data, '\n')
	defer secret.Zero(data)

	content := data
	if s.IdentityFile != "" {
		content, err = s.seal(data)
		if err != nil {
			return err
		}
	}

	directory := filepath.Dir(s.Path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return Internal("creating session directory %s: %w", directory, err)
	}

	// WriteFile keeps the mode of an existing file; enforce it.
	if err := os.WriteFile(s.Path, content, 0600); err != nil {
		return Internal("writing session file %s: %w", s.Path, err)
	}
	if err := os.Chmod(s.Path, 0600); err != nil {
		return Internal("setting session file mode: %w", err)
	}
	return nil
}

// Load reads the session file. A missing file is reported as NotFound
// with a hint to log in.
func (s *SessionStore) Load() (*StoredSession, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("no session found at %s", s.Path).
				WithHint(`Run "oxysky login" first.`)
		}
		return nil, Internal("reading session file %s: %w", s.Path, err)
	}
	defer secret.Zero(data)

	plaintext := data
	if sealed.IsSealed(data) {
		opened, err := s.open(data)
		if err != nil {
			return nil, err
		}
		defer opened.Close()
		plaintext = opened.Bytes()
	}

	var stored StoredSession
	if err := json.Unmarshal(plaintext, &stored); err != nil {
		return nil, Internal("parsing session file %s: %w", s.Path, err)
	}
	if stored.Session.AccessJwt == "" || stored.Session.RefreshJwt == "" {
		return nil, Validation("session file %s has no tokens", s.Path).
			WithHint(`Run "oxysky login" to create a new session.`)
	}
	return &stored, nil
}

// Remove deletes the session file. A missing file is not an error.
func (s *SessionStore) Remove() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Internal("removing session file %s: %w", s.Path, err)
	}
	return nil
}

// Sealed reports whether Save encrypts the file.
func (s *SessionStore) Sealed() bool {
	return s.IdentityFile != ""
}

func (s *SessionStore) seal(plaintext []byte) ([]byte, error) {
	privateKey, err := sealed.ReadIdentityFile(s.IdentityFile)
	if err != nil {
		return nil, Validation("%w", err)
	}
	defer privateKey.Close()

	recipient, err := sealed.RecipientOf(privateKey)
	if err != nil {
		return nil, Validation("%w", err)
	}
	ciphertext, err := sealed.Seal(plaintext, []string{recipient})
	if err != nil {
		return nil, Internal("sealing session: %w", err)
	}
	return ciphertext, nil
}

func (s *SessionStore) open(ciphertext []byte) (*secret.Buffer, error) {
	if s.IdentityFile == "" {
		return nil, Validation("session file %s is sealed but session.identity_file is not configured", s.Path)
	}
	privateKey, err := sealed.ReadIdentityFile(s.IdentityFile)
	if err != nil {
		return nil, Validation("%w", err)
	}
	defer privateKey.Close()

	plaintext, err := sealed.Open(ciphertext, privateKey)
	if err != nil {
		return nil, Validation("opening session file %s: %w", s.Path, err)
	}
	return plaintext, nil
}

// String describes the store for log lines.
func (s *SessionStore) String() string {
	if s.Sealed() {
		return fmt.Sprintf("%s (sealed)", s.Path)
	}
	return s.Path
}
