// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/oxysky/atproto"
	"github.com/bureau-foundation/oxysky/lib/config"
	"github.com/bureau-foundation/oxysky/lib/sealed"
)

func testStoredSession() *StoredSession {
	return &StoredSession{
		ServiceURL: "https://pds.example.com",
		Session: atproto.Session{
			AccessJwt:      "access-token",
			RefreshJwt:     "refresh-token",
			Handle:         "alice.test",
			DID:            "did:plc:abc",
			Email:          "alice@example.com",
			EmailConfirmed: true,
			Active:         true,
		},
	}
}

// writeIdentity creates an age identity file in a temp directory.
func writeIdentity(t *testing.T) string {
	t.Helper()
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	path := filepath.Join(t.TempDir(), "identity.age")
	if err := sealed.WriteIdentityFile(path, keypair); err != nil {
		t.Fatalf("WriteIdentityFile: %v", err)
	}
	return path
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := &SessionStore{Path: filepath.Join(t.TempDir(), "session.json")}
	original := testStoredSession()

	if err := store.Save(original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if original.SavedAt.IsZero() {
		t.Error("Save should stamp SavedAt")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ServiceURL != original.ServiceURL {
		t.Errorf("ServiceURL = %q, want %q", loaded.ServiceURL, original.ServiceURL)
	}
	if loaded.Session.AccessJwt != "access-token" || loaded.Session.DID != "did:plc:abc" {
		t.Errorf("session not preserved: %+v", loaded.Session)
	}
	if !loaded.SavedAt.Equal(original.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", loaded.SavedAt, original.SavedAt)
	}
}

func TestSessionStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := &SessionStore{Path: path}

	// A pre-existing world-readable file must be tightened.
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := store.Save(testStoredSession()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("session file mode = %o, want 0600", mode)
	}

	directoryInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Stat directory: %v", err)
	}
	if mode := directoryInfo.Mode().Perm(); mode != 0700 {
		t.Errorf("directory mode = %o, want 0700", mode)
	}
}

func TestSessionStore_Sealed(t *testing.T) {
	identity := writeIdentity(t)
	path := filepath.Join(t.TempDir(), "session.json")
	store := &SessionStore{Path: path, IdentityFile: identity}

	if err := store.Save(testStoredSession()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !sealed.IsSealed(raw) {
		t.Fatal("session file is not sealed")
	}
	if strings.Contains(string(raw), "access-token") {
		t.Error("sealed file contains the access token in plaintext")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Session.RefreshJwt != "refresh-token" {
		t.Errorf("RefreshJwt = %q", loaded.Session.RefreshJwt)
	}

	t.Run("without identity", func(t *testing.T) {
		_, err := (&SessionStore{Path: path}).Load()
		if err == nil {
			t.Fatal("expected error loading a sealed file without an identity")
		}
		if !strings.Contains(err.Error(), "identity_file is not configured") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("wrong identity", func(t *testing.T) {
		_, err := (&SessionStore{Path: path, IdentityFile: writeIdentity(t)}).Load()
		if err == nil {
			t.Fatal("expected error loading with a different identity")
		}
	})
}

func TestSessionStore_PlainFileWithIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := (&SessionStore{Path: path}).Save(testStoredSession()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := (&SessionStore{Path: path, IdentityFile: writeIdentity(t)}).Load()
	if err != nil {
		t.Fatalf("Load of a plain file with an identity configured: %v", err)
	}
	if loaded.Session.Handle != "alice.test" {
		t.Errorf("Handle = %q", loaded.Session.Handle)
	}
}

func TestSessionStore_LoadErrors(t *testing.T) {
	directory := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		_, err := (&SessionStore{Path: filepath.Join(directory, "absent.json")}).Load()
		var toolError *ToolError
		if !errors.As(err, &toolError) || toolError.Category != CategoryNotFound {
			t.Fatalf("expected NotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "oxysky login") {
			t.Errorf("error should hint at login: %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(directory, "malformed.json")
		os.WriteFile(path, []byte("{not json"), 0600)
		if _, err := (&SessionStore{Path: path}).Load(); err == nil {
			t.Fatal("expected error for malformed file")
		}
	})

	t.Run("no tokens", func(t *testing.T) {
		path := filepath.Join(directory, "empty.json")
		os.WriteFile(path, []byte(`{"service_url":"https://bsky.social","session":{"did":"did:plc:abc"}}`), 0600)
		_, err := (&SessionStore{Path: path}).Load()
		if err == nil || !strings.Contains(err.Error(), "no tokens") {
			t.Fatalf("expected no-tokens error, got %v", err)
		}
	})
}

func TestSessionStore_Remove(t *testing.T) {
	store := &SessionStore{Path: filepath.Join(t.TempDir(), "session.json")}
	if err := store.Save(testStoredSession()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(store.Path); !os.IsNotExist(err) {
		t.Errorf("session file still exists: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Errorf("second Remove should be a no-op, got %v", err)
	}
}

func TestNewSessionStore(t *testing.T) {
	cfg := config.Default()
	cfg.Session.File = "/var/lib/oxysky/session.json"
	cfg.Session.IdentityFile = "/var/lib/oxysky/identity.age"

	t.Setenv("OXYSKY_SESSION_FILE", "")
	store := NewSessionStore(cfg)
	if store.Path != cfg.Session.File || store.IdentityFile != cfg.Session.IdentityFile {
		t.Errorf("store = %+v", store)
	}
	if !store.Sealed() || !strings.HasSuffix(store.String(), "(sealed)") {
		t.Errorf("store should report sealed: %s", store)
	}

	t.Setenv("OXYSKY_SESSION_FILE", "/tmp/override.json")
	if got := NewSessionStore(cfg).Path; got != "/tmp/override.json" {
		t.Errorf("Path = %q, want env override", got)
	}
}
