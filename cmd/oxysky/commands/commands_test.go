// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/oxysky/atproto"
	"github.com/bureau-foundation/oxysky/cmd/oxysky/cli"
	"github.com/bureau-foundation/oxysky/lib/sealed"
)

// fakeService implements the four session endpoints for one account,
// alice.test. Tokens carry a generation number that each successful
// createSession or refreshSession advances.
type fakeService struct {
	mu         sync.Mutex
	password   string
	authFactor string
	generation int
	expired    bool
	deleted    bool
	paths      []string
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	service := &fakeService{password: "hunter2"}
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)
	return service, server
}

func (f *fakeService) accessToken() string  { return fmt.Sprintf("access-%d", f.generation) }
func (f *fakeService) refreshToken() string { return fmt.Sprintf("refresh-%d", f.generation) }

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	switch r.URL.Path {
	case atproto.PathCreateSession:
		var body struct {
			Identifier      string `json:"identifier"`
			Password        string `json:"password"`
			AuthFactorToken string `json:"authFactorToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeServiceError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
			return
		}
		// createSession rejects with 400; a 401 there is undocumented.
		if body.Identifier != "alice.test" || body.Password != f.password {
			writeServiceError(w, http.StatusBadRequest, "AuthenticationRequired", "Invalid identifier or password")
			return
		}
		if f.authFactor != "" && body.AuthFactorToken != f.authFactor {
			writeServiceError(w, http.StatusBadRequest, "AuthFactorTokenRequired", "A sign in code has been sent to your email address")
			return
		}
		f.generation++
		f.deleted = false
		writeSession(w, f.session(true, true))

	case atproto.PathGetSession:
		switch {
		case f.expired:
			writeServiceError(w, http.StatusUnauthorized, "ExpiredToken", "Token has expired")
		case f.deleted || token != f.accessToken():
			writeServiceError(w, http.StatusUnauthorized, "InvalidToken", "Token could not be verified")
		default:
			writeSession(w, f.session(false, true))
		}

	case atproto.PathRefreshSession:
		if f.deleted || token != f.refreshToken() {
			writeServiceError(w, http.StatusBadRequest, "ExpiredToken", "Token has been revoked")
			return
		}
		f.generation++
		// refreshSession responses omit the email fields.
		writeSession(w, f.session(true, false))

	case atproto.PathDeleteSession:
		if f.deleted || token != f.accessToken() {
			writeServiceError(w, http.StatusUnauthorized, "InvalidToken", "Token could not be verified")
			return
		}
		f.deleted = true
		w.WriteHeader(http.StatusOK)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) session(withTokens, withEmail bool) atproto.Session {
	session := atproto.Session{
		Handle: "alice.test",
		DID:    "did:plc:alice",
		Active: true,
		DidDoc: atproto.DidDoc{
			ID: "did:plc:alice",
			Service: []atproto.Service{
				{ID: "#atproto_pds", Type: "AtprotoPersonalDataServer", ServiceEndpoint: "https://pds.example.com"},
			},
		},
	}
	if withTokens {
		session.AccessJwt = f.accessToken()
		session.RefreshJwt = f.refreshToken()
	}
	if withEmail {
		session.Email = "alice@example.com"
		session.EmailConfirmed = true
	}
	return session
}

func (f *fakeService) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paths)
}

func (f *fakeService) requested(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, requested := range f.paths {
		if requested == path {
			count++
		}
	}
	return count
}

func writeSession(w http.ResponseWriter, session atproto.Session) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func writeServiceError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}

// testEnvironment is a config file and its paths in a temp directory.
type testEnvironment struct {
	directory      string
	configPath     string
	credentialPath string
	sessionPath    string
}

func newTestEnvironment(t *testing.T, serviceURL, extra string) *testEnvironment {
	t.Helper()
	t.Setenv("OXYSKY_CONFIG", "")
	t.Setenv("OXYSKY_SESSION_FILE", "")
	t.Setenv("NO_COLOR", "1")

	directory := t.TempDir()
	env := &testEnvironment{
		directory:      directory,
		configPath:     filepath.Join(directory, "oxysky.yaml"),
		credentialPath: filepath.Join(directory, "credentials.json"),
		sessionPath:    filepath.Join(directory, "state", "session.json"),
	}
	env.writeConfig(t, serviceURL, extra)

	credentials := `{
  // test account
  "identifier": "alice.test",
  "password": "hunter2",
}`
	if err := os.WriteFile(env.credentialPath, []byte(credentials), 0600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	return env
}

func (e *testEnvironment) writeConfig(t *testing.T, serviceURL, extra string) {
	t.Helper()
	content := fmt.Sprintf(`service:
  url: %s
  timeout: 5s
credentials:
  file: %s
session:
  file: %s
%slog:
  level: warn
  format: json
`, serviceURL, e.credentialPath, e.sessionPath, extra)
	if err := os.WriteFile(e.configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// run executes the command tree with --config pointing at the test
// configuration.
func (e *testEnvironment) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var stdoutBuffer, stderrBuffer bytes.Buffer
	root := newRoot(&stdoutBuffer, &stderrBuffer)
	err = root.Execute(context.Background(), append([]string{"--config", e.configPath}, args...))
	return stdoutBuffer.String(), stderrBuffer.String(), err
}

func (e *testEnvironment) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("oxysky %s: %v\nstderr:\n%s", strings.Join(args, " "), err, stderr)
	}
	return stdout
}

func (e *testEnvironment) loadSession(t *testing.T) *cli.StoredSession {
	t.Helper()
	stored, err := (&cli.SessionStore{Path: e.sessionPath}).Load()
	if err != nil {
		t.Fatalf("loading saved session: %v", err)
	}
	return stored
}

func assertExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) {
		t.Fatalf("expected *cli.ExitError, got %T: %v", err, err)
	}
	if exitError.Code != code {
		t.Errorf("exit code = %d, want %d", exitError.Code, code)
	}
}

func assertCategory(t *testing.T, err error, category cli.ErrorCategory) {
	t.Helper()
	var toolError *cli.ToolError
	if !errors.As(err, &toolError) {
		t.Fatalf("expected *cli.ToolError, got %T: %v", err, err)
	}
	if toolError.Category != category {
		t.Errorf("category = %s, want %s (error: %v)", toolError.Category, category, err)
	}
}

func TestLogin(t *testing.T) {
	service, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")

	stdout := env.mustRun(t, "login")

	for _, want := range []string{"Success: logged in as alice.test", "did:plc:alice", env.sessionPath} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "access-1") {
		t.Error("human output must not include tokens")
	}

	stored := env.loadSession(t)
	if stored.ServiceURL != server.URL {
		t.Errorf("ServiceURL = %q, want %q", stored.ServiceURL, server.URL)
	}
	if stored.Session.AccessJwt != "access-1" || stored.Session.RefreshJwt != "refresh-1" {
		t.Errorf("saved tokens = %q, %q", stored.Session.AccessJwt, stored.Session.RefreshJwt)
	}
	if service.requested(atproto.PathGetSession) != 1 {
		t.Error("login should verify the new session with getSession")
	}

	info, err := os.Stat(env.sessionPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("session file mode = %o, want 0600", mode)
	}
}

func TestLogin_JSON(t *testing.T) {
	_, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")

	stdout := env.mustRun(t, "login", "--json")

	var session atproto.Session
	if err := json.Unmarshal([]byte(stdout), &session); err != nil {
		t.Fatalf("output is not a session: %v\n%s", err, stdout)
	}
	if session.DID != "did:plc:alice" || session.Email != "alice@example.com" {
		t.Errorf("session = %+v", session)
	}
}

func TestLogin_Rejected(t *testing.T) {
	service, server := newFakeService(t)
	service.password = "something-else"
	env := newTestEnvironment(t, server.URL, "")

	t.Run("text", func(t *testing.T) {
		_, stderr, err := env.run(t, "login")
		assertExitCode(t, err, cli.ExitRejected)
		if !strings.Contains(stderr, "Error: AuthenticationRequired") ||
			!strings.Contains(stderr, "Message: Invalid identifier or password") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := env.run(t, "login", "--json")
		assertExitCode(t, err, cli.ExitRejected)

		var failure map[string]any
		if err := json.Unmarshal([]byte(stdout), &failure); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout)
		}
		if failure["error"] != "AuthenticationRequired" || failure["status"] != float64(http.StatusBadRequest) {
			t.Errorf("failure = %v", failure)
		}
	})

	if _, err := os.Stat(env.sessionPath); !os.IsNotExist(err) {
		t.Errorf("a rejected login must not write a session file: %v", err)
	}
}

func TestLogin_UndocumentedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeServiceError(w, http.StatusUnauthorized, "AuthenticationRequired", "Invalid identifier or password")
	}))
	t.Cleanup(server.Close)
	env := newTestEnvironment(t, server.URL, "")

	_, stderr, err := env.run(t, "login")
	assertExitCode(t, err, cli.ExitRejected)
	if !strings.Contains(stderr, "Error: unrecognized response (HTTP 401)") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.Contains(stderr, "AuthenticationRequired") {
		t.Errorf("an undocumented status should not surface the body's error name: %q", stderr)
	}
}

func TestLogin_AuthFactor(t *testing.T) {
	service, server := newFakeService(t)
	service.authFactor = "3X7K-9QPM"
	env := newTestEnvironment(t, server.URL, "")

	_, stderr, err := env.run(t, "login")
	assertExitCode(t, err, cli.ExitRejected)
	if !strings.Contains(stderr, "AuthFactorTokenRequired") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, "--auth-factor") {
		t.Errorf("stderr should point at --auth-factor: %q", stderr)
	}

	env.mustRun(t, "login", "--auth-factor", "3X7K-9QPM")
	if env.loadSession(t).Session.AccessJwt != "access-1" {
		t.Error("login with the code should save the session")
	}
}

func TestLogin_CredentialErrors(t *testing.T) {
	_, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")

	t.Run("missing file", func(t *testing.T) {
		_, _, err := env.run(t, "login", "--credential-file", filepath.Join(env.directory, "absent.json"))
		assertCategory(t, err, cli.CategoryValidation)
		if !strings.Contains(err.Error(), "absent.json") {
			t.Errorf("error should name the file: %v", err)
		}
	})

	t.Run("no password", func(t *testing.T) {
		path := filepath.Join(env.directory, "partial.json")
		os.WriteFile(path, []byte(`{"identifier": "alice.test"}`), 0600)
		_, _, err := env.run(t, "login", "--credential-file", path)
		assertCategory(t, err, cli.CategoryValidation)
	})

	t.Run("prompt with file", func(t *testing.T) {
		_, _, err := env.run(t, "login", "--prompt", "alice.test", "--credential-file", env.credentialPath)
		if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
			t.Fatalf("expected mutually exclusive error, got %v", err)
		}
	})
}

func TestLogin_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	env := newTestEnvironment(t, url, "")

	_, _, err := env.run(t, "login")
	assertCategory(t, err, cli.CategoryTransient)
}

func TestSessionLifecycle(t *testing.T) {
	service, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")
	env.mustRun(t, "login")

	t.Run("show", func(t *testing.T) {
		before := service.requestCount()
		stdout := env.mustRun(t, "session", "show")
		for _, want := range []string{"alice.test", server.URL, "alice@example.com", "https://pds.example.com"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("show output missing %q:\n%s", want, stdout)
			}
		}
		if strings.Contains(stdout, "access-1") {
			t.Error("show must not print tokens without --json")
		}
		if service.requestCount() != before {
			t.Error("show must not contact the service")
		}
	})

	t.Run("show json", func(t *testing.T) {
		stdout := env.mustRun(t, "session", "show", "--json")
		var stored cli.StoredSession
		if err := json.Unmarshal([]byte(stdout), &stored); err != nil {
			t.Fatalf("output is not a stored session: %v\n%s", err, stdout)
		}
		if stored.Session.AccessJwt != "access-1" || stored.ServiceURL != server.URL {
			t.Errorf("stored = %+v", stored)
		}
	})

	t.Run("get", func(t *testing.T) {
		stdout := env.mustRun(t, "session", "get", "--json")
		var session atproto.Session
		if err := json.Unmarshal([]byte(stdout), &session); err != nil {
			t.Fatalf("output is not a session: %v\n%s", err, stdout)
		}
		if session.Handle != "alice.test" {
			t.Errorf("Handle = %q", session.Handle)
		}
	})

	t.Run("refresh", func(t *testing.T) {
		stdout := env.mustRun(t, "session", "refresh")
		if !strings.Contains(stdout, "Success: session refreshed") {
			t.Errorf("output = %q", stdout)
		}

		stored := env.loadSession(t)
		if stored.Session.AccessJwt != "access-2" || stored.Session.RefreshJwt != "refresh-2" {
			t.Errorf("tokens after refresh = %q, %q", stored.Session.AccessJwt, stored.Session.RefreshJwt)
		}
		// The refresh response carries no email; the saved one survives.
		if stored.Session.Email != "alice@example.com" || !stored.Session.EmailConfirmed {
			t.Errorf("email lost on refresh: %q confirmed=%v", stored.Session.Email, stored.Session.EmailConfirmed)
		}
		if stored.ServiceURL != server.URL {
			t.Errorf("ServiceURL = %q", stored.ServiceURL)
		}
	})

	t.Run("get after refresh", func(t *testing.T) {
		env.mustRun(t, "session", "get")
	})

	t.Run("delete", func(t *testing.T) {
		stdout := env.mustRun(t, "session", "delete")
		if !strings.Contains(stdout, "Success: session deleted") {
			t.Errorf("output = %q", stdout)
		}
		if _, err := os.Stat(env.sessionPath); !os.IsNotExist(err) {
			t.Errorf("session file should be removed: %v", err)
		}
	})

	t.Run("after delete", func(t *testing.T) {
		_, _, err := env.run(t, "session", "get")
		assertCategory(t, err, cli.CategoryNotFound)
		if !strings.Contains(err.Error(), "oxysky login") {
			t.Errorf("error should hint at login: %v", err)
		}
	})
}

func TestSessionGet_Expired(t *testing.T) {
	service, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")
	env.mustRun(t, "login")

	service.mu.Lock()
	service.expired = true
	service.mu.Unlock()

	_, stderr, err := env.run(t, "session", "get")
	assertExitCode(t, err, cli.ExitRejected)
	if !strings.Contains(stderr, "Error: ExpiredToken") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, "oxysky session refresh") {
		t.Errorf("stderr should suggest a refresh: %q", stderr)
	}
}

func TestSessionRefresh_LogsFingerprint(t *testing.T) {
	_, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "development:\n  log:\n    level: info\n")
	env.mustRun(t, "login")

	_, stderr, err := env.run(t, "session", "refresh")
	if err != nil {
		t.Fatalf("refresh: %v\nstderr:\n%s", err, stderr)
	}

	var refreshed map[string]any
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		if record["msg"] == "session refreshed" {
			refreshed = record
		}
	}
	if refreshed == nil {
		t.Fatalf("no \"session refreshed\" record in:\n%s", stderr)
	}
	if refreshed["token_fingerprint"] != atproto.TokenFingerprint("access-2") {
		t.Errorf("token_fingerprint = %v", refreshed["token_fingerprint"])
	}
	if _, ok := refreshed["access_token"]; ok {
		t.Error("record should not carry an access_token key")
	}
	if strings.Contains(stderr, "access-2") || strings.Contains(stderr, "refresh-2") {
		t.Errorf("logs contain a raw token:\n%s", stderr)
	}
}

func TestSessionRefresh_RejectedKeepsFile(t *testing.T) {
	service, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")
	env.mustRun(t, "login")

	// Another client refreshed first: the saved refresh token is stale.
	service.mu.Lock()
	service.generation++
	service.mu.Unlock()

	_, _, err := env.run(t, "session", "refresh")
	assertExitCode(t, err, cli.ExitRejected)
	if got := env.loadSession(t).Session.RefreshJwt; got != "refresh-1" {
		t.Errorf("RefreshJwt = %q, want the saved token untouched", got)
	}
}

func TestSessionDelete_RejectedKeepsFile(t *testing.T) {
	service, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")
	env.mustRun(t, "login")

	service.mu.Lock()
	service.deleted = true
	service.mu.Unlock()

	stdout, _, err := env.run(t, "session", "delete", "--json")
	assertExitCode(t, err, cli.ExitRejected)
	if !strings.Contains(stdout, `"InvalidToken"`) {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat(env.sessionPath); err != nil {
		t.Errorf("session file should be kept after a rejected delete: %v", err)
	}
}

func TestSession_UsesSavedService(t *testing.T) {
	service, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")
	env.mustRun(t, "login")

	// The configured service moves elsewhere; the session still belongs
	// to the one that issued it.
	env.writeConfig(t, "https://elsewhere.invalid", "")
	env.mustRun(t, "session", "get")

	if service.requested(atproto.PathGetSession) != 2 {
		t.Errorf("getSession requests = %d, want 2", service.requested(atproto.PathGetSession))
	}
}

func TestSession_EnvironmentOverride(t *testing.T) {
	_, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")

	override := filepath.Join(env.directory, "override.json")
	t.Setenv("OXYSKY_SESSION_FILE", override)
	env.mustRun(t, "login")

	if _, err := os.Stat(override); err != nil {
		t.Errorf("session should be written to OXYSKY_SESSION_FILE: %v", err)
	}
	if _, err := os.Stat(env.sessionPath); !os.IsNotExist(err) {
		t.Errorf("configured session file should be unused: %v", err)
	}
}

func TestKeygen(t *testing.T) {
	_, server := newFakeService(t)
	env := newTestEnvironment(t, server.URL, "")
	identityPath := filepath.Join(env.directory, "identity.age")

	stdout := env.mustRun(t, "keygen", "--output", identityPath)
	if !strings.Contains(stdout, "age1") {
		t.Errorf("output should show the public key:\n%s", stdout)
	}
	if !strings.Contains(stdout, "session.identity_file") {
		t.Errorf("output should say how to enable sealing:\n%s", stdout)
	}

	info, err := os.Stat(identityPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("identity mode = %o, want 0600", mode)
	}

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, _, err := env.run(t, "keygen", "--output", identityPath)
		assertCategory(t, err, cli.CategoryValidation)
	})

	t.Run("output required", func(t *testing.T) {
		_, _, err := env.run(t, "keygen")
		if err == nil || !strings.Contains(err.Error(), "--output") {
			t.Fatalf("expected --output error, got %v", err)
		}
	})

	t.Run("sealed session", func(t *testing.T) {
		env.writeConfig(t, server.URL, "  identity_file: "+identityPath+"\n")
		env.mustRun(t, "login")

		raw, err := os.ReadFile(env.sessionPath)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !sealed.IsSealed(raw) {
			t.Fatal("session file should be sealed")
		}

		stdout := env.mustRun(t, "session", "show")
		if !strings.Contains(stdout, "(sealed)") || !strings.Contains(stdout, "alice.test") {
			t.Errorf("show output:\n%s", stdout)
		}
	})
}

func TestKeygen_JSON(t *testing.T) {
	env := newTestEnvironment(t, "https://bsky.social", "")
	identityPath := filepath.Join(env.directory, "identity.age")

	stdout := env.mustRun(t, "keygen", "-o", identityPath, "--json")
	var result keygenResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if result.IdentityFile != identityPath {
		t.Errorf("IdentityFile = %q", result.IdentityFile)
	}

	// The reported public key must be the recipient of the written identity.
	ciphertext, err := sealed.Seal([]byte("payload"), []string{result.PublicKey})
	if err != nil {
		t.Fatalf("Seal to reported public key: %v", err)
	}
	privateKey, err := sealed.ReadIdentityFile(identityPath)
	if err != nil {
		t.Fatalf("ReadIdentityFile: %v", err)
	}
	defer privateKey.Close()
	plaintext, err := sealed.Open(ciphertext, privateKey)
	if err != nil {
		t.Fatalf("Open with written identity: %v", err)
	}
	defer plaintext.Close()
	if plaintext.String() != "payload" {
		t.Errorf("plaintext = %q", plaintext.String())
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnvironment(t, "https://bsky.social", "")
	stdout := env.mustRun(t, "version")
	if !strings.HasPrefix(stdout, "oxysky ") {
		t.Errorf("output = %q", stdout)
	}
}

func TestRoot_Errors(t *testing.T) {
	env := newTestEnvironment(t, "https://bsky.social", "")

	t.Run("unknown command", func(t *testing.T) {
		_, _, err := env.run(t, "sesion")
		if err == nil || !strings.Contains(err.Error(), `did you mean "session"?`) {
			t.Fatalf("expected suggestion, got %v", err)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := env.run(t, "login", "--jsn")
		if err == nil || !strings.Contains(err.Error(), "--json") {
			t.Fatalf("expected suggestion, got %v", err)
		}
	})

	t.Run("unexpected argument", func(t *testing.T) {
		_, _, err := env.run(t, "session", "show", "extra")
		assertCategory(t, err, cli.CategoryValidation)
	})

	t.Run("help", func(t *testing.T) {
		_, stderr, err := env.run(t, "session", "--help")
		if err != nil {
			t.Fatalf("help: %v", err)
		}
		for _, name := range []string{"show", "get", "refresh", "delete"} {
			if !strings.Contains(stderr, name) {
				t.Errorf("help missing %q:\n%s", name, stderr)
			}
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		path := filepath.Join(env.directory, "bad.yaml")
		os.WriteFile(path, []byte("service:\n  url: not-a-url\n"), 0644)
		var stdout, stderr bytes.Buffer
		err := newRoot(&stdout, &stderr).Execute(context.Background(), []string{"--config", path, "session", "show"})
		assertCategory(t, err, cli.CategoryValidation)
	})
}
