// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/oxysky/lib/netutil"
)

// DefaultServiceURL is the public Bluesky entryway.
const DefaultServiceURL = "https://bsky.social"

// XRPC paths of the session endpoints, relative to the service URL.
const (
	PathCreateSession  = "/xrpc/com.atproto.server.createSession"
	PathRefreshSession = "/xrpc/com.atproto.server.refreshSession"
	PathGetSession     = "/xrpc/com.atproto.server.getSession"
	PathDeleteSession  = "/xrpc/com.atproto.server.deleteSession"
)

// Endpoints are absolute URLs for the four session operations. Any field
// left empty is derived from ClientConfig.ServiceURL and the matching
// Path constant.
type Endpoints struct {
	CreateSession  string
	RefreshSession string
	GetSession     string
	DeleteSession  string
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServiceURL is the base URL of the service (e.g. "https://bsky.social").
	ServiceURL string
	// Endpoints overrides individual operation URLs.
	Endpoints Endpoints
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	// Timeouts configured on it surface as *TransportError.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// UserAgent, when set, is sent on every request.
	UserAgent string
}

// Client issues session requests. It holds no credentials and is safe for
// concurrent use.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// NewClient creates a Client, resolving every endpoint to an absolute URL.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServiceURL == "" {
		return nil, fmt.Errorf("atproto: ServiceURL is required")
	}
	base, err := url.Parse(config.ServiceURL)
	if err != nil {
		return nil, fmt.Errorf("atproto: invalid ServiceURL %q: %w", config.ServiceURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("atproto: ServiceURL %q must be absolute", config.ServiceURL)
	}
	baseURL := strings.TrimRight(config.ServiceURL, "/")

	endpoints := config.Endpoints
	for _, endpoint := range []struct {
		target *string
		path   string
	}{
		{&endpoints.CreateSession, PathCreateSession},
		{&endpoints.RefreshSession, PathRefreshSession},
		{&endpoints.GetSession, PathGetSession},
		{&endpoints.DeleteSession, PathDeleteSession},
	} {
		if *endpoint.target == "" {
			*endpoint.target = baseURL + endpoint.path
			continue
		}
		if _, err := url.ParseRequestURI(*endpoint.target); err != nil {
			return nil, fmt.Errorf("atproto: invalid endpoint URL %q: %w", *endpoint.target, err)
		}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoints:  endpoints,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  config.UserAgent,
	}, nil
}

// Endpoints returns the resolved endpoint URLs.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// CreateSession authenticates with an identifier and password.
//
// A 200 response yields Success with the new Session. A 400 yields
// Failure with the service's error body. Any other status yields an
// unrecognized Failure. The password Buffer is read but not closed.
func (c *Client) CreateSession(ctx context.Context, request CreateSessionRequest) (Outcome[Session], error) {
	// Empty fields are sent as-is; judging them is the service's job.
	// Password is converted to string at the JSON serialization boundary.
	body := createSessionBody{
		Identifier:      request.Identifier,
		AuthFactorToken: request.AuthFactorToken,
	}
	if request.Password != nil {
		body.Password = request.Password.String()
	}

	response, err := c.doRequest(ctx, http.MethodPost, c.endpoints.CreateSession, "", body)
	if err != nil {
		return Outcome[Session]{}, err
	}

	outcome, err := interpret(response, decodeSession, http.StatusBadRequest)
	if err != nil {
		return Outcome[Session]{}, err
	}
	if session, ok := outcome.Value(); ok {
		c.logger.Info("created session",
			"did", session.DID,
			"handle", session.Handle,
			"request_id", response.requestID,
		)
	}
	return outcome, nil
}

// rawResponse is a fully-read HTTP response.
type rawResponse struct {
	method     string
	url        string
	statusCode int
	body       []byte
	requestID  string
}

// doRequest sends one request and reads the whole body. Every request
// carries Accept: application/json; requests with a body also carry
// Content-Type: application/json. token, when non-empty, is sent as a
// Bearer credential. Any failure before a complete body is in hand is a
// *TransportError.
func (c *Client) doRequest(ctx context.Context, method, endpoint, token string, requestBody any) (*rawResponse, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, &TransportError{Op: "encode", Method: method, URL: endpoint, Err: err}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, &TransportError{Op: "build", Method: method, URL: endpoint, Err: err}
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID, "method", method, "url", endpoint)
	if token != "" {
		logger = logger.With("token_fingerprint", TokenFingerprint(token))
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return nil, &TransportError{Op: "send", Method: method, URL: endpoint, Err: err}
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", Method: method, URL: endpoint, Err: err}
	}

	logger.Debug("request completed", "status", response.StatusCode, "bytes", len(responseBody))

	return &rawResponse{
		method:     method,
		url:        endpoint,
		statusCode: response.StatusCode,
		body:       responseBody,
		requestID:  requestID,
	}, nil
}

// interpret maps a response onto an Outcome. 200 is decoded with decode;
// statuses in rejected are decoded as ErrorPayload; anything else is an
// unrecognized Failure. A rejected body that is not an error object still
// yields a Failure, with empty Code and Message.
func interpret[T any](response *rawResponse, decode func([]byte) (T, error), rejected ...int) (Outcome[T], error) {
	switch {
	case response.statusCode == http.StatusOK:
		value, err := decode(response.body)
		if err != nil {
			return Outcome[T]{}, &TransportError{Op: "decode", Method: response.method, URL: response.url, Err: err}
		}
		return Succeeded(value), nil

	case slices.Contains(rejected, response.statusCode):
		var payload ErrorPayload
		if err := json.Unmarshal(response.body, &payload); err != nil {
			payload = ErrorPayload{}
		}
		payload.StatusCode = response.statusCode
		payload.Kind = FailureRejected
		return Failed[T](payload), nil

	default:
		return Failed[T](ErrorPayload{
			StatusCode: response.statusCode,
			Kind:       FailureUnrecognizedStatus,
		}), nil
	}
}

func decodeSession(body []byte) (Session, error) {
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return Session{}, fmt.Errorf("parsing session response: %w", err)
	}
	return session, nil
}

// TokenFingerprint returns a short BLAKE3 digest of a token, suitable for
// correlating log lines without logging the credential.
func TokenFingerprint(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
