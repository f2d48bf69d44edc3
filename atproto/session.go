// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"context"
	"net/http"
)

// RefreshSession exchanges a refresh token for a new session.
//
// 200 yields Success with the full refreshed Session; 400 and 401 yield
// Failure with the service's error body. To update an existing Session
// value use Session.Refresh, which applies the merge policy.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (Outcome[Session], error) {
	response, err := c.doRequest(ctx, http.MethodGet, c.endpoints.RefreshSession, refreshToken, nil)
	if err != nil {
		return Outcome[Session]{}, err
	}

	outcome, err := interpret(response, decodeSession, http.StatusBadRequest, http.StatusUnauthorized)
	if err != nil {
		return Outcome[Session]{}, err
	}
	if session, ok := outcome.Value(); ok {
		c.logger.Info("refreshed session",
			"did", session.DID,
			"handle", session.Handle,
			"request_id", response.requestID,
		)
	}
	return outcome, nil
}

// GetSession fetches the session that an access token belongs to.
//
// 200 yields Success; 401 yields Failure with the service's error body.
func (c *Client) GetSession(ctx context.Context, accessToken string) (Outcome[Session], error) {
	response, err := c.doRequest(ctx, http.MethodGet, c.endpoints.GetSession, accessToken, nil)
	if err != nil {
		return Outcome[Session]{}, err
	}
	return interpret(response, decodeSession, http.StatusUnauthorized)
}

// DeleteSession ends the session an access token belongs to. Success
// carries http.StatusOK as a marker; the response body is ignored.
//
// The request is a GET. The service contract this client targets accepts
// deleteSession that way, and the method must not change.
func (c *Client) DeleteSession(ctx context.Context, accessToken string) (Outcome[int], error) {
	response, err := c.doRequest(ctx, http.MethodGet, c.endpoints.DeleteSession, accessToken, nil)
	if err != nil {
		return Outcome[int]{}, err
	}

	outcome, err := interpret(response, statusMarker, http.StatusBadRequest, http.StatusUnauthorized)
	if err != nil {
		return Outcome[int]{}, err
	}
	if outcome.IsSuccess() {
		c.logger.Info("deleted session", "request_id", response.requestID)
	}
	return outcome, nil
}

func statusMarker([]byte) (int, error) {
	return http.StatusOK, nil
}

// Get calls GetSession with the session's access token.
func (s Session) Get(ctx context.Context, client *Client) (Outcome[Session], error) {
	return client.GetSession(ctx, s.AccessJwt)
}

// Delete calls DeleteSession with the session's access token. s itself is
// left unchanged.
func (s Session) Delete(ctx context.Context, client *Client) (Outcome[int], error) {
	return client.DeleteSession(ctx, s.AccessJwt)
}

// Refresh calls RefreshSession with the session's refresh token and, on
// Success, returns s.MergeRefreshed of the response. s itself is left
// unchanged; failures are passed through as-is.
func (s Session) Refresh(ctx context.Context, client *Client) (Outcome[Session], error) {
	outcome, err := client.RefreshSession(ctx, s.RefreshJwt)
	if err != nil {
		return Outcome[Session]{}, err
	}
	refreshed, ok := outcome.Value()
	if !ok {
		return outcome, nil
	}
	return Succeeded(s.MergeRefreshed(refreshed)), nil
}
