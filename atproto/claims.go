// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims carried by session JWTs. Access tokens use
// scope "com.atproto.access" (or "com.atproto.appPass" for app
// passwords); refresh tokens use "com.atproto.refresh".
type TokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Expiry returns the expiry, or the zero time if the token has none.
func (c TokenClaims) Expiry() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// ExpiredAt reports whether the token has expired at now. Tokens without
// an exp claim never expire.
func (c TokenClaims) ExpiredAt(now time.Time) bool {
	expiry := c.Expiry()
	return !expiry.IsZero() && !now.Before(expiry)
}

// ParseTokenClaims decodes a session JWT's claims without verifying its
// signature. The signing key belongs to the service, so the result is
// informational only: it tells the caller when to refresh, not whether
// the token is genuine.
func ParseTokenClaims(token string) (TokenClaims, error) {
	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("atproto: parsing token claims: %w", err)
	}
	return claims, nil
}

// AccessClaims decodes the access token's claims.
func (s Session) AccessClaims() (TokenClaims, error) {
	return ParseTokenClaims(s.AccessJwt)
}

// RefreshClaims decodes the refresh token's claims.
func (s Session) RefreshClaims() (TokenClaims, error) {
	return ParseTokenClaims(s.RefreshJwt)
}
