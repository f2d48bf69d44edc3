// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"strings"

	"github.com/bureau-foundation/oxysky/lib/secret"
)

// Session is an authenticated session as returned by createSession,
// refreshSession and getSession. Fields absent from the response decode
// to their zero values.
type Session struct {
	// AccessJwt authenticates ordinary requests.
	AccessJwt string `json:"accessJwt"`
	// RefreshJwt is accepted only by refreshSession.
	RefreshJwt string `json:"refreshJwt"`

	Handle string `json:"handle"`
	DID    string `json:"did"`
	DidDoc DidDoc `json:"didDoc"`

	Email           string `json:"email"`
	EmailConfirmed  bool   `json:"emailConfirmed"`
	EmailAuthFactor bool   `json:"emailAuthFactor"`

	Active bool `json:"active"`
	// Status is set for inactive accounts ("takendown", "suspended",
	// "deactivated").
	Status *string `json:"status,omitempty"`
}

// DidDoc is the DID document embedded in a session. It lists the
// account's handles, its services (notably the PDS) and its keys.
type DidDoc struct {
	Context            []string             `json:"@context"`
	AlsoKnownAs        []string             `json:"alsoKnownAs"`
	ID                 string               `json:"id"`
	Service            []Service            `json:"service"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
}

// Service is a DID document service entry.
type Service struct {
	ID              string `json:"id"`
	ServiceEndpoint string `json:"serviceEndpoint"`
	Type            string `json:"type"`
}

// VerificationMethod is a DID document public key entry.
type VerificationMethod struct {
	Controller         string `json:"controller"`
	ID                 string `json:"id"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
	Type               string `json:"type"`
}

// Fragment ids used by atproto DID documents.
const (
	ServicePDS      = "#atproto_pds"
	VerificationKey = "#atproto"
)

// ServiceEndpoint returns the endpoint of the service with the given id.
// id may be a bare fragment ("#atproto_pds") or a full id
// ("did:plc:abc#atproto_pds").
func (d DidDoc) ServiceEndpoint(id string) (string, bool) {
	for _, service := range d.Service {
		if matchesFragment(service.ID, id) {
			return service.ServiceEndpoint, true
		}
	}
	return "", false
}

// VerificationKey returns the verification method with the given id,
// matched the same way as ServiceEndpoint.
func (d DidDoc) VerificationKey(id string) (VerificationMethod, bool) {
	for _, method := range d.VerificationMethod {
		if matchesFragment(method.ID, id) {
			return method, true
		}
	}
	return VerificationMethod{}, false
}

func matchesFragment(candidate, id string) bool {
	if candidate == id {
		return true
	}
	if strings.HasPrefix(id, "#") {
		return strings.HasSuffix(candidate, id)
	}
	return false
}

// PDSEndpoint returns the URL of the account's personal data server.
func (s Session) PDSEndpoint() (string, bool) {
	return s.DidDoc.ServiceEndpoint(ServicePDS)
}

// MergeRefreshed returns a copy of s updated from a refreshSession
// response. Only the tokens, handle, did, didDoc, active and status are
// taken from refreshed. Email, EmailConfirmed and EmailAuthFactor keep
// the values from s even when refreshed carries different ones; callers
// that need current email state should call getSession.
func (s Session) MergeRefreshed(refreshed Session) Session {
	merged := s
	merged.AccessJwt = refreshed.AccessJwt
	merged.RefreshJwt = refreshed.RefreshJwt
	merged.Handle = refreshed.Handle
	merged.DID = refreshed.DID
	merged.DidDoc = refreshed.DidDoc
	merged.Active = refreshed.Active
	merged.Status = refreshed.Status
	return merged
}

// CreateSessionRequest is the input to createSession.
type CreateSessionRequest struct {
	// Identifier is a handle, DID or email address.
	Identifier string
	// Password is borrowed; the client reads it but does not close it.
	// A nil Password is sent as an empty string.
	Password *secret.Buffer
	// AuthFactorToken is the emailed second-factor code. Leave empty when
	// the account has no second factor.
	AuthFactorToken string
}

// createSessionBody is the wire form of CreateSessionRequest. The server
// expects authFactorToken to be present even when empty, so the field
// has no omitempty.
type createSessionBody struct {
	Identifier      string `json:"identifier"`
	Password        string `json:"password"`
	AuthFactorToken string `json:"authFactorToken"`
}
