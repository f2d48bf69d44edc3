// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/oxysky/atproto"
)

// JSONOutput adds --json support to a command. Embed it in the
// command's flag holder, call AddFlags, then in Run:
//
//	if done, err := params.EmitJSON(stdout, result); done {
//	    return err
//	}
//	// ... text formatting ...
type JSONOutput struct {
	OutputJSON bool
}

// AddFlags registers --json.
func (j *JSONOutput) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&j.OutputJSON, "json", false, "output as JSON")
}

// EmitJSON writes result with WriteJSON if --json is set. Returns
// (true, nil) on success, (true, err) on write failure, or (false, nil)
// when the caller should proceed with text formatting.
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(w, result)
}

// WriteJSON writes value as indented JSON. On a color terminal the
// output is syntax-highlighted; otherwise it is plain.
func WriteJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return Internal("encoding JSON: %w", err)
	}
	data = append(data, '\n')

	if IsTerminal(w) && !termenv.EnvNoColor() {
		if err := quick.Highlight(w, string(data), "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err = w.Write(data)
	return err
}

// Printer writes human-readable command output. Styling follows the
// destination: colors on a terminal, plain text when piped or when
// NO_COLOR is set.
type Printer struct {
	out     io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
	faint   lipgloss.Style
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(w, termenv.WithColorCache(true))
	if termenv.EnvNoColor() {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		out:     w,
		success: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		failure: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		label:   renderer.NewStyle().Foreground(lipgloss.Color("6")),
		faint:   renderer.NewStyle().Faint(true),
	}
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.success.Render("Success:"), fmt.Sprintf(format, args...))
}

// Failure prints a service error outcome as Error and Message lines.
func (p *Printer) Failure(payload atproto.ErrorPayload) {
	if payload.IsUnrecognized() {
		fmt.Fprintf(p.out, "%s unrecognized response (HTTP %d)\n", p.failure.Render("Error:"), payload.StatusCode)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.failure.Render("Error:"), payload.Code)
	fmt.Fprintf(p.out, "%s %s\n", p.failure.Render("Message:"), payload.Message)
}

// Field prints one aligned "name: value" line.
func (p *Printer) Field(name, value string) {
	fmt.Fprintf(p.out, "  %s %s\n", p.label.Render(fmt.Sprintf("%-16s", name+":")), value)
}

// Session prints the identity and token lifetimes of a session. Tokens
// themselves are never printed; use --json for the raw record.
func (p *Printer) Session(session atproto.Session, now time.Time) {
	p.Field("handle", session.Handle)
	p.Field("did", session.DID)

	if session.Email != "" {
		email := session.Email
		if session.EmailConfirmed {
			email += p.faint.Render(" (confirmed)")
		}
		p.Field("email", email)
		p.Field("email 2fa", fmt.Sprintf("%t", session.EmailAuthFactor))
	}

	p.Field("active", fmt.Sprintf("%t", session.Active))
	if session.Status != nil {
		p.Field("status", *session.Status)
	}
	if endpoint, ok := session.PDSEndpoint(); ok {
		p.Field("pds", endpoint)
	}

	// getSession responses carry no tokens.
	if session.AccessJwt != "" {
		p.Field("access token", p.tokenLifetime(session.AccessClaims, now))
	}
	if session.RefreshJwt != "" {
		p.Field("refresh token", p.tokenLifetime(session.RefreshClaims, now))
	}
}

func (p *Printer) tokenLifetime(claims func() (atproto.TokenClaims, error), now time.Time) string {
	parsed, err := claims()
	if err != nil {
		return p.faint.Render("unreadable")
	}
	expiry := parsed.Expiry()
	switch {
	case expiry.IsZero():
		return "no expiry"
	case parsed.ExpiredAt(now):
		return p.failure.Render("expired") + p.faint.Render(" at "+expiry.Local().Format(time.RFC3339))
	default:
		remaining := expiry.Sub(now).Truncate(time.Second)
		return fmt.Sprintf("expires %s %s", expiry.Local().Format(time.RFC3339), p.faint.Render("(in "+remaining.String()+")"))
	}
}
