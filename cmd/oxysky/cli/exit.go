// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// Exit codes.
const (
	// ExitFailure covers local problems and transport failures.
	ExitFailure = 1
	// ExitRejected means the service answered with an error outcome.
	ExitRejected = 2
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output, as the session commands do when the service rejects a
// request.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this method on
// returned errors to distinguish a handled non-zero exit from an
// unexpected error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}
