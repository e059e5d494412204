// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// ExitError carries a specific process exit code up through command Run
// functions. main inspects the returned error chain for an ExitCode()
// method and exits with that code; plain errors exit 1.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// ExitCode returns the process exit code for this error.
func (e *ExitError) ExitCode() int {
	return e.Code
}
