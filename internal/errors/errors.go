// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the graphmap CLI.
//
// UserError carries what went wrong, why, and how to fix it, plus an exit
// code consistent across the CLI surface.
//
//	err := errors.NewConfigInvalid(
//	    "projectRoot is required",
//	    "no --project-root flag and no graphmap.yaml in the working directory",
//	    "pass --project-root or add a graphmap.yaml",
//	    nil,
//	)
//	errors.FatalError(err, false)
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes, one per §7 error kind.
const (
	ExitSuccess                 = 0
	ExitConfigInvalid           = 1
	ExitFileDiscoveryEmpty      = 0 // non-fatal: produces an empty artifact
	ExitHelperUnavailable       = 3
	ExitHelperTimeout           = 4
	ExitMatcherGlobInvalid      = 0 // non-fatal: rule dropped, matching continues
	ExitSchemaVersionUnsupported = 5
	ExitInvariantViolated       = 10
	ExitCancelled               = 130
)

// UserError is a structured, user-facing error with an associated exit code.
type UserError struct {
	Kind     string
	Message  string
	Cause    string
	Fix      string
	ExitCode int
	Err      error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// NewConfigInvalid builds a ConfigInvalid error: fatal, no artifact.
func NewConfigInvalid(msg, cause, fix string, err error) *UserError {
	return &UserError{Kind: "ConfigInvalid", Message: msg, Cause: cause, Fix: fix, ExitCode: ExitConfigInvalid, Err: err}
}

// NewHelperUnavailable builds a HelperUnavailable error: the caller should
// have already attempted to degrade to a fallback path (e.g. the Go
// AST-only extractor) before raising this as fatal.
func NewHelperUnavailable(msg, cause, fix string, err error) *UserError {
	return &UserError{Kind: "HelperUnavailable", Message: msg, Cause: cause, Fix: fix, ExitCode: ExitHelperUnavailable, Err: err}
}

// NewHelperTimeout builds a HelperTimeout error: the child process exceeded
// its soft timeout budget and was killed.
func NewHelperTimeout(msg, cause, fix string, err error) *UserError {
	return &UserError{Kind: "HelperTimeout", Message: msg, Cause: cause, Fix: fix, ExitCode: ExitHelperTimeout, Err: err}
}

// NewSchemaVersionUnsupported builds a SchemaVersionUnsupported error: a
// reader encountered an artifact with an unknown major schema version.
func NewSchemaVersionUnsupported(msg, cause, fix string) *UserError {
	return &UserError{Kind: "SchemaVersionUnsupported", Message: msg, Cause: cause, Fix: fix, ExitCode: ExitSchemaVersionUnsupported}
}

// NewInvariantViolated builds an InvariantViolated error: the post-assembly
// invariant check failed. This always indicates an internal bug.
func NewInvariantViolated(msg string) *UserError {
	return &UserError{
		Kind:     "InvariantViolated",
		Message:  msg,
		Fix:      "this is an internal bug in graphmap; please report it",
		ExitCode: ExitInvariantViolated,
	}
}

// NewCancelled builds a Cancelled error: the driver cancelled mid-extraction.
func NewCancelled() *UserError {
	return &UserError{Kind: "Cancelled", Message: "analysis cancelled", ExitCode: ExitCancelled}
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a colored, terminal-friendly rendering of the error.
// Color output respects NO_COLOR and the noColor parameter.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}
	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}
	return out.String()
}

// ErrorJSON is the JSON-serializable form of a UserError.
type ErrorJSON struct {
	Kind     string `json:"kind"`
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to its JSON form.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{Kind: e.Kind, Error: e.Message, Cause: e.Cause, Fix: e.Fix, ExitCode: e.ExitCode}
}

// FatalError prints err (colored or JSON per jsonOutput) and exits with its
// code. Never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInvariantViolated)
}
