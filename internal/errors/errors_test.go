// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err:  &UserError{Message: "Cannot discover files", Err: fmt.Errorf("permission denied")},
			want: "Cannot discover files: permission denied",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Invalid config", Err: nil},
			want: "Invalid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("UserError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := &UserError{Message: "test", Err: underlying}
	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
	if (&UserError{Message: "test"}).Unwrap() != nil {
		t.Errorf("Unwrap() of nil Err should be nil")
	}
}

func TestConstructors(t *testing.T) {
	underlying := fmt.Errorf("boom")

	tests := []struct {
		name         string
		err          *UserError
		wantKind     string
		wantExitCode int
		wantHasErr   bool
	}{
		{"ConfigInvalid", NewConfigInvalid("msg", "cause", "fix", underlying), "ConfigInvalid", ExitConfigInvalid, true},
		{"HelperUnavailable", NewHelperUnavailable("msg", "cause", "fix", underlying), "HelperUnavailable", ExitHelperUnavailable, true},
		{"HelperTimeout", NewHelperTimeout("msg", "cause", "fix", underlying), "HelperTimeout", ExitHelperTimeout, true},
		{"SchemaVersionUnsupported", NewSchemaVersionUnsupported("msg", "cause", "fix"), "SchemaVersionUnsupported", ExitSchemaVersionUnsupported, false},
		{"InvariantViolated", NewInvariantViolated("msg"), "InvariantViolated", ExitInvariantViolated, false},
		{"Cancelled", NewCancelled(), "Cancelled", ExitCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.wantKind)
			}
			if tt.err.ExitCode != tt.wantExitCode {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.wantExitCode)
			}
			if hasErr := tt.err.Err != nil; hasErr != tt.wantHasErr {
				t.Errorf("has underlying error = %v, want %v", hasErr, tt.wantHasErr)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	sentinel := fmt.Errorf("sentinel error")
	wrapped := fmt.Errorf("wrapped: %w", sentinel)
	userErr := NewConfigInvalid("config error", "cause", "fix", wrapped)

	if !errors.Is(userErr, sentinel) {
		t.Error("errors.Is should find sentinel error in chain")
	}

	var targetErr *UserError
	if !errors.As(userErr, &targetErr) {
		t.Fatal("errors.As should extract UserError")
	}
	if targetErr.ExitCode != ExitConfigInvalid {
		t.Errorf("ExitCode = %d, want %d", targetErr.ExitCode, ExitConfigInvalid)
	}
}

func TestUserError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want []string
	}{
		{
			name: "full error",
			err:  &UserError{Message: "Cannot load graph", Cause: "file is truncated", Fix: "re-run analyze"},
			want: []string{"Error: Cannot load graph", "Cause: file is truncated", "Fix:   re-run analyze"},
		},
		{
			name: "message only",
			err:  &UserError{Message: "Something failed"},
			want: []string{"Error: Something failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(true)
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Format() output missing %q\nGot: %s", substr, got)
				}
			}
		})
	}
}

func TestUserError_Format_NoColor(t *testing.T) {
	oldNoColor := os.Getenv("NO_COLOR")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()

	os.Setenv("NO_COLOR", "1")
	output := (&UserError{Message: "Test error"}).Format(false)

	if strings.Contains(output, "\x1b[") {
		t.Error("Format() output contains ANSI codes despite NO_COLOR being set")
	}
}

func TestUserError_ToJSON(t *testing.T) {
	err := NewConfigInvalid("Invalid configuration", "Missing required field", "Run: graphmap analyze --help", nil)
	got := err.ToJSON()

	if got.Error != "Invalid configuration" {
		t.Errorf("ToJSON().Error = %q", got.Error)
	}
	if got.ExitCode != ExitConfigInvalid {
		t.Errorf("ToJSON().ExitCode = %d, want %d", got.ExitCode, ExitConfigInvalid)
	}
}

func TestFatalError_NilDoesNothing(t *testing.T) {
	FatalError(nil, false)
}
