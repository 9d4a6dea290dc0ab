package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "new",
			err:  New(ErrCodeDuplicateName, "block %q already exists on %s", "genes", "right"),
			want: `DUPLICATE_NAME: block "genes" already exists on right`,
		},
		{
			name: "wrapped",
			err:  Wrap(ErrCodeNetwork, cause, "fetch %s", "imdb.csv"),
			want: "NETWORK_ERROR: fetch imdb.csv: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("eof")
	err := Wrap(ErrCodeInvalidFormat, cause, "parse figure")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	// Through a foreign wrapper.
	outer := fmt.Errorf("load: %w", err)
	if GetCode(outer) != ErrCodeInvalidFormat {
		t.Errorf("GetCode(fmt-wrapped) = %q", GetCode(outer))
	}
}

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"keeps code", New(ErrCodeSizeMismatch, "3 labels for 4 rows"), ErrCodeSizeMismatch},
		{"keeps nested code", Annotate(New(ErrCodeNotRendered, "render first"), "region"), ErrCodeNotRendered},
		{"plain becomes internal", errors.New("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Annotate(tt.err, "add block %d", 2)
			if got.Code != tt.want {
				t.Errorf("Code = %q, want %q", got.Code, tt.want)
			}
			if got.Message != "add block 2" {
				t.Errorf("Message = %q", got.Message)
			}
			if !errors.Is(got, tt.err) {
				t.Error("annotated error should wrap the original")
			}
		})
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching", New(ErrCodeInvalidSide, "main"), ErrCodeInvalidSide, true},
		{"other code", New(ErrCodeInvalidSide, "main"), ErrCodeInvalidName, false},
		{"outermost wins", Wrap(ErrCodeNetwork, New(ErrCodeDatasetNotFound, "x"), "fetch"), ErrCodeNetwork, true},
		{"plain", errors.New("plain"), ErrCodeInvalidSide, false},
		{"nil", nil, ErrCodeInvalidSide, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeDatasetNotFound, "no dataset named %q", "iris"), `no dataset named "iris"`},
		{"outermost message", Annotate(New(ErrCodeInvalidOrder, "label z missing"), "group rows"), "group rows"},
		{"plain", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		state      bool
		typ        bool
	}{
		{"duplicate name", New(ErrCodeDuplicateName, "dup"), true, false, false},
		{"size mismatch", New(ErrCodeSizeMismatch, "len"), true, false, false},
		{"unknown option", New(ErrCodeInvalidOption, "metric"), true, false, false},
		{"invalid order", New(ErrCodeInvalidOrder, "order"), true, false, false},
		{"not rendered", New(ErrCodeNotRendered, "render first"), false, true, false},
		{"categorical data", New(ErrCodeInvalidType, "numeric required"), false, false, true},
		{"annotated state", Annotate(New(ErrCodeNotRendered, "x"), "outer"), false, true, false},
		{"not found", New(ErrCodeNotFound, "missing"), false, false, false},
		{"timeout", New(ErrCodeTimeout, "slow"), false, false, false},
		{"plain", errors.New("plain"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.validation)
			}
			if got := IsState(tt.err); got != tt.state {
				t.Errorf("IsState() = %v, want %v", got, tt.state)
			}
			if got := IsType(tt.err); got != tt.typ {
				t.Errorf("IsType() = %v, want %v", got, tt.typ)
			}
		})
	}
}
