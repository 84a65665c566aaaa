package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ListError, "test error")
	if err == nil {
		t.Fatal("New() returned nil")
	}
	if err.Type != ListError {
		t.Errorf("Expected ListError, got %v", err.Type)
	}
	if err.Message != "test error" {
		t.Errorf("Expected 'test error', got %s", err.Message)
	}
}

func TestErrorString(t *testing.T) {
	if got := New(CopyError, "copy failed").Error(); got != "copy failed" {
		t.Errorf("Expected 'copy failed', got %s", got)
	}

	cause := errors.New("exit status 1")
	wrapped := Wrap(cause, CopyError, "copy failed").WithOutput("  ERROR: boom\n")
	expected := "copy failed: exit status 1: ERROR: boom"
	if wrapped.Error() != expected {
		t.Errorf("Expected '%s', got %s", expected, wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("original")
	wrapped := fmt.Errorf("outer: %w", Wrap(cause, FetchError, "wrapped"))

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the original cause")
	}

	var e *Error
	if !errors.As(wrapped, &e) || e.Type != FetchError {
		t.Error("errors.As should find *Error")
	}

	if New(FetchError, "no cause").Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestChainedMethods(t *testing.T) {
	err := New(CopyError, "test").
		WithSuggestion("suggestion").
		WithAlternative("alternative").
		WithTarget("gs://b/x/")

	if err.Suggestion != "suggestion" {
		t.Error("Suggestion not set")
	}
	if err.Alternative != "alternative" {
		t.Error("Alternative not set")
	}
	if err.Target != "gs://b/x/" {
		t.Error("Target not set")
	}
}

func TestDetectErrorType(t *testing.T) {
	tests := []struct {
		err      error
		expected ErrorType
	}{
		{nil, UnknownError},
		{exec.ErrNotFound, ToolNotFoundError},
		{errors.New(`exec: "gcloud": executable file not found in $PATH`), ToolNotFoundError},
		{errors.New("permission denied"), PermissionError},
		{errors.New("AccessDenied: 403"), PermissionError},
		{&fs.PathError{Op: "mkdir", Path: "Output_GCS/23", Err: fs.ErrPermission}, PermissionError},
		{errors.New("yaml: line 3"), ConfigError},
		{New(CopyError, "x"), CopyError},
		{fmt.Errorf("wrapped: %w", New(ListError, "x")), ListError},
		{errors.New("something else"), UnknownError},
	}

	for _, tt := range tests {
		if got := DetectErrorType(tt.err); got != tt.expected {
			t.Errorf("DetectErrorType(%v) = %v, want %v", tt.err, got, tt.expected)
		}
	}
}

func TestWrapWithDetection(t *testing.T) {
	err := WrapWithDetection(errors.New("permission denied"), "cannot create dir")
	if err.Type != PermissionError {
		t.Errorf("Expected PermissionError, got %v", err.Type)
	}
	if err.Suggestion == "" || err.Alternative == "" {
		t.Error("Expected suggestion and alternative to be set")
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	if e := NewToolNotFoundError("gcloud", cause); !IsToolNotFound(e) || e.Target != "gcloud" {
		t.Errorf("unexpected tool error: %+v", e)
	}
	if e := NewListError("gs://b/", cause); e.Type != ListError || e.Target != "gs://b/" {
		t.Errorf("unexpected list error: %+v", e)
	}
	if e := NewFetchError("gs://b/f", cause); e.Type != FetchError {
		t.Errorf("unexpected fetch error: %+v", e)
	}
	if e := NewCopyError("gs://b/d/", cause); e.Type != CopyError || e.Alternative == "" {
		t.Errorf("unexpected copy error: %+v", e)
	}
	if e := NewConfigError("regions", cause); !IsConfigError(e) {
		t.Errorf("unexpected config error: %+v", e)
	}
	if IsToolNotFound(cause) {
		t.Error("plain error should not be a tool error")
	}
}

func TestContainsAny(t *testing.T) {
	err := NewListError("gs://b/", errors.New("exit status 1")).
		WithOutput("ERROR: (gcloud.storage.ls) One or more URLs matched no objects.")

	if !ContainsAny(err, []string{"Bucket Brigade", "matched no objects"}) {
		t.Error("expected marker in tool output to match")
	}
	if ContainsAny(err, []string{"Bucket Brigade"}) {
		t.Error("unexpected match")
	}
	if ContainsAny(err, []string{""}) {
		t.Error("empty marker must not match")
	}
	if ContainsAny(nil, []string{"x"}) {
		t.Error("nil error must not match")
	}
}

func TestErrorTypeString(t *testing.T) {
	if ListError.String() != "list_failed" || UnknownError.String() != "unknown" {
		t.Error("unexpected ErrorType strings")
	}
}
