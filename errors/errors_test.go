package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad query")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidInput, err.Code)
	}
	if err.Message != "bad query" {
		t.Errorf("expected message 'bad query', got %q", err.Message)
	}
}

func TestAppError_OutOfRange(t *testing.T) {
	err := OutOfRange(5, 3)
	if err.Code != ErrCodeOutOfRange {
		t.Errorf("expected OUT_OF_RANGE, got %s", err.Code)
	}
	if err.Details["index"] != 5 || err.Details["length"] != 3 {
		t.Errorf("expected index/length details, got %v", err.Details)
	}
	if !strings.Contains(err.Error(), "index 5 out of range [0, 3)") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := InvalidFormat("input", "json").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := MissingField("where").WithDetails(map[string]any{"extra": "info"})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["field"] != "where" {
		t.Error("expected original details to be preserved")
	}

	err.WithDetails(map[string]any{"another": "detail"})
	if err.Details["another"] != "detail" || err.Details["extra"] != "info" {
		t.Errorf("expected merged details, got %v", err.Details)
	}
}

func TestAppError_WithDetails_Nil(t *testing.T) {
	err := Internal(nil).WithDetails(nil)
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized even with nil input")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	if Internal(cause).Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if ReadOnlySource().Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		exit int
	}{
		{"OutOfRange", OutOfRange(-1, 0), ErrCodeOutOfRange, 3},
		{"ReadOnlySource", ReadOnlySource(), ErrCodeReadOnlySource, 3},
		{"InvalidInput", InvalidInput("where", "empty"), ErrCodeInvalidInput, 2},
		{"Validation", Validation("bad"), ErrCodeInvalidInput, 2},
		{"MissingField", MissingField("name"), ErrCodeMissingField, 2},
		{"InvalidFormat", InvalidFormat("date", "RFC3339"), ErrCodeInvalidFormat, 2},
		{"Unsupported", Unsupported("format", "xml"), ErrCodeUnsupported, 2},
		{"Internal", Internal(nil), ErrCodeInternal, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if got := ExitCode(tc.err.Code); got != tc.exit {
				t.Errorf("ExitCode(%s) = %d, want %d", tc.err.Code, got, tc.exit)
			}
		})
	}
}

func TestToResponse(t *testing.T) {
	resp := Unsupported("format", "xml").ToResponse()
	if resp.Error.Code != ErrCodeUnsupported {
		t.Errorf("expected UNSUPPORTED, got %s", resp.Error.Code)
	}
	if resp.Error.Details["format"] != "xml" {
		t.Errorf("expected format detail, got %v", resp.Error.Details)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("decode: %w", InvalidFormat("input", "json"))

	if !IsAppError(wrapped) {
		t.Fatal("expected wrapped AppError to be detected")
	}
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeInvalidFormat {
		t.Errorf("expected INVALID_FORMAT, got %v", appErr)
	}
	if !HasCode(wrapped, ErrCodeInvalidFormat) {
		t.Error("expected HasCode to match")
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeInvalidFormat) {
		t.Error("expected plain error not to match")
	}
}
