package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidVersion, "test message: %s", "value")

	if err.Code != ErrCodeInvalidVersion {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidVersion)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_VERSION: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRegistryUnavailable, cause, "brew list failed")

	if err.Code != ErrCodeRegistryUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRegistryUnavailable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeLinkFailed, "test"),
			code:     ErrCodeLinkFailed,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeLinkFailed, "test"),
			code:     ErrCodeServiceFailed,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRegistryTimeout, New(ErrCodeInvalidVersion, "inner"), "outer"),
			code:     ErrCodeRegistryTimeout,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidVersion,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidVersion,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeVersionNotInstalled, "test"),
			expected: ErrCodeVersionNotInstalled,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidVersion, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeVersionNotInstalled, "PHP 8.3 is not installed").
		WithSuggestion("run `phpswitch install %s` first", "8.3")

	if err.Suggestion != "run `phpswitch install 8.3` first" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}

	// Suggestion stays out of the error string; display is the CLI's job.
	expected := "VERSION_NOT_INSTALLED: PHP 8.3 is not installed"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "with suggestion",
			err:      New(ErrCodeServiceTimeout, "restart timed out").WithSuggestion("check `brew services list`"),
			expected: "check `brew services list`",
		},
		{
			name:     "without suggestion",
			err:      New(ErrCodeServiceTimeout, "restart timed out"),
			expected: "",
		},
		{
			name:     "wrapped suggestion",
			err:      Wrap(ErrCodeInternal, New(ErrCodeLinkFailed, "inner").WithSuggestion("try --force"), "outer"),
			expected: "",
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSuggestion(tt.err); got != tt.expected {
				t.Errorf("GetSuggestion() = %q, want %q", got, tt.expected)
			}
		})
	}
}
