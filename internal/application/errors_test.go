package application

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"token": "required", "id": "required"}}
	if got := withFields.Error(); got != "validation failed: id, token" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
	if got := withFields.Message(); got != "required" {
		t.Fatalf("expected first field message, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := NewValidationError("field", "bad").HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestRateLimitError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", &RateLimitError{RetryAfter: 42 * time.Second})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected RateLimitError to match ErrRateLimited")
	}
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) || rlErr.Error() != "Too many requests, retry after 42s" {
		t.Fatalf("unexpected message %v", err)
	}
	if got := (&RateLimitError{}).Error(); got != "Too many requests, retry after 1s" {
		t.Fatalf("expected minimum of one second, got %q", got)
	}
}
