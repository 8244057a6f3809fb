/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestQuotaError(t *testing.T) {
	err := NewQuotaError("proposal_drafts:abc:organization", "QuotaExceededError")

	// The user-facing message is stable and never leaks the raw backend token
	if err.Error() != "storage quota exceeded" {
		t.Errorf("Expected stable quota message, got %q", err.Error())
	}
	if strings.Contains(err.Error(), "QuotaExceededError") {
		t.Error("Quota error message must not contain the raw backend exception name")
	}

	// The raw name stays available for diagnostics
	var qe *QuotaError
	if !errors.As(err, &qe) {
		t.Fatal("Expected a *QuotaError")
	}
	if qe.Raw != "QuotaExceededError" {
		t.Errorf("Expected raw token preserved, got %q", qe.Raw)
	}

	if !errors.Is(err, ErrQuotaExceeded) {
		t.Error("QuotaError should match ErrQuotaExceeded")
	}
	if !IsQuotaExceeded(err) {
		t.Error("IsQuotaExceeded should return true for QuotaError")
	}
}

func TestSecurityError(t *testing.T) {
	err := NewSecurityError("set")

	if err.Error() != "storage access blocked" {
		t.Errorf("Expected stable security message, got %q", err.Error())
	}
	if !errors.Is(err, ErrStorageBlocked) {
		t.Error("SecurityError should match ErrStorageBlocked")
	}
	if !IsStorageBlocked(err) {
		t.Error("IsStorageBlocked should return true for SecurityError")
	}
}

func TestCorruptEnvelopeError(t *testing.T) {
	err := NewCorruptEnvelopeError("proposal_drafts:abc:reporting", "unexpected end of JSON input")

	expected := `corrupt envelope at key "proposal_drafts:abc:reporting": unexpected end of JSON input`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrCorruptEnvelope) {
		t.Error("CorruptEnvelopeError should match ErrCorruptEnvelope")
	}
	if !IsCorruptEnvelope(err) {
		t.Error("IsCorruptEnvelope should return true for CorruptEnvelopeError")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Draft", "abc-123")

	expected := `Draft with key "abc-123" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "WithField",
			field:    "section",
			message:  "must not be empty",
			expected: `validation failed for field "section": must not be empty`,
		},
		{
			name:     "WithoutField",
			field:    "",
			message:  "payload is not an object",
			expected: "validation failed: payload is not an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}
